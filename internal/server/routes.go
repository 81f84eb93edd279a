package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.echo.GET("/ws/orders", s.handleOrdersWebSocket)

	api := s.echo.Group("/api/v1", s.requireToken)
	api.POST("/orders", s.handleCreateOrder)
	api.GET("/orders", s.handleListOrders)
	api.GET("/orders/:id", s.handleGetOrder)
	api.GET("/orders/:id/latest", s.handleGetOrderSnapshot)
	api.GET("/orders/status/:status", s.handleListOrdersByStatus)
	api.PATCH("/orders/:id", s.handleUpdateOrder)
	api.DELETE("/orders/:id", s.handleDeleteOrder)
	api.GET("/notifications/latest", s.handleLatestNotification)
}
