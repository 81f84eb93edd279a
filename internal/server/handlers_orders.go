package server

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mrmateussiilva/api-sgp/internal/domain"
	apperrors "github.com/mrmateussiilva/api-sgp/internal/errors"
)

func orderIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ValidationError("invalid order id").WithField("id", c.Param("id"))
	}
	return id, nil
}

func (s *Server) handleCreateOrder(c echo.Context) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	var req domain.OrderCreate
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	order, err := s.orders.Create(c.Request().Context(), req, caller.Actor())
	if err != nil {
		return err
	}
	return c.JSON(201, order)
}

func (s *Server) handleGetOrder(c echo.Context) error {
	id, err := orderIDParam(c)
	if err != nil {
		return err
	}

	order, err := s.orders.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(200, order)
}

// handleGetOrderSnapshot serves the latest materialized view of an order,
// the consistent read path paired with broadcast notifications.
func (s *Server) handleGetOrderSnapshot(c echo.Context) error {
	id, err := orderIDParam(c)
	if err != nil {
		return err
	}

	order, err := s.orders.GetLatest(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(200, order)
}

func (s *Server) handleListOrders(c echo.Context) error {
	filter := domain.OrderFilter{
		Status:   domain.OrderStatus(c.QueryParam("status")),
		Customer: c.QueryParam("customer"),
		DateFrom: c.QueryParam("date_from"),
		DateTo:   c.QueryParam("date_to"),
	}
	if skip := c.QueryParam("skip"); skip != "" {
		n, err := strconv.Atoi(skip)
		if err != nil || n < 0 {
			return apperrors.ValidationError("invalid skip parameter").WithField("skip", skip)
		}
		filter.Skip = n
	}
	if limit := c.QueryParam("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			return apperrors.ValidationError("invalid limit parameter").WithField("limit", limit)
		}
		filter.Limit = n
	}

	orders, err := s.orders.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(200, orders)
}

func (s *Server) handleListOrdersByStatus(c echo.Context) error {
	status := domain.OrderStatus(c.Param("status"))
	if !domain.ValidStatus(status) {
		return apperrors.ValidationError("invalid status").WithField("status", string(status))
	}

	orders, err := s.orders.List(c.Request().Context(), domain.OrderFilter{Status: status})
	if err != nil {
		return err
	}
	return c.JSON(200, orders)
}

func (s *Server) handleUpdateOrder(c echo.Context) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	id, err := orderIDParam(c)
	if err != nil {
		return err
	}

	var req domain.OrderUpdate
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	// Releasing the finance gate is restricted to admins.
	if req.Finance != nil && !caller.Admin {
		return apperrors.ForbiddenError("finance flag requires admin").
			WithField("order_id", id)
	}

	order, err := s.orders.Update(c.Request().Context(), id, req, caller.Actor())
	if err != nil {
		return err
	}
	return c.JSON(200, order)
}

func (s *Server) handleDeleteOrder(c echo.Context) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	if !caller.Admin {
		return apperrors.ForbiddenError("order deletion requires admin")
	}

	id, err := orderIDParam(c)
	if err != nil {
		return err
	}

	if err := s.orders.Delete(c.Request().Context(), id, caller.Actor()); err != nil {
		return err
	}
	return c.JSON(200, map[string]string{"status": "deleted"})
}

// handleLatestNotification reports the highest committed order id so
// polling clients can detect missed activity after a reconnect.
func (s *Server) handleLatestNotification(c echo.Context) error {
	latest, err := s.orders.LatestID(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(200, map[string]any{
		"latest_order_id": latest,
		"timestamp":       s.clock.Now().UTC().Format(time.RFC3339),
	})
}
