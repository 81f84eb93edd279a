package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mrmateussiilva/api-sgp/internal/auth"
	"github.com/mrmateussiilva/api-sgp/internal/config"
	apperrors "github.com/mrmateussiilva/api-sgp/internal/errors"
	"github.com/mrmateussiilva/api-sgp/internal/hub"
	"github.com/mrmateussiilva/api-sgp/internal/orders"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	orders    *orders.Service
	hub       *hub.Hub
	verifier  *auth.Verifier
	db        *pgxpool.Pool
	redis     *goredis.Client
	clock     clockwork.Clock
	startTime time.Time
}

func NewServer(cfg *config.Config, orderSvc *orders.Service, h *hub.Hub, verifier *auth.Verifier, db *pgxpool.Pool, redis *goredis.Client, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		orders:    orderSvc,
		hub:       h,
		verifier:  verifier,
		db:        db,
		redis:     redis,
		clock:     clock,
		startTime: clock.Now(),
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
