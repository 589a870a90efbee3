// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stubserver

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Mode selects how /chat responds.
type Mode string

const (
	ModeEcho      Mode = "echo"
	ModeCanned    Mode = "canned"
	ModeFail      Mode = "fail"
	ModeMalformed Mode = "malformed"
)

// DefaultCannedAnswer is the backend's reply when no documents are loaded.
const DefaultCannedAnswer = "학습된 데이터가 없습니다. ./data 폴더에 파일을 넣고 재시작해보세요."

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeEcho, ModeCanned, ModeFail, ModeMalformed:
		return m, nil
	case "":
		return ModeEcho, nil
	}
	return "", errors.Errorf("unknown stub mode %q", s)
}

// Config holds stub server options.
type Config struct {
	Addr         string
	Mode         Mode
	Delay        time.Duration
	CannedAnswer string
	// RateLimit caps /chat requests per second across all clients. 0 disables.
	RateLimit float64
	Logger    zerolog.Logger
}

type chatRequest struct {
	Query *string `json:"query"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Server is the stand-in answering service.
type Server struct {
	cfg      Config
	echo     *echo.Echo
	log      zerolog.Logger
	requests atomic.Int64
}

// New creates a server and registers its routes.
func New(cfg Config) *Server {
	if cfg.Mode == "" {
		cfg.Mode = ModeEcho
	}
	if cfg.CannedAnswer == "" {
		cfg.CannedAnswer = DefaultCannedAnswer
	}

	s := &Server{
		cfg:  cfg,
		echo: echo.New(),
		log:  cfg.Logger.With().Str("component", "stubserver").Logger(),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	s.RegisterRoutes(s.echo)
	return s
}

// RegisterRoutes registers the answering routes on e.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	var mw []echo.MiddlewareFunc
	if s.cfg.RateLimit > 0 {
		mw = append(mw, limit(rate.NewLimiter(rate.Limit(s.cfg.RateLimit), 1)))
	}
	e.POST("/chat", s.Chat, mw...)
	e.GET("/healthz", s.Health)
}

// limit answers 429 once the limiter runs out of tokens.
func limit(l *rate.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow() {
				return c.JSON(http.StatusTooManyRequests, errorResponse{Detail: "rate limit exceeded"})
			}
			return next(c)
		}
	}
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Requests returns how many /chat requests were received.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// Chat answers a query according to the configured mode.
// POST /chat
func (s *Server) Chat(c echo.Context) error {
	s.requests.Add(1)

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Detail: "invalid request body"})
	}
	if req.Query == nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: "field required: query"})
	}
	query := strings.TrimSpace(*req.Query)
	if query == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Detail: "query is empty"})
	}

	if s.cfg.Delay > 0 {
		timer := time.NewTimer(s.cfg.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		}
	}

	switch s.cfg.Mode {
	case ModeFail:
		return c.JSON(http.StatusInternalServerError, errorResponse{Detail: "internal server error"})
	case ModeMalformed:
		return c.JSON(http.StatusOK, map[string]string{"result": query})
	case ModeCanned:
		return c.JSON(http.StatusOK, chatResponse{Answer: s.cfg.CannedAnswer})
	default:
		return c.JSON(http.StatusOK, chatResponse{Answer: query})
	}
}

// Health reports liveness and the active mode.
// GET /healthz
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"mode":   string(s.cfg.Mode),
	})
}

// Run listens on cfg.Addr and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.cfg.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.echo.Listener = ln
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		s.log.Info().Str("addr", ln.Addr().String()).Str("mode", string(s.cfg.Mode)).Msg("stub answering service started")
		if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve")
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.log.Error().Err(err).Msg("shutdown error")
			return errors.Wrap(err, "shutdown")
		}
		s.log.Info().Msg("stub answering service stopped")
		return nil
	})

	return eg.Wait()
}
