// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/hooklog/internal/info"
	"github.com/mia-platform/hooklog/internal/logger"
)

const (
	serviceName = "hooklog"
	loggerName  = "hooklog:server"
)

var (
	ErrServerListen   = errors.New("server listen error")
	ErrServerShutdown = errors.New("server shutdown error")
	// ErrInvalidRequest marks handler errors caused by the request content, they are answered
	// with a 400 status code.
	ErrInvalidRequest = errors.New("invalid request")
)

// Handler processes the headers and body of a request.
type Handler func(ctx context.Context, headers http.Header, body []byte) error

// StatsFunc returns the payload served by the stats route.
type StatsFunc func() any

type Server interface {
	AddRoute(method string, path string, handler Handler)
	Start() error
	Stop() error
	StartAsync(ctx context.Context)
}

type impServer struct {
	config

	app *fiber.App
}

// NewServer returns a server configured from the environment, exposing the status routes.
// stats can be nil, in that case the stats route answers with an empty object.
func NewServer(ctx context.Context, stats StatsFunc) (Server, error) {
	cfg, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: cfg.DisableStartupMessage,
		Immutable:             true, // request body and headers are read after the handler chain returns
	})
	app.Use(logger.RequestMiddlewareLogger(logger.FromContext(ctx), []string{"/-/"}))

	statusRoutes(app, serviceName, info.Version, stats)

	return &impServer{
		app:    app,
		config: *cfg,
	}, nil
}

func (s *impServer) AddRoute(method string, path string, handler Handler) {
	s.app.Add(method, path, func(ctx *fiber.Ctx) error {
		if err := handler(ctx.UserContext(), ctx.GetReqHeaders(), ctx.Body()); err != nil {
			status := http.StatusInternalServerError
			message := "error processing request"
			if errors.Is(err, ErrInvalidRequest) {
				status = http.StatusBadRequest
				message = err.Error()
			}

			return ctx.Status(status).JSON(fiber.Map{
				"statusCode": status,
				"error":      http.StatusText(status),
				"message":    message,
			})
		}
		return ctx.SendStatus(http.StatusNoContent)
	})
}

func (s *impServer) Start() error {
	if err := s.app.Listen(fmt.Sprintf("%s:%d", s.HTTPHost, s.HTTPPort)); err != nil {
		return fmt.Errorf("%w: %w", ErrServerListen, err)
	}
	return nil
}

func (s *impServer) Stop() error {
	if err := s.app.Shutdown(); err != nil {
		return fmt.Errorf("%w: %w", ErrServerShutdown, err)
	}
	return nil
}

func (s *impServer) StartAsync(ctx context.Context) {
	log := logger.Named(ctx, loggerName)
	go func() {
		if err := s.Start(); err != nil {
			log.Error(err.Error())
		}
	}()
}
