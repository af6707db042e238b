// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/oauthdemo/internal/auth"
	"github.com/mia-platform/oauthdemo/internal/info"
	"github.com/mia-platform/oauthdemo/internal/logger"
)

const (
	loggerName = "app.api.server"
	apiLogger  = "app.api"
)

type Server interface {
	Start() error
	Stop() error
	StartAsync(ctx context.Context)
}

type impServer struct {
	config

	app *fiber.App
	log logger.Logger
}

var (
	ErrServerListen   = errors.New("server listen error")
	ErrServerShutdown = errors.New("server shutdown error")
)

// NewServer reads the server configuration from the environment and builds the app serving
// service. Request and trace records go through registry, the process-wide one when nil.
func NewServer(ctx context.Context, service *auth.Service, registry *logger.Registry) (Server, error) {
	cfg, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	return &impServer{
		config: *cfg,
		app:    newApp(cfg, service, registry),
		log:    logger.FromContext(ctx).WithName(loggerName),
	}, nil
}

// NewApp returns the Fiber app serving service, without binding it to any address.
func NewApp(service *auth.Service, registry *logger.Registry) *fiber.App {
	return newApp(&config{DisableStartupMessage: true}, service, registry)
}

func newApp(cfg *config, service *auth.Service, registry *logger.Registry) *fiber.App {
	if registry == nil {
		registry = logger.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:               info.AppName,
		DisableStartupMessage: cfg.DisableStartupMessage,
	})
	app.Use(logger.RequestMiddlewareLogger(registry.Get(apiLogger), []string{"/-/"}))

	statusRoutes(app, info.AppName, info.Version)
	setupRoutes(app, service, registry)
	return app
}

func (s *impServer) Start() error {
	address := fmt.Sprintf("%s:%d", s.HTTPHost, s.HTTPPort)
	s.log.Info("starting server", "address", address)
	if err := s.app.Listen(address); err != nil {
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
	log := logger.FromContext(ctx).WithName(loggerName)
	go func() {
		if err := s.Start(); err != nil {
			log.Error(err.Error())
		}
	}()
}
