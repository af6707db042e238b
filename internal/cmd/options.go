// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mia-platform/oauthdemo/internal/auth"
	"github.com/mia-platform/oauthdemo/internal/client"
	"github.com/mia-platform/oauthdemo/internal/logger"
	"github.com/mia-platform/oauthdemo/internal/server"
	"github.com/mia-platform/oauthdemo/internal/users"
)

const serveLoggerName = "app.serve"

// serveOptions configures the logging setup and the server started by the serve command.
type serveOptions struct {
	logConfigPath string
	logLevel      *logger.Level
	registry      *logger.Registry
	serverGetter  func(context.Context, *auth.Service, *logger.Registry) (server.Server, error)

	lock sync.Mutex
}

// loadLogging installs the logging configuration, then applies the level override if any.
func (o *serveOptions) loadLogging() error {
	var err error
	if o.logConfigPath == "" {
		err = logger.LoadConfig(logger.WithRegistry(o.registry))
	} else {
		err = logger.LoadConfigFile(o.logConfigPath, logger.WithRegistry(o.registry))
	}
	if err != nil {
		return err
	}

	if o.logLevel != nil {
		o.registry.Root().SetLevel(*o.logLevel)
	}
	return nil
}

// execute loads the logging configuration and serves requests until ctx is done or a
// termination signal is received.
func (o *serveOptions) execute(ctx context.Context) error {
	if !o.lock.TryLock() {
		return nil
	}
	defer o.lock.Unlock()

	if err := o.loadLogging(); err != nil {
		return err
	}
	log := o.registry.Get(serveLoggerName)

	service := auth.NewService(users.NewFakeRepository(), o.registry)
	srv, err := o.serverGetter(ctx, service, o.registry)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
	}

	if err := srv.Stop(); err != nil {
		return err
	}
	return <-errChan
}

// loginOptions configures the password flow run by the login command.
type loginOptions struct {
	url        string
	username   string
	password   string
	httpClient *http.Client
	out        io.Writer
}

// validate checks the configured values and reports invalid setups.
func (o *loginOptions) validate() error {
	if o.username == "" || o.password == "" {
		return errMissingCredentials
	}
	return nil
}

// execute obtains a token and prints the user owning it.
func (o *loginOptions) execute(ctx context.Context) error {
	serviceClient, err := client.New(o.url, o.httpClient)
	if err != nil {
		return err
	}

	token, err := serviceClient.Login(ctx, o.username, o.password)
	if err != nil {
		return err
	}

	user, err := serviceClient.CurrentUser(ctx, token)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(o.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(user)
}
