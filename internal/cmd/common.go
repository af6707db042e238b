// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/mia-platform/oauthdemo/internal/auth"
	"github.com/mia-platform/oauthdemo/internal/logger"
	"github.com/mia-platform/oauthdemo/internal/server"
)

var (
	errMissingCredentials = errors.New("username and password are required")

	// serverGetter returns the server exposing the service.
	// It can be overridden for testing purposes.
	serverGetter = func(ctx context.Context, service *auth.Service, registry *logger.Registry) (server.Server, error) {
		return server.NewServer(ctx, service, registry)
	}
)

// handleError will do custom print error handling based on the type of error received.
// it will return nil if the command must return 0 exit code, otherwise it will return
// the original error.
func handleError(cmd *cobra.Command, err error) error {
	switch {
	case errors.Is(err, errMissingCredentials):
		cmd.PrintErrln(err)
		_ = cmd.Usage() // do not check error as we cannot do much about it
		return err
	default:
		cmd.PrintErrln(err)
		return err
	}
}
