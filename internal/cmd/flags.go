// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mia-platform/oauthdemo/internal/logger"
)

const (
	// LogLevelFlagName is the persistent flag of the root command overriding the root logger level.
	LogLevelFlagName = "log-level"

	logConfigFlagName  = "log-config"
	logConfigFlagUsage = "Path to the logging configuration file, defaults to logs/log_config.yaml under the working directory"

	urlFlagName      = "url"
	urlFlagUsage     = "Base URL of the running service"
	defaultURL       = "http://localhost:3000"
	usernameFlagName = "username"
	usernameUsage    = "Username sent with the password grant"
	passwordFlagName = "password"
	passwordUsage    = "Password sent with the password grant"
)

// serveFlags collects the CLI options of the serve command.
type serveFlags struct {
	logConfigPath string
}

// addFlags registers the CLI flags on cmd.
func (f *serveFlags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.logConfigPath, logConfigFlagName, "", logConfigFlagUsage)
}

// toOptions builds the serve options from the parsed flags. The root logger level is only
// overridden when the log level flag has been explicitly set.
func (f *serveFlags) toOptions(cmd *cobra.Command) (*serveOptions, error) {
	opts := &serveOptions{
		logConfigPath: f.logConfigPath,
		registry:      logger.Default(),
		serverGetter:  serverGetter,
	}

	if flag := cmd.Flag(LogLevelFlagName); flag != nil && flag.Changed {
		level, err := logger.ParseLevel(flag.Value.String())
		if err != nil {
			return nil, err
		}
		opts.logLevel = &level
	}

	return opts, nil
}

// loginFlags collects the CLI options of the login command.
type loginFlags struct {
	url      string
	username string
	password string
}

// addFlags registers the CLI flags on cmd.
func (f *loginFlags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, urlFlagName, defaultURL, urlFlagUsage)
	cmd.Flags().StringVar(&f.username, usernameFlagName, "", usernameUsage)
	cmd.Flags().StringVar(&f.password, passwordFlagName, "", passwordUsage)
}

// toOptions builds the login options from the parsed flags.
func (f *loginFlags) toOptions(cmd *cobra.Command) *loginOptions {
	return &loginOptions{
		url:      f.url,
		username: f.username,
		password: f.password,
		out:      cmd.OutOrStdout(),
	}
}
