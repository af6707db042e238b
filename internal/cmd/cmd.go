// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

const (
	serveCmdUsage = "serve"
	serveCmdShort = "start the demo OAuth2 service"
	serveCmdLong  = `Start the demo OAuth2 service.
	The logging configuration is read from logs/log_config.yaml under the
	current working directory, unless a different file is passed with --log-config.
	The server listens on HTTP_HOST:HTTP_PORT and stops on SIGINT or SIGTERM.`

	serveCmdExample = `# Start the service with the default logging configuration
	oauthdemo serve

	# Start the service on a different port with a custom logging configuration
	HTTP_PORT=8080 oauthdemo serve --log-config ./configs/logging.yaml`

	loginCmdUsage = "login"
	loginCmdShort = "obtain a token and print the current user"
	loginCmdLong  = `Obtain a token from a running service with the OAuth2 password grant,
	then use it to read the current user and print it as JSON.`

	loginCmdExample = `# Login as the demo user
	oauthdemo login --username johndoe --password secret`
)

// ServeCmd returns the Cobra command that starts the HTTP service.
func ServeCmd() *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:     serveCmdUsage,
		Short:   heredoc.Doc(serveCmdShort),
		Long:    heredoc.Doc(serveCmdLong),
		Example: heredoc.Doc(serveCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.toOptions(cmd)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.execute(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}

// LoginCmd returns the Cobra command that runs the password flow against a running service.
func LoginCmd() *cobra.Command {
	flags := &loginFlags{}
	cmd := &cobra.Command{
		Use:     loginCmdUsage,
		Short:   heredoc.Doc(loginCmdShort),
		Long:    heredoc.Doc(loginCmdLong),
		Example: heredoc.Doc(loginCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := flags.toOptions(cmd)
			if err := opts.validate(); err != nil {
				return handleError(cmd, err)
			}

			if err := opts.execute(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}
