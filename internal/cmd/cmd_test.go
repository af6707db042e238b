// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"net/http/httptest"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/oauthdemo/internal/auth"
	"github.com/mia-platform/oauthdemo/internal/client"
	"github.com/mia-platform/oauthdemo/internal/logger"
	"github.com/mia-platform/oauthdemo/internal/server"
	"github.com/mia-platform/oauthdemo/internal/users"
)

func newTestService(t *testing.T) *httptest.Server {
	t.Helper()

	registry := logger.NewRegistry(io.Discard)
	app := server.NewApp(auth.NewService(users.NewFakeRepository(), registry), registry)
	testServer := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(testServer.Close)
	return testServer
}

func TestCmds(t *testing.T) {
	t.Parallel()

	testServer := newTestService(t)
	missingConfig := filepath.Join(t.TempDir(), "missing.yaml")

	testCases := map[string]struct {
		cmd                  *cobra.Command
		args                 []string
		expectedError        error
		expectedErrorMessage string
		expectedOutput       string
		expectedUsage        bool
	}{
		"serve command with missing logging configuration returns error no usage": {
			cmd:                  ServeCmd(),
			args:                 []string{"--" + logConfigFlagName, missingConfig},
			expectedError:        syscall.ENOENT,
			expectedErrorMessage: fmt.Sprintf("logging configuration %s: open %s: %s\n", missingConfig, missingConfig, syscall.ENOENT),
		},
		"login command without credentials returns error and usage": {
			cmd:                  LoginCmd(),
			args:                 []string{"--" + urlFlagName, testServer.URL},
			expectedError:        errMissingCredentials,
			expectedErrorMessage: errMissingCredentials.Error() + "\n",
			expectedUsage:        true,
		},
		"login command with wrong password returns error no usage": {
			cmd:                  LoginCmd(),
			args:                 []string{"--" + urlFlagName, testServer.URL, "--" + usernameFlagName, "johndoe", "--" + passwordFlagName, "wrong"},
			expectedError:        client.ErrLogin,
			expectedErrorMessage: "login failed: Incorrect username or password\n",
		},
		"login command with disabled user returns error no usage": {
			cmd:                  LoginCmd(),
			args:                 []string{"--" + urlFlagName, testServer.URL, "--" + usernameFlagName, "alice", "--" + passwordFlagName, "secret2"},
			expectedError:        client.ErrUnauthorized,
			expectedErrorMessage: "invalid token or inactive user: Inactive user\n",
		},
		"login command with invalid url returns error no usage": {
			cmd:                  LoginCmd(),
			args:                 []string{"--" + urlFlagName, "localhost", "--" + usernameFlagName, "johndoe", "--" + passwordFlagName, "secret"},
			expectedError:        client.ErrInvalidURL,
			expectedErrorMessage: client.ErrInvalidURL.Error() + ": \"localhost\"\n",
		},
		"login command prints the current user": {
			cmd:  LoginCmd(),
			args: []string{"--" + urlFlagName, testServer.URL, "--" + usernameFlagName, "johndoe", "--" + passwordFlagName, "secret"},
			expectedOutput: `{
  "username": "johndoe",
  "email": "johndoe@example.com",
  "full_name": "John Doe",
  "disabled": false
}
`,
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			errBuffer := new(bytes.Buffer)
			outBuffer := new(bytes.Buffer)
			test.cmd.SetOut(outBuffer)
			test.cmd.SetErr(errBuffer)
			test.cmd.SetUsageTemplate("usage string")
			test.cmd.SetArgs(test.args)

			err := test.cmd.ExecuteContext(t.Context())
			if test.expectedError != nil {
				assert.ErrorIs(t, err, test.expectedError)
				assert.Equal(t, test.expectedErrorMessage, errBuffer.String())
			} else {
				assert.NoError(t, err)
				assert.Empty(t, errBuffer)
			}

			switch {
			case test.expectedUsage:
				assert.Equal(t, "usage string", outBuffer.String())
			case test.expectedOutput != "":
				assert.Equal(t, test.expectedOutput, outBuffer.String())
			default:
				assert.Empty(t, outBuffer)
			}
		})
	}
}

func TestServeFlagsToOptions(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		args          []string
		expectedLevel *logger.Level
		expectedError bool
	}{
		"level flag not set keeps the configured levels": {
			args: []string{"--" + logConfigFlagName, "custom.yaml"},
		},
		"level flag set overrides the root level": {
			args:          []string{"--" + LogLevelFlagName, "warning"},
			expectedLevel: func() *logger.Level { level := logger.WARN; return &level }(),
		},
		"unknown level": {
			args:          []string{"--" + LogLevelFlagName, "loud"},
			expectedError: true,
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			flags := &serveFlags{}
			cmd := &cobra.Command{Use: "serve"}
			flags.addFlags(cmd)
			cmd.Flags().String(LogLevelFlagName, logger.INFO.String(), "")
			require.NoError(t, cmd.ParseFlags(test.args))

			opts, err := flags.toOptions(cmd)
			if test.expectedError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expectedLevel, opts.logLevel)
			assert.Equal(t, flags.logConfigPath, opts.logConfigPath)
			assert.Same(t, logger.Default(), opts.registry)
		})
	}
}
