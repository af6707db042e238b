// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggingConfigFromPath(t *testing.T) {
	t.Parallel()

	propagate := false
	expected := &Logging{
		Version: 1,
		Formatters: map[string]Formatter{
			"plain":      {Format: FormatText, DisableTime: true},
			"structured": {Format: FormatJSON, TimeFormat: "2006-01-02T15:04:05.000Z07:00"},
		},
		Handlers: map[string]Handler{
			"console": {Type: HandlerTypeStream, Stream: StreamStdout, Level: "DEBUG", Formatter: "plain"},
			"file": {
				Type:       HandlerTypeFile,
				Filename:   "logs/app.log",
				Formatter:  "structured",
				MaxSizeMB:  10,
				MaxBackups: 3,
				MaxAgeDays: 7,
			},
		},
		Loggers: map[string]Logger{
			"app":             {Level: "DEBUG", Handlers: []string{"console"}, Propagate: &propagate},
			"app.api.service": {Level: "INFO", Handlers: []string{"file"}},
		},
		Root: &Logger{Level: "WARNING", Handlers: []string{"console"}},
	}

	config, err := NewLoggingConfigFromPath(filepath.Join("testdata", "logging.yaml"))
	require.NoError(t, err)
	assert.Equal(t, expected, config)
	assert.False(t, config.Loggers["app"].ShouldPropagate())
	assert.True(t, config.Loggers["app.api.service"].ShouldPropagate())
}

func TestNewLoggingConfigFromPathErrors(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		path          string
		expectedError error
	}{
		"missing file": {
			path:          filepath.Join(t.TempDir(), "missing.yaml"),
			expectedError: syscall.ENOENT,
		},
		"unknown field": {
			path:          filepath.Join("testdata", "unknown-field.yaml"),
			expectedError: ErrParsing,
		},
		"wrong type": {
			path:          filepath.Join("testdata", "invalid.yaml"),
			expectedError: ErrParsing,
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			config, err := NewLoggingConfigFromPath(test.path)
			assert.Nil(t, config)
			assert.ErrorIs(t, err, test.expectedError)
		})
	}
}

func TestNewLoggingConfigValidation(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		document        string
		expectedError   error
		expectedMessage string
	}{
		"empty document": {
			document:        "",
			expectedError:   ErrParsing,
			expectedMessage: "empty document",
		},
		"missing version": {
			document:        "root:\n  level: INFO\n",
			expectedError:   ErrInvalid,
			expectedMessage: "version",
		},
		"unsupported version": {
			document:        "version: 2\n",
			expectedError:   ErrInvalid,
			expectedMessage: "version: failed eq=1",
		},
		"unknown handler type": {
			document:        "version: 1\nhandlers:\n  h:\n    type: socket\n",
			expectedError:   ErrInvalid,
			expectedMessage: "oneof",
		},
		"file handler without filename": {
			document:        "version: 1\nhandlers:\n  h:\n    type: file\n",
			expectedError:   ErrInvalid,
			expectedMessage: "filename: required when Type file",
		},
		"unknown level": {
			document:        "version: 1\nloggers:\n  app:\n    level: LOUD\n",
			expectedError:   ErrInvalid,
			expectedMessage: `unknown level "LOUD"`,
		},
		"unknown formatter reference": {
			document:        "version: 1\nhandlers:\n  h:\n    type: discard\n    formatter: missing\n",
			expectedError:   ErrInvalid,
			expectedMessage: `handler "h" references unknown formatter "missing"`,
		},
		"unknown handler reference": {
			document:        "version: 1\nloggers:\n  app:\n    handlers: [missing]\nroot:\n  handlers: [other]\n",
			expectedError:   ErrInvalid,
			expectedMessage: `logger app references unknown handler "missing"; root logger references unknown handler "other"`,
		},
		"propagate on root": {
			document:        "version: 1\nroot:\n  propagate: false\n",
			expectedError:   ErrInvalid,
			expectedMessage: "root logger does not support propagate",
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			config, err := NewLoggingConfig(strings.NewReader(test.document), "inline")
			assert.Nil(t, config)
			require.ErrorIs(t, err, test.expectedError)
			assert.Contains(t, err.Error(), test.expectedMessage)
		})
	}
}

func TestIsKnownLevel(t *testing.T) {
	t.Parallel()

	for _, level := range []string{"trace", "DEBUG", "Info", "warn", "WARNING", "error", "CRITICAL", "fatal", "OFF", "notset"} {
		assert.True(t, IsKnownLevel(level), level)
	}
	assert.False(t, IsKnownLevel("verbose"))
	assert.False(t, IsKnownLevel(""))
}
