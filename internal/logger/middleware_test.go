// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"bytes"
	"encoding/json"
	netHTTP "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMiddlewareLogger(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	logger := NewLogger(buffer)
	logger.SetLevel(TRACE)

	app := fiber.New(fiber.Config{})
	require.NotNil(t, app)

	middleware := RequestMiddlewareLogger(logger, []string{"/-/healthz"})
	require.NotNil(t, middleware)

	app.Use(middleware)

	req := httptest.NewRequest(netHTTP.MethodGet, "http://example.com/foo", nil)
	req.Header.Set("User-Agent", "UnitTestAgent/1.0")
	req.Header.Set(requestIDHeaderName, "req-1234")
	req.RemoteAddr = "127.0.0.1:12345"

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-1234", resp.Header.Get(requestIDHeaderName))

	logs := buffer.String()
	splitted := strings.Split(logs, "\n")
	require.Len(t, splitted, 3)
	require.Empty(t, splitted[2])

	var incoming, completed map[string]any
	require.NoError(t, json.Unmarshal([]byte(splitted[0]), &incoming))
	require.NoError(t, json.Unmarshal([]byte(splitted[1]), &completed))

	assert.Equal(t, IncomingRequestMessage, incoming["@message"])
	assert.Equal(t, "request.incoming_request", incoming["@module"])
	assert.Equal(t, "req-1234", incoming[requestIDLogKey])
	assert.Equal(t, RequestCompletedMessage, completed["@message"])
	assert.Equal(t, "request.request_completed", completed["@module"])
	assert.Equal(t, "req-1234", completed[requestIDLogKey])
}

func TestRequestMiddlewareLoggerExcludedPrefix(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	logger := NewLogger(buffer)
	logger.SetLevel(TRACE)

	app := fiber.New(fiber.Config{})
	app.Use(RequestMiddlewareLogger(logger, []string{"/-/"}))
	app.Get("/-/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(netHTTP.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(netHTTP.MethodGet, "/-/healthz", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, netHTTP.StatusOK, resp.StatusCode)
	assert.Empty(t, buffer.String())
}

func TestRequestMiddlewareLoggerGeneratesRequestID(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	logger := NewLogger(buffer)

	app := fiber.New(fiber.Config{})
	app.Use(RequestMiddlewareLogger(logger, nil))
	app.Get("/", func(c *fiber.Ctx) error {
		FromContext(c.UserContext()).Info("inside handler")
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(netHTTP.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	requestID := resp.Header.Get(requestIDHeaderName)
	require.Len(t, requestID, 36)

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	require.Len(t, lines, 2) // incoming request is logged at TRACE and filtered out
	var handlerRecord map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &handlerRecord))
	assert.Equal(t, "inside handler", handlerRecord["@message"])
	assert.Equal(t, requestID, handlerRecord[requestIDLogKey])
}
