// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/oauthdemo/internal/auth"
	"github.com/mia-platform/oauthdemo/internal/logger"
	"github.com/mia-platform/oauthdemo/internal/trace"
)

const (
	authorizationScheme = "Bearer"
	passwordGrantType   = "password"

	detailNotAuthenticated   = "Not authenticated"
	detailInvalidCredentials = "Invalid authentication credentials"
	detailIncorrectPassword  = "Incorrect username or password"
	detailInactiveUser       = "Inactive user"
	detailUnsupportedGrant   = "Unsupported grant type"
	detailMissingFields      = "Missing username or password"
	systemErrorMessage       = "System Error - check logs"
)

type detailResponse struct {
	Detail string `json:"detail"`
}

type systemErrorResponse struct {
	Error string `json:"Error"`
}

type itemsResponse struct {
	Token string `json:"token"`
}

type routes struct {
	service *auth.Service
	message func()
}

func setupRoutes(app *fiber.App, service *auth.Service, registry *logger.Registry) {
	messageLogger := registry.Get(trace.LoggerPrefix + ".message")
	r := &routes{
		service: service,
		message: trace.Func(func() {
			messageLogger.Debug("message")
		}, trace.WithName("message"), trace.WithRegistry(registry)),
	}

	app.Get("/", r.root)
	app.Post("/token", r.token)
	app.Get("/users/me", r.currentUser)
	app.Get("/items/", r.items)
}

func (r *routes) root(c *fiber.Ctx) error {
	r.message()
	return c.JSON(fiber.Map{"Hello": "world"})
}

func (r *routes) token(c *fiber.Ctx) error {
	if grantType := c.FormValue("grant_type"); grantType != "" && grantType != passwordGrantType {
		return detail(c, http.StatusBadRequest, detailUnsupportedGrant)
	}

	credentials := auth.Credentials{
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
	}
	if credentials.Username == "" || credentials.Password == "" {
		return detail(c, http.StatusUnprocessableEntity, detailMissingFields)
	}

	token, err := r.service.Authenticate(c.UserContext(), credentials)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return detail(c, http.StatusBadRequest, detailIncorrectPassword)
	case err != nil:
		return systemError(c, err)
	}

	return c.JSON(token)
}

func (r *routes) currentUser(c *fiber.Ctx) error {
	token, ok := bearerToken(c)
	if !ok {
		return unauthorized(c, detailNotAuthenticated)
	}

	user, err := r.service.ActiveUser(c.UserContext(), token)
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		return unauthorized(c, detailInvalidCredentials)
	case errors.Is(err, auth.ErrInactiveUser):
		return detail(c, http.StatusBadRequest, detailInactiveUser)
	case err != nil:
		return systemError(c, err)
	}

	return c.JSON(user)
}

func (r *routes) items(c *fiber.Ctx) error {
	token, ok := bearerToken(c)
	if !ok {
		return unauthorized(c, detailNotAuthenticated)
	}

	return c.JSON(itemsResponse{Token: token})
}

// bearerToken extracts the token of an Authorization header using the Bearer scheme.
func bearerToken(c *fiber.Ctx) (string, bool) {
	scheme, token, found := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
	if !found || !strings.EqualFold(scheme, authorizationScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

func detail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(detailResponse{Detail: message})
}

func unauthorized(c *fiber.Ctx, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, authorizationScheme)
	return detail(c, http.StatusUnauthorized, message)
}

// systemError hides err from the client, it is recorded on the request logger.
func systemError(c *fiber.Ctx, err error) error {
	logger.FromContext(c.UserContext()).Error("request failed", "error", err.Error())
	return c.Status(http.StatusInternalServerError).JSON(systemErrorResponse{Error: systemErrorMessage})
}
