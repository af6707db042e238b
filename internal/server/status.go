// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"github.com/gofiber/fiber/v2"
)

type statusResponse struct {
	Status  string `json:"status"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// statusRoutes registers the liveness and readiness probes under /-/.
func statusRoutes(app *fiber.App, serviceName, serviceVersion string) {
	handler := func(c *fiber.Ctx) error {
		return c.JSON(statusResponse{
			Status:  "OK",
			Name:    serviceName,
			Version: serviceVersion,
		})
	}

	group := app.Group("/-")
	group.Get("/healthz", handler)
	group.Get("/ready", handler)
}
