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

// statusRoutes registers the health, readiness and stats routes under the /-/ prefix, which is
// excluded from the request logs.
func statusRoutes(app *fiber.App, serviceName, serviceVersion string, stats StatsFunc) {
	status := func(c *fiber.Ctx) error {
		return c.JSON(statusResponse{
			Status:  "OK",
			Name:    serviceName,
			Version: serviceVersion,
		})
	}

	app.Get("/-/healthz", status)
	app.Get("/-/ready", status)
	app.Get("/-/stats", func(c *fiber.Ctx) error {
		if stats == nil {
			return c.JSON(fiber.Map{})
		}
		return c.JSON(stats())
	})
}
