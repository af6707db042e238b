// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package server contains the HTTP server of the demo application.
// It sets up the Fiber app, configures the request logging middleware and exposes
// the password flow endpoints next to the status routes.
package server
