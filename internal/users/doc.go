// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package users defines the user accounts known to the service and the repositories
// able to look them up.
package users
