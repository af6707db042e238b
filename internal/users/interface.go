// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package users

import (
	"context"
	"errors"
)

var (
	// ErrUserNotFound is returned by a Repository when no account has the requested username.
	ErrUserNotFound = errors.New("user not found")
)

// Repository looks up user accounts by username.
type Repository interface {
	Get(ctx context.Context, username string) (*Account, error)
}

// User is the public view of an account.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Disabled bool   `json:"disabled"`
}

// Account is a stored user together with its password hash. The hash is never serialized.
type Account struct {
	User

	HashedPassword string `json:"-"`
}
