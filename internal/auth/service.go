// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package auth implements the demo password flow: credentials are checked against a users
// repository and the issued bearer token is the username itself.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/mia-platform/oauthdemo/internal/logger"
	"github.com/mia-platform/oauthdemo/internal/trace"
	"github.com/mia-platform/oauthdemo/internal/users"
)

const (
	// TokenType is the only token type issued by the service.
	TokenType = "bearer"
	// LoggerName is the logger used for the user resolution records.
	LoggerName = "app.api.service.auth"

	fakeHashPrefix = "fakehashed"
)

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("invalid authentication credentials")
	ErrInactiveUser       = errors.New("inactive user")
)

// Credentials are the username and password sent to the token endpoint.
type Credentials struct {
	Username string
	Password string
}

// Token is the response of a successful password grant.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Service authenticates users and resolves bearer tokens. Every operation is traced on the
// app.<operation> logger of the registry it was built with.
type Service struct {
	repository users.Repository
	log        logger.Logger

	authenticate func(context.Context, Credentials) (*Token, error)
	decodeToken  func(context.Context, string) (*users.User, error)
	currentUser  func(context.Context, string) (*users.User, error)
}

// NewService returns a Service looking up accounts in repository. A nil registry means the
// process-wide one.
func NewService(repository users.Repository, registry *logger.Registry) *Service {
	if registry == nil {
		registry = logger.Default()
	}

	s := &Service{
		repository: repository,
		log:        registry.Get(LoggerName),
	}
	s.authenticate = trace.Call(s.checkCredentials, trace.WithName("authenticate"), trace.WithRegistry(registry))
	s.decodeToken = trace.Call(s.fakeDecodeToken, trace.WithRegistry(registry))
	s.currentUser = trace.Call(s.getCurrentUser, trace.WithRegistry(registry))
	return s
}

// Authenticate checks credentials and issues a token for the user. Disabled users still
// obtain a token, they are rejected when the token is used.
func (s *Service) Authenticate(ctx context.Context, credentials Credentials) (*Token, error) {
	return s.authenticate(ctx, credentials)
}

// CurrentUser returns the user owning token.
func (s *Service) CurrentUser(ctx context.Context, token string) (*users.User, error) {
	return s.currentUser(ctx, token)
}

// ActiveUser works like CurrentUser and returns ErrInactiveUser for disabled users.
func (s *Service) ActiveUser(ctx context.Context, token string) (*users.User, error) {
	user, err := s.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if user.Disabled {
		return nil, ErrInactiveUser
	}
	return user, nil
}

func (s *Service) checkCredentials(ctx context.Context, credentials Credentials) (*Token, error) {
	account, err := s.repository.Get(ctx, credentials.Username)
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, err
	}

	if FakeHashPassword(credentials.Password) != account.HashedPassword {
		return nil, ErrInvalidCredentials
	}

	return &Token{AccessToken: account.Username, TokenType: TokenType}, nil
}

// fakeDecodeToken resolves a token issued by checkCredentials back to its user.
func (s *Service) fakeDecodeToken(ctx context.Context, token string) (*users.User, error) {
	account, err := s.repository.Get(ctx, token)
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		return nil, ErrInvalidToken
	case err != nil:
		return nil, err
	}

	user := account.User
	return &user, nil
}

func (s *Service) getCurrentUser(ctx context.Context, token string) (*users.User, error) {
	s.log.Info("Get User")
	if token == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.decodeToken(ctx, token)
	switch {
	case errors.Is(err, ErrInvalidToken):
		return nil, err
	case err != nil:
		s.log.Error("user resolution failed", "error", err.Error())
		return nil, fmt.Errorf("resolving user: %w", err)
	}
	return user, nil
}

// FakeHashPassword is the stand-in hash stored in the demo accounts.
func FakeHashPassword(password string) string {
	return fakeHashPrefix + password
}
