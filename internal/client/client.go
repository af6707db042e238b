// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package client talks to the demo service: it obtains a token with the OAuth2 password grant
// and calls the protected endpoints with it.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/mia-platform/oauthdemo/internal/logger"
	"github.com/mia-platform/oauthdemo/internal/users"
)

const (
	loggerName = "app.client"

	tokenPath       = "/token"
	currentUserPath = "/users/me"
)

var (
	ErrInvalidURL      = errors.New("invalid service url")
	ErrLogin           = errors.New("login failed")
	ErrUnauthorized    = errors.New("invalid token or inactive user")
	ErrUnexpectedReply = errors.New("unexpected response")
)

// Client calls the demo service at a base URL.
type Client struct {
	baseURL    string
	config     oauth2.Config
	httpClient *http.Client
}

// New returns a Client for the service at baseURL. A nil httpClient means http.DefaultClient.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL: baseURL,
		config: oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL:  baseURL + tokenPath,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{
			Transport: newTransport(httpClient.Transport),
			Timeout:   httpClient.Timeout,
		},
	}, nil
}

// Login runs the password grant and returns the issued token.
func (c *Client) Login(ctx context.Context, username, password string) (*oauth2.Token, error) {
	log := logger.NamedFromContext(ctx, loggerName)
	log.Debug("requesting token", "username", username)

	token, err := c.config.PasswordCredentialsToken(c.oauthContext(ctx), username, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return nil, fmt.Errorf("%w: %s", ErrLogin, responseDetail(retrieveErr.Body, retrieveErr.Response.Status))
		}
		return nil, fmt.Errorf("%w: %w", ErrLogin, err)
	}

	log.Debug("token obtained", "tokenType", token.Type())
	return token, nil
}

// CurrentUser returns the user owning token.
func (c *Client) CurrentUser(ctx context.Context, token *oauth2.Token) (*users.User, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+currentUserPath, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/json")

	httpClient := c.config.Client(c.oauthContext(ctx), token)
	response, err := httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	var body json.RawMessage
	if err := json.NewDecoder(response.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnexpectedReply, response.Status, err)
	}

	switch response.StatusCode {
	case http.StatusOK:
		user := new(users.User)
		if err := json.Unmarshal(body, user); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnexpectedReply, err)
		}
		return user, nil
	case http.StatusUnauthorized, http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, responseDetail(body, response.Status))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedReply, responseDetail(body, response.Status))
	}
}

// oauthContext makes the oauth2 package use the client transport.
func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// responseDetail extracts the message of an error body, falling back to status.
func responseDetail(body []byte, status string) string {
	var message struct {
		Detail string `json:"detail"`
		Error  string `json:"Error"`
	}
	if err := json.Unmarshal(body, &message); err == nil {
		switch {
		case message.Detail != "":
			return message.Detail
		case message.Error != "":
			return message.Error
		}
	}
	return status
}
