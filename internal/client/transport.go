// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package client

import (
	"net/http"

	"github.com/mia-platform/oauthdemo/internal/info"
)

// userAgentTransport sets the User-Agent header on every request before handing it to base.
type userAgentTransport struct {
	base http.RoundTripper
}

func newTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &userAgentTransport{base: base}
}

func (t *userAgentTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	request = request.Clone(request.Context())
	request.Header.Set("User-Agent", userAgentString())
	return t.base.RoundTrip(request)
}

// userAgentString builds the User-Agent header sent to the service.
func userAgentString() string {
	return info.AppName + "/" + info.Version
}
