// Package auth wires the detection provider's bearer credential into an
// http.Client so adapter code never touches Authorization headers directly.
package auth

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// NewProviderClient builds an http.Client that attaches the provider bearer
// token to every request. The token is static configuration; there is no
// refresh flow, so a plain static token source is enough.
func NewProviderClient(token string, timeout time.Duration) *http.Client {
	source := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	})

	base := &http.Client{Timeout: timeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	client := oauth2.NewClient(ctx, source)
	// oauth2.NewClient drops the base client's timeout; restore it so every
	// provider call stays bounded.
	client.Timeout = timeout
	return client
}
