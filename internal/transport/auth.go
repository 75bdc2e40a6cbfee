package transport

import (
	"net/http"
)

// ShopifyAccessTokenHeader carries the Admin API access token.
const ShopifyAccessTokenHeader = "X-Shopify-Access-Token"

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request, token string)
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request, _ string) {}

// BearerAuth implements Bearer token authentication.
type BearerAuth struct{}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}

// HeaderAuth sends the token verbatim in a custom header.
type HeaderAuth struct {
	Header string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request, token string) {
	header := a.Header
	if header == "" {
		header = ShopifyAccessTokenHeader
	}
	req.Header.Set(header, token)
}

// ShopifyAuth returns the authenticator used by the Shopify Admin API.
func ShopifyAuth() Authenticator {
	return &HeaderAuth{Header: ShopifyAccessTokenHeader}
}
