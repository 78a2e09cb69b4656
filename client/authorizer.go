package client

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-lms-client/token"
	"github.com/rs/zerolog"
)

// TokenSource yields the current access token, or "" when logged out.
type TokenSource interface {
	AccessToken() string
}

// Authorizer decides per outgoing request whether it carries a bearer
// credential. It never performs I/O.
type Authorizer struct {
	host   string
	paths  *PathMatcher
	tokens TokenSource
	logger zerolog.Logger
}

// NewAuthorizer creates an authorizer for the API served at host
// ("127.0.0.1:8000"). Requests to any other host never carry the token; an
// empty host disables the check.
func NewAuthorizer(host string, paths *PathMatcher, tokens TokenSource, logger zerolog.Logger) *Authorizer {
	return &Authorizer{host: host, paths: paths, tokens: tokens, logger: logger}
}

// Authorize decorates req in place and reports whether path is public.
// Public requests never carry an Authorization header; protected requests
// carry the session's current token when there is one. Requests to a foreign
// host are treated as public.
func (a *Authorizer) Authorize(req *http.Request, path string, multipart bool) bool {
	if multipart {
		// The multipart encoder supplies the boundary-bearing content type.
		req.Header.Del("Content-Type")
	}

	if a.foreign(req) {
		req.Header.Del("Authorization")
		a.logger.Debug().Str("host", req.URL.Host).Msg("request leaves the API host, sending without credentials")
		return true
	}
	if a.paths.IsPublic(path) {
		req.Header.Del("Authorization")
		return true
	}

	access := a.tokens.AccessToken()
	if access == "" {
		req.Header.Del("Authorization")
		a.logger.Debug().Str("path", path).Msg("no access token for protected request")
		return false
	}
	token.SetAuthHeader(req, access)
	return false
}

func (a *Authorizer) foreign(req *http.Request) bool {
	return a.host != "" && req.URL != nil && req.URL.Host != "" && !strings.EqualFold(req.URL.Host, a.host)
}
