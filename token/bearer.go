package token

import (
	"net/http"

	"golang.org/x/oauth2"
)

// Bearer wraps an access token for use on outgoing requests. When the token
// can be decoded its exp claim becomes the oauth2 expiry.
func Bearer(access string) *oauth2.Token {
	t := &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	if claims, err := ParseClaims(access); err == nil {
		t.Expiry = claims.ExpiresAt
	}
	return t
}

// SetAuthHeader sets "Authorization: Bearer <access>" on req.
func SetAuthHeader(req *http.Request, access string) {
	(&oauth2.Token{AccessToken: access, TokenType: "Bearer"}).SetAuthHeader(req)
}
