package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-lms-client/session"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var ErrMalformedToken = errors.New("malformed token")

// Claims are the fields the marketplace API puts in its tokens.
type Claims struct {
	TokenType string       // "access" or "refresh"
	UserType  session.Role // student or teacher
	UserID    int64        // student_id or teacher_id, depending on UserType
	Email     string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is past its exp claim. Tokens without
// an exp never expire.
func (c *Claims) Expired() bool {
	return !c.ExpiresAt.IsZero() && NowTimeFunc().After(c.ExpiresAt)
}

// ParseClaims decodes a token WITHOUT verifying its signature. The client
// cannot verify tokens (it has no key); the decoded claims are informational
// only and never used to make authorization decisions.
func ParseClaims(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMalformedToken
	}
	t, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	mc, ok := t.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: error extracting claims", ErrMalformedToken)
	}
	return ClaimsFromMap(mc), nil
}

// ClaimsFromMap maps decoded JWT claims onto Claims.
func ClaimsFromMap(mc jwtlib.MapClaims) *Claims {
	c := &Claims{}
	c.TokenType, _ = mc["token_type"].(string)
	userType, _ := mc["user_type"].(string)
	c.UserType = session.Role(userType)
	c.Email, _ = mc["email"].(string)
	c.JTI, _ = mc["jti"].(string)

	switch c.UserType {
	case session.RoleStudent:
		c.UserID = int64Claim(mc, "student_id")
	case session.RoleTeacher:
		c.UserID = int64Claim(mc, "teacher_id")
	}

	if iat := int64Claim(mc, "iat"); iat != 0 {
		c.IssuedAt = time.Unix(iat, 0)
	}
	if exp := int64Claim(mc, "exp"); exp != 0 {
		c.ExpiresAt = time.Unix(exp, 0)
	}
	return c
}

func int64Claim(mc jwtlib.MapClaims, name string) int64 {
	switch v := mc[name].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
