package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/jrsteele09/go-lms-client/token"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Subject identifies who a token pair is issued to.
type Subject struct {
	ID    int64
	Email string
	Role  session.Role
}

// Creator issues token pairs in the shape the marketplace API uses
type Creator struct {
	signer     Signer
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCreator creates a new JWT creator
func NewCreator(signer Signer, accessTTL, refreshTTL time.Duration) *Creator {
	return &Creator{
		signer:     signer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// CreatePair issues an access token and a refresh token for subject.
func (c *Creator) CreatePair(subject Subject) (session.Tokens, error) {
	access, err := c.CreateAccessToken(subject)
	if err != nil {
		return session.Tokens{}, err
	}
	refresh, err := c.create(subject, token.TypeRefresh, c.refreshTTL)
	if err != nil {
		return session.Tokens{}, err
	}
	return session.Tokens{Access: access, Refresh: refresh}, nil
}

// CreateAccessToken issues a single access token, as the refresh endpoint does.
func (c *Creator) CreateAccessToken(subject Subject) (string, error) {
	return c.create(subject, token.TypeAccess, c.accessTTL)
}

func (c *Creator) create(subject Subject, tokenType string, ttl time.Duration) (string, error) {
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"token_type": tokenType,            // access or refresh
		"user_type":  string(subject.Role), // student or teacher
		"email":      subject.Email,
		"iat":        now.Unix(),             // Issued At
		"exp":        now.Add(ttl).Unix(),    // Expiry
		"jti":        uuid.New().String(),    // Unique token ID
		"sub":        fmt.Sprint(subject.ID), // Subject, as a string per RFC 7519
	}
	claims[string(subject.Role)+"_id"] = subject.ID

	signed, err := c.signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}
