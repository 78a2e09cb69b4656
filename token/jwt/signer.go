package jwt

import (
	"fmt"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Signer signs and verifies JWT tokens
type Signer interface {
	// Sign creates a signed JWT token from claims
	Sign(claims jwtlib.MapClaims) (string, error)

	// GetVerificationKey returns the key used to verify token
	GetVerificationKey(token *jwtlib.Token) (any, error)

	// GetSigningMethod returns the JWT signing method used
	GetSigningMethod() jwtlib.SigningMethod
}

var _ Signer = (*HMACSigner)(nil)

// HMACSigner implements Signer using symmetric HMAC-SHA256
type HMACSigner struct {
	secret []byte
}

// NewHMACSigner creates a new HMAC signer with the given secret
func NewHMACSigner(secret string) *HMACSigner {
	return &HMACSigner{
		secret: []byte(secret),
	}
}

func (h *HMACSigner) Sign(claims jwtlib.MapClaims) (string, error) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token with HMAC: %w", err)
	}
	return signedToken, nil
}

func (h *HMACSigner) GetVerificationKey(token *jwtlib.Token) (any, error) {
	if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}

func (h *HMACSigner) GetSigningMethod() jwtlib.SigningMethod {
	return jwtlib.SigningMethodHS256
}
