package jwt

import (
	"errors"
	"fmt"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	lmserrors "github.com/jrsteele09/go-lms-client/internal/errors"
	"github.com/jrsteele09/go-lms-client/token"
)

var ErrWrongTokenType = errors.New("wrong token type")

// Verifier validates tokens issued by a Creator sharing the same Signer
type Verifier struct {
	signer Signer
}

func NewVerifier(signer Signer) *Verifier {
	return &Verifier{signer: signer}
}

// Verify checks signature, expiry and token_type, and returns the decoded claims.
func (v *Verifier) Verify(rawToken, wantType string) (*token.Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, lmserrors.ErrInvalidToken
	}

	parsed, err := jwtlib.ParseWithClaims(rawToken, jwtlib.MapClaims{}, v.signer.GetVerificationKey,
		jwtlib.WithValidMethods([]string{v.signer.GetSigningMethod().Alg()}),
		jwtlib.WithTimeFunc(NowTimeFunc),
		jwtlib.WithExpirationRequired(),
	)
	if errors.Is(err, jwtlib.ErrTokenExpired) {
		return nil, fmt.Errorf("%w: %w", lmserrors.ErrTokenExpired, err)
	}
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", lmserrors.ErrInvalidToken, err)
	}

	mc, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: error extracting claims from token", lmserrors.ErrInvalidToken)
	}

	claims := token.ClaimsFromMap(mc)
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongTokenType, claims.TokenType, wantType)
	}
	if !claims.UserType.Valid() || claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing user claims", lmserrors.ErrInvalidToken)
	}
	return claims, nil
}
