// Package token validates the HS256 access tokens minted by the identity
// provider. watchgate never issues tokens; it only checks signature and
// expiry and extracts the ids the screening layer keys its state on.
package token

import (
	"errors"

	id "watchgate/pkg/domain"
	dErrors "watchgate/pkg/domain-errors"
	"watchgate/pkg/platform/middleware/auth"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the wire shape of an access token. The user id travels in the
// registered `sub` claim, the analyst session id in `sid`, and the token id
// used for revocation tracking in the registered `jti`.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Verifier checks token signatures against the shared HS256 secret.
type Verifier struct {
	signingKey []byte
}

func NewVerifier(signingKey string) *Verifier {
	return &Verifier{signingKey: []byte(signingKey)}
}

// ValidateToken parses and verifies a bearer token and returns the typed
// claims the auth middleware consumes. All failures map to CodeUnauthorized;
// callers must not leak the distinction to clients beyond expired vs invalid.
func (v *Verifier) ValidateToken(tokenString string) (*auth.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	userID, err := id.ParseUserID(claims.Subject)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	sessionID, err := id.ParseSessionID(claims.SessionID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return &auth.TokenClaims{
		UserID:    userID,
		SessionID: sessionID,
		JTI:       claims.ID,
	}, nil
}
