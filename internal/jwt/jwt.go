package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"inmo-backoffice/internal/config"
	"inmo-backoffice/internal/nonce"
)

var (
	ErrInvalidNonce     = errors.New("invalid nonce")
	ErrNonValidToken    = errors.New("token did not pass validation")
	ErrInvalidClaimType = errors.New("invalid claim type")
)

var tokenSignatureAlg = jwt.SigningMethodHS256

// AuthClaim is the session claim for a logged-in back-office user.
// The jti doubles as the revocation nonce.
type AuthClaim struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func NewAuthClaim(userID, role string) AuthClaim {
	return AuthClaim{
		UserID:           userID,
		Role:             role,
		RegisteredClaims: mustCreateRegisteredClaim(SessionTTL()),
	}
}

// SessionTTL returns the configured session lifetime.
func SessionTTL() time.Duration {
	return time.Duration(config.Cfg.SessionTTL) * time.Hour
}

// DecodeAuthJWT validates a session token. The jti must still exist in the
// nonce store; a consumed jti means the session was logged out.
func DecodeAuthJWT(tokenString string) (*AuthClaim, error) {
	claims, err := decodeJWT(tokenString, &AuthClaim{})
	if err != nil {
		return nil, err
	}
	if !nonce.Store.Exists(context.Background(), claims.ID) {
		return nil, ErrInvalidNonce
	}
	return claims, nil
}

func mustCreateRegisteredClaim(ttl time.Duration) jwt.RegisteredClaims {
	// Nonce outlives the token slightly to allow for clock skew.
	jti, err := nonce.Nonce(ttl + 10*time.Second)
	if err != nil {
		panic(fmt.Sprintf("failed to generate nonce: %v", err))
	}

	now := time.Now().UTC()
	return jwt.RegisteredClaims{
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// Generic JWT token generation function
func GenerateJWT(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(tokenSignatureAlg, claims)
	return token.SignedString([]byte(config.Cfg.Secret))
}

func decodeJWT[T jwt.Claims](tokenString string, claimsType T) (T, error) {
	var zero T

	parsedToken, err := jwt.ParseWithClaims(tokenString, claimsType, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.Cfg.Secret), nil
	}, jwt.WithValidMethods([]string{tokenSignatureAlg.Alg()}))

	if err != nil {
		return zero, err
	} else if parsedToken == nil || !parsedToken.Valid {
		return zero, ErrNonValidToken
	} else if claims, ok := parsedToken.Claims.(T); ok {
		return claims, nil
	}

	return zero, ErrInvalidClaimType
}
