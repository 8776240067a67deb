// internal/auth/jwt.go
package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

// secret is the HS256 key shared with the auth service that issues player
// tokens. This service only verifies; it never issues tokens to players.
var secret []byte

// TokenExpireTime is the lifetime applied by CreateJWT (used by tests and
// service tooling).
const TokenExpireTime = 72 * time.Hour

// Init loads the shared signing secret from JWT_SECRET.
func Init() {
	s := os.Getenv("JWT_SECRET")
	if s == "" {
		log.Warn("JWT_SECRET not set, falling back to the development secret")
		s = "supersecretkey"
	}
	secret = []byte(s)
}

// CreateJWT signs a token with "sub" = playerID using the shared secret.
func CreateJWT(playerID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": playerID,
		"exp": time.Now().Add(TokenExpireTime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// AuthenticateJWT verifies a token string and returns its "sub" claim.
func AuthenticateJWT(tokenString string) (string, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid jwt claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return "", fmt.Errorf("missing sub in jwt")
	}
	return sub, nil
}
