package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/lucasbarros/cardclash/internal/auth"
)

// extractCookieToken extracts a named cookie value from "Cookie" header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

// requireCaller resolves the authenticated player id from either a bearer
// token or the auth_token cookie. Identity checks against request arguments
// happen in the individual handlers.
func requireCaller(r *http.Request) (string, error) {
	token := ""
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	} else {
		token = extractCookieToken(r.Header.Get("Cookie"), "auth_token")
	}
	if token == "" {
		return "", errors.New("missing auth token")
	}

	sub, err := auth.AuthenticateJWT(token)
	if err != nil {
		return "", errors.New("invalid auth token")
	}
	return sub, nil
}
