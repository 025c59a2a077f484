package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type Authenticator interface {
	Middleware(next http.Handler) http.Handler
}

// OpenAuth lets every request through, used when no secrets are configured.
type OpenAuth struct{}

func (a *OpenAuth) Middleware(next http.Handler) http.Handler {
	return next
}

const (
	tokenCookieName = "seo-admin"
	apiKeyHeader    = "X-Api-Key"
)

type contextKey string

const ContextRole = contextKey("role")

// TokenAuth accepts an api key header or an HS256 signed token with the admin
// role, either as a cookie or a bearer token.
type TokenAuth struct {
	serverKey    []byte
	serverApiKey string
}

func NewTokenAuth(secret, apiKey string) (*TokenAuth, error) {
	if secret == "" && apiKey == "" {
		return nil, fmt.Errorf("token secret or api key is required")
	}
	return &TokenAuth{serverKey: []byte(secret), serverApiKey: apiKey}, nil
}

func (a *TokenAuth) NewToken(username, role string, ttl time.Duration) (string, error) {
	if len(a.serverKey) == 0 {
		return "", fmt.Errorf("no token secret configured")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(a.serverKey)
}

func (a *TokenAuth) ParseJwt(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.serverKey, nil
	})
}

func tokenFromRequest(r *http.Request) string {
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(bearer)
	}
	if cookie, err := r.Cookie(tokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func (a *TokenAuth) role(r *http.Request) (string, bool) {
	if key := r.Header.Get(apiKeyHeader); key != "" && a.serverApiKey != "" {
		if subtle.ConstantTimeCompare([]byte(key), []byte(a.serverApiKey)) == 1 {
			return "api", true
		}
		return "", false
	}
	tokenString := tokenFromRequest(r)
	if tokenString == "" || len(a.serverKey) == 0 {
		return "", false
	}
	token, err := a.ParseJwt(tokenString)
	if err != nil || !token.Valid {
		return "", false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	role, _ := claims["role"].(string)
	return role, role == "admin"
}

func (a *TokenAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := a.role(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ContextRole, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
