package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/clinique-espoir-be/internal/models"
	"github.com/rs/zerolog/log"
)

// CookieName is the cookie carrying the admin token.
const CookieName = "admin_token"

// TokenTTL is the lifetime of an admin token.
const TokenTTL = 12 * time.Hour

// ErrBadToken is returned for tokens that fail validation.
var ErrBadToken = errors.New("invalid token")

// Claims defines the JWT claims structure.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserClaimsKey is the context key for admin claims.
type contextKey string

const UserClaimsKey = contextKey("adminClaims")

// Tokens signs and validates admin tokens with a shared HMAC secret.
type Tokens struct {
	key []byte
	now func() time.Time
}

// NewTokens creates a token issuer for the given secret.
func NewTokens(secret string) *Tokens {
	return &Tokens{key: []byte(secret), now: time.Now}
}

// GenerateJWT creates a new admin token.
func (t *Tokens) GenerateJWT() (string, time.Time, error) {
	now := t.now()
	expirationTime := now.Add(TokenTTL)
	claims := &Claims{
		Role: string(models.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.key)
	return signed, expirationTime, err
}

// ValidateJWT parses and validates a JWT string.
func (t *Tokens) ValidateJWT(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		// block alg confusion
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return t.key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Role != string(models.RoleAdmin) {
		return nil, fmt.Errorf("%w: not an admin token", ErrBadToken)
	}
	return claims, nil
}

// Middleware protects the admin routes.
func (t *Tokens) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenStr string

			// 1. Try to get the token from the Authorization header
			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
			}

			// 2. If not in header, fall back to the cookie
			if tokenStr == "" {
				if cookie, err := r.Cookie(CookieName); err == nil {
					tokenStr = cookie.Value
				}
			}

			if tokenStr == "" {
				http.Error(w, "Missing auth token", http.StatusUnauthorized)
				return
			}

			claims, err := t.ValidateJWT(tokenStr)
			if err != nil {
				log.Warn().Err(err).Msg("Rejected admin token")
				http.Error(w, "Invalid auth token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
