package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	adminTokenExpiry = 30 * 24 * time.Hour
	adminRole        = "admin"
)

var errInvalidToken = errors.New("invalid token")

// Auth issues and checks admin bearer tokens for the operational endpoints
type Auth struct {
	jwtSecret []byte
}

// NewAuth creates a new Auth handler. A non-empty secret wins; otherwise the
// signing key is loaded from settings, or generated and persisted.
func NewAuth(db *DB, secret string) *Auth {
	if secret != "" {
		return &Auth{jwtSecret: []byte(secret)}
	}
	return &Auth{jwtSecret: loadOrCreateSecret(db)}
}

// loadOrCreateSecret loads the JWT secret from the database, or generates
// and persists a new one if none exists.
func loadOrCreateSecret(db *DB) []byte {
	if db != nil {
		if h := db.GetSetting("jwt_secret"); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate JWT secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting("jwt_secret", hex.EncodeToString(secret)); err != nil {
			log.Printf("warning: could not persist JWT secret: %v", err)
		}
	}
	return secret
}

// IssueToken signs an admin token for subject valid for ttl (0 = default)
func (a *Auth) IssueToken(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = adminTokenExpiry
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": adminRole,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ValidateToken validates an admin JWT and returns its subject
func (a *Auth) ValidateToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", errInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errInvalidToken
	}
	if role, _ := claims["role"].(string); role != adminRole {
		return "", fmt.Errorf("%w: missing admin role", errInvalidToken)
	}
	sub, _ := claims["sub"].(string)
	return sub, nil
}

// RequireAdmin rejects requests without a valid "Authorization: Bearer" admin token
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if _, err := a.ValidateToken(tokenStr); err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
