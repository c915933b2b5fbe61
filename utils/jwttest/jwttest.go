// Package jwttest mints tokens signed with the configured secret for tests.
// The service itself only verifies tokens issued by the identity service.
package jwttest

import (
	"time"

	"consultme/config"

	"github.com/golang-jwt/jwt"
)

// Sign returns an HS256 token for subject and role that expires after ttl.
// A negative ttl yields an already expired token.
func Sign(subject, role string, ttl time.Duration) (string, error) {
	return SignWith([]byte(config.AppConfig.JWTSecret), subject, role, ttl)
}

// SignWith is Sign with an explicit key.
func SignWith(key []byte, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}
