// Package jwtutil signs and verifies the session tokens issued on login.
//
// A token carries only the minimal identity claim (user id and username);
// the password hash and every other field stay out of the payload.
package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenValidity is fixed for every issued token. There is no revocation
// list; expiry is the only way a token stops being honored.
const TokenValidity = 365 * 24 * time.Hour

type Claims struct {
	jwt.RegisteredClaims
	UserID   uint   `json:"id"`
	Username string `json:"username"`
}

// GenerateToken signs the identity claim with the process-wide secret.
func GenerateToken(secret string, userID uint, username string) (string, error) {
	return GenerateTokenWithValidity(secret, TokenValidity, userID, username)
}

func GenerateTokenWithValidity(secret string, validity time.Duration, userID uint, username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		UserID:   userID,
		Username: username,
	})
	return token.SignedString([]byte(secret))
}

// Verify decodes a presented token. Any failure (bad signature, malformed
// input, elapsed expiry) yields (nil, false): callers treat the bearer as
// anonymous rather than surfacing a distinguishable error.
func Verify(secret, tokenString string) (*Claims, bool) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, false
	}
	return claims, true
}
