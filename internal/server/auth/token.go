// Package auth implements the credential primitives of the server: signed
// session tokens and password hashing.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avdeev/todolist/internal/common"
)

// Claims is the set of assertions embedded in a session token: the standard
// registered claims plus the owning user's id and email.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email"`
}

var errNonPositiveValidity = errors.New("session token validity must be positive")

// GenerateToken mints an HS256-signed session token for the given identity.
// Expiry is mandatory: a non-positive validity is an error, never an
// unexpiring token.
func GenerateToken(identity Identity, secretKey []byte, validityDuration time.Duration) (string, error) {
	if validityDuration <= 0 {
		return "", errNonPositiveValidity
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: identity.UserID,
		Email:  identity.Email,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies a session token and returns the identity it asserts.
// Failures are distinguishable with errors.Is:
//
//	common.ErrTokenExpired          — lifetime elapsed
//	common.ErrTokenSignatureInvalid — tampered token or wrong key
//	common.ErrTokenMalformed        — anything that does not parse as ours
func ParseToken(tokenString string, secretKey []byte) (Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, common.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Identity{}, common.ErrTokenSignatureInvalid
		default:
			return Identity{}, common.ErrTokenMalformed
		}
	}

	if !token.Valid {
		return Identity{}, common.ErrTokenMalformed
	}

	return Identity{UserID: claims.UserID, Email: claims.Email}, nil
}
