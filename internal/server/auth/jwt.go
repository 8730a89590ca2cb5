// Package auth issues and verifies access tokens and authenticates the
// fixed set of dashboard users.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the identity the API needs to
// authorize a request without a lookup.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string
	Username string
	Role     models.Role
}

func GenerateToken(user *models.User, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   user.ID,
		},
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates tokenString and returns its claims. Expired tokens
// yield common.ErrTokenExpired, anything else common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// Principal converts claims back into the user they were issued for.
func (c *Claims) Principal() *models.User {
	return &models.User{ID: c.UserID, Username: c.Username, Role: c.Role}
}
