package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dokanload/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the identity carried in the bearer token payload.
type Claims struct {
	UserID   string `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// User converts the claims into a session user. The subject is used when
// the token has no explicit id claim.
func (c *Claims) User() models.User {
	id := c.UserID
	if id == "" {
		id = c.Subject
	}
	return models.User{ID: id, Email: c.Email, Username: c.Username, Role: c.Role}
}

// DecodeToken reads the claims of token without verifying its signature;
// the server is the only party holding the key. A token that cannot be
// parsed, or carries no identity, is ErrInvalidToken. A token whose exp
// is not after now is ErrTokenExpired.
func DecodeToken(token string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == "" && claims.Subject == "" && claims.Email == "" {
		return nil, fmt.Errorf("%w: no identity claims", ErrInvalidToken)
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}
