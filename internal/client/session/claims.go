package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

var ErrNoToken = errors.New("no access token")

// Claims are the access-token fields the client cares about.
type Claims struct {
	Subject   string
	Email     string
	Role      models.Role
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry. Tokens without an
// exp claim never expire.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// User builds a user record from the claims.
func (c Claims) User() models.User {
	return models.User{ID: c.Subject, Email: c.Email, Role: c.Role}
}

// ParseClaims decodes token without verifying its signature. The client has
// no key to verify with; the backend remains the authority.
func ParseClaims(token string) (Claims, error) {
	if token == "" {
		return Claims{}, ErrNoToken
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("decode access token: %w", err)
	}

	var c Claims
	if sub, err := mc.GetSubject(); err == nil && sub != "" {
		c.Subject = sub
	} else if id, ok := mc["user_uuid"].(string); ok {
		c.Subject = id
	}
	c.Email, _ = mc["email"].(string)
	if role, ok := mc["role"].(string); ok {
		c.Role = models.Role(role)
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}

// Claims decodes the current access token.
func (s *Store) Claims() (Claims, error) {
	return ParseClaims(s.AccessToken())
}
