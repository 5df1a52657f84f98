// Package auth extracts the user identity from the bearer credential issued
// by the identity provider. The token is parsed without signature
// verification: verification is the backend's job, and locally the token is
// only an identity hint used to key per-user state and a request credential.
package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/phishguard/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the subset of token claims this subsystem uses.
type Identity struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the credential has expired. Tokens without an exp
// claim are treated as unexpired.
func (i *Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// ParseIdentity extracts the identity claims from an access token. A token
// that cannot be parsed, or that carries neither a subject nor an email,
// yields common.ErrInvalidToken.
func ParseIdentity(tokenString string) (*Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	sub, _ := claims.GetSubject()
	email, _ := claims["email"].(string)
	if sub == "" && email == "" {
		return nil, fmt.Errorf("%w: no subject or email claim", common.ErrInvalidToken)
	}

	id := &Identity{UserID: sub, Email: email}
	if id.UserID == "" {
		id.UserID = email
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}

	return id, nil
}
