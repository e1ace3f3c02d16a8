// Package auth holds identity and authorization decisions over the
// request's session record. The session itself is loaded once per request
// by the server's session middleware; these checks are pure.
package auth

import (
	"fmt"

	"bizdir/pkg/types"

	"golang.org/x/crypto/bcrypt"
)

// Check reports whether a valid authenticated session exists.
func Check(sess *types.Session) bool {
	return sess != nil && sess.UserID > 0
}

// HasRole checks the session-cached role list. Role changes require
// re-login to take effect.
func HasRole(sess *types.Session, slug string) bool {
	if sess == nil {
		return false
	}
	for _, role := range sess.Roles {
		if role == slug {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the session carries at least one of slugs.
func HasAnyRole(sess *types.Session, slugs ...string) bool {
	for _, slug := range slugs {
		if HasRole(sess, slug) {
			return true
		}
	}
	return false
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a plaintext password against its stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
