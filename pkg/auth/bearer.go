package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrMissingToken = errors.New("missing authorization header")
	ErrMalformed    = errors.New("invalid authorization header format")
	ErrInvalidToken = errors.New("invalid token")
)

// ExtractBearerToken returns the token of an "Authorization: Bearer <token>" header
func ExtractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrMalformed
	}

	return strings.TrimSpace(parts[1]), nil
}

// SecretValidator checks bearer tokens against a shared secret
type SecretValidator struct {
	secret []byte
}

// NewSecretValidator creates a validator for the given secret
func NewSecretValidator(secret string) *SecretValidator {
	return &SecretValidator{secret: []byte(secret)}
}

// Validate compares the token to the secret in constant time. An empty
// secret rejects every token.
func (v *SecretValidator) Validate(token string) error {
	if len(v.secret) == 0 {
		return ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(token), v.secret) != 1 {
		return ErrInvalidToken
	}
	return nil
}
