package apikey

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	dErrors "zipstate/pkg/domain-errors"
)

const keyPrefixTag = "zsk_"

// generateSecret creates a cryptographically secure random secret,
// base64-encoded for use as the private half of an API key.
func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// generatePrefix creates the short public identifier embedded in the
// plaintext key so the matching record can be found without the secret.
func generatePrefix() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate prefix: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// hashSecret creates a bcrypt hash of the provided secret.
func hashSecret(secret string) (string, error) {
	if secret == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "secret cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "secret is too long")
		}
		return "", fmt.Errorf("could not hash secret: %w", err)
	}
	return string(hashed), nil
}

// verifySecret checks if a plaintext secret matches a bcrypt hash.
func verifySecret(secret, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeInvalidInput, "invalid secret")
		}
		return fmt.Errorf("could not verify secret: %w", err)
	}
	return nil
}

// formatKey assembles the plaintext handed to the caller exactly once.
func formatKey(prefix, secret string) string {
	return keyPrefixTag + prefix + "." + secret
}

// splitKey separates a plaintext key into its prefix and secret halves.
func splitKey(plaintext string) (prefix, secret string, err error) {
	body, ok := strings.CutPrefix(plaintext, keyPrefixTag)
	if !ok {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, "malformed API key")
	}
	prefix, secret, ok = strings.Cut(body, ".")
	if !ok || prefix == "" || secret == "" {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, "malformed API key")
	}
	return prefix, secret, nil
}
