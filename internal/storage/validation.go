// Package storage provides the key-value persistence layer for quota and preferences.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	ErrNilContext  = errors.New("context cannot be nil")
	ErrEmptyString = errors.New("string parameter cannot be empty")
	ErrInvalidKey  = errors.New("invalid key")
)

// maxKeyLength bounds stored keys.
const maxKeyLength = 256

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateKey ensures a key is non-empty, bounded, and free of whitespace.
func validateKey(key string) error {
	if err := validateString(key, "key"); err != nil {
		return err
	}
	if len(key) > maxKeyLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidKey, maxKeyLength)
	}
	if strings.ContainsAny(key, " \t\r\n") {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidKey, key)
	}
	return nil
}
