// Package storage provides the SQLite persistence layer for the ingredient cache.
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
	ErrInvalidKey  = errors.New("invalid cache key")
)

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

// validateEntries rejects blank keys before they reach the table.
func validateEntries(entries map[string][]string) error {
	for key := range entries {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("%w: blank name", ErrInvalidKey)
		}
	}
	return nil
}
