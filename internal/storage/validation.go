// Package storage persists snapshots of fetched transaction lists.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
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

// validateSnapshot checks a snapshot before it is written.
func validateSnapshot(snapshot *Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	}
	for i, txn := range snapshot.Transactions {
		if strings.TrimSpace(txn.ID) == "" {
			return fmt.Errorf("%w: transaction at index %d has no ID", ErrInvalidSnapshot, i)
		}
	}
	return nil
}
