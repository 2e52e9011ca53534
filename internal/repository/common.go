package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ecommerce-api/pkg/database"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrAlreadyExists      = errors.New("record already exists")
	ErrDatabaseConnection = errors.New("database connection error")
	ErrQueryTimeout       = errors.New("query timeout")
)

// handleError maps driver errors onto the repository sentinels. Duplicates keep the
// driver error in the chain so callers can still classify it.
func handleError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case database.IsDuplicate(err):
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrQueryTimeout, err)
	case isConnectionError(err):
		return fmt.Errorf("%w: %w", ErrDatabaseConnection, err)
	}

	return err
}

// handleErrorWithContext provides error handling with operation context
func handleErrorWithContext(err error, operation string, resourceID interface{}) error {
	mapped := handleError(err)
	if mapped == nil || errors.Is(mapped, ErrNotFound) {
		return mapped
	}

	return fmt.Errorf("%s failed for resource %v: %w", operation, resourceID, mapped)
}

func isConnectionError(err error) bool {
	msg := err.Error()
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"network is unreachable",
		"bad connection",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
