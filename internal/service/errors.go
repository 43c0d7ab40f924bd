// Package service orchestrates storage and the ledger core behind the
// HTTP handlers, enforcing the validation rules the core relies on.
package service

import (
	"errors"
	"fmt"
)

// ErrValidation marks malformed or inconsistent input. The HTTP layer maps
// it to 400; storage.ErrNotFound maps to 404; ledger.InvariantError and
// everything else map to 500.
var ErrValidation = errors.New("validation failed")

// validationf wraps ErrValidation with a caller-facing message.
func validationf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}
