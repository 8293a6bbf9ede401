// Package errors adds context to errors while keeping them matchable with Is and As.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Wrap prefixes err with context. A nil err stays nil.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Wrapf is Wrap with a formatted context.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// New, Is and As are re-exported so callers need a single errors import.
var (
	New = stderrors.New
	Is  = stderrors.Is
	As  = stderrors.As
)
