// Package errors holds small error helpers shared by formfill packages.
package errors

import "fmt"

// WrapWithContext prefixes err with op. It returns nil for a nil err so it
// can wrap a return value directly.
func WrapWithContext(err error, op string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// WrapWithContextf is WrapWithContext with a formatted prefix.
func WrapWithContextf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
