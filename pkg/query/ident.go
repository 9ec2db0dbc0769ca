package query

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidIdentifier is returned when a table or column name is not a plain SQL identifier.
var ErrInvalidIdentifier = errors.New("invalid identifier")

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z_][a-z0-9_]*)?$`)

// ValidIdentifier reports whether name can be interpolated into SQL text as-is.
func ValidIdentifier(name string) bool {
	return len(name) <= 127 && identPattern.MatchString(name)
}

// CheckIdentifier returns an error wrapping ErrInvalidIdentifier for unsafe names.
func CheckIdentifier(name string) error {
	if !ValidIdentifier(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}
