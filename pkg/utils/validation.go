package utils

import (
	"regexp"

	"github.com/pkg/errors"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether value is a plain identifier: a letter or
// underscore followed by letters, digits, or underscores.
//
// Examples:
//   - "migrations" -> true
//   - "_ssm_ledger2" -> true
//   - "2migrations" -> false
//   - "my-table" -> false
//   - "" -> false
func IsIdentifier(value string) bool {
	return identifierPattern.MatchString(value)
}

// ValidateIdentifier returns an error naming kind when value is not a plain identifier.
// Table and database names end up interpolated into DDL, so anything else is refused.
//
// Example:
//
//	if err := utils.ValidateIdentifier("table", cfg.Table); err != nil {
//		return err
//	}
func ValidateIdentifier(kind, value string) error {
	if !IsIdentifier(value) {
		return errors.Errorf("invalid %s name %q: must match %s", kind, value, identifierPattern)
	}

	return nil
}
