package utils

import "strings"

// BacktickIdentifier adds backticks around an identifier, handling qualified names.
// It backticks each dot separated part, leaving parts that are already backticked
// untouched. Embedded backticks are escaped by doubling them.
//
// Examples:
//   - "migrations" -> "`migrations`"
//   - "analytics.migrations" -> "`analytics`.`migrations`"
//   - "`migrations`" -> "`migrations`"
//   - "" -> ""
//
// ClickHouse and SurrealQL both accept backticked identifiers, so this is used for
// every table and database name interpolated into ledger statements.
func BacktickIdentifier(name string) string {
	return quoteParts(name, '`')
}

// DoubleQuoteIdentifier is the ANSI flavour of BacktickIdentifier, used by the
// SQLite backend.
//
// Examples:
//   - "migrations" -> "\"migrations\""
//   - "main.migrations" -> "\"main\".\"migrations\""
func DoubleQuoteIdentifier(name string) string {
	return quoteParts(name, '"')
}

// IsBackticked returns true if the string is surrounded by backticks.
func IsBackticked(s string) bool {
	return isQuoted(s, '`')
}

// StripBackticks removes backticks from every part of an identifier.
//
// Examples:
//   - "`migrations`" -> "migrations"
//   - "`analytics`.`migrations`" -> "analytics.migrations"
func StripBackticks(s string) string {
	return strings.ReplaceAll(s, "`", "")
}

func quoteParts(name string, q byte) string {
	if name == "" {
		return ""
	}

	parts := strings.Split(name, ".")
	for i, part := range parts {
		if isQuoted(part, q) {
			continue
		}

		quote := string(q)
		parts[i] = quote + strings.ReplaceAll(part, quote, quote+quote) + quote
	}

	return strings.Join(parts, ".")
}

func isQuoted(s string, q byte) bool {
	return len(s) >= 2 && s[0] == q && s[len(s)-1] == q
}
