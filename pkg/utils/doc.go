// Package utils provides small helpers shared by the database backends.
//
// # Identifier Utilities (identifier.go)
//
// Ledger statements interpolate the configured table and database names, so
// every backend quotes them the same way:
//
//	utils.BacktickIdentifier("analytics.migrations")
//	// Result: `analytics`.`migrations`
//
//	utils.DoubleQuoteIdentifier("migrations")
//	// Result: "migrations"
//
// # Validation Utilities (validation.go)
//
// Names coming from flags, environment variables, or ssm.yaml are checked
// before they reach any statement:
//
//	if err := utils.ValidateIdentifier("database", cfg.Database); err != nil {
//		return err
//	}
package utils
