// Package script splits migration scripts into individual statements.
//
// Migration files are executed as written whenever the transport accepts a
// multi-statement script (SurrealDB, SQLite). ClickHouse only accepts a single
// statement per request, and atomic SurrealDB runs wrap the statements of a file
// in a transaction, so both need to know where one statement ends and the next
// begins.
//
// The tokenizer understands:
//   - line comments (--, #, //) and block comments (/* ... */)
//   - single and double quoted strings, with backslash or doubled-quote escapes
//   - backtick and ⟨angle⟩ quoted identifiers
//   - nested {} and () blocks, so SurrealQL function bodies, events, and
//     subqueries containing semicolons stay in one statement
//
// Example usage:
//
//	stmts, err := script.Split(`
//		DEFINE TABLE user SCHEMAFULL;
//		DEFINE FUNCTION fn::greet($name: string) { LET $msg = "hi " + $name; RETURN $msg; };
//	`)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, stmt := range stmts {
//		fmt.Printf("line %d: %s\n", stmt.Line, stmt.Text)
//	}
//
// Statements that contain nothing but comments are dropped.
package script
