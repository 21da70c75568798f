// Package database opens a migration connection for a configured host.
//
// The host URL scheme picks the backend:
//
//	ws://, wss://, http://, https://  SurrealDB
//	sqlite://, file:                  SQLite
//	clickhouse://, tcp://             ClickHouse
package database
