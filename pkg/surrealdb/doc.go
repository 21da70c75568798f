// Package surrealdb runs migrations against SurrealDB using the official Go SDK.
//
// The host URL scheme selects the SDK transport: ws:// and wss:// use the RPC
// websocket, http:// and https:// use the HTTP endpoint. After connecting the
// session optionally signs in as a root user and selects the namespace and
// database.
//
// Migration files use the .surql extension and are sent to the server as a
// single query, so they may hold any number of SurrealQL statements. A file
// fails when any of its statements returns an error.
//
// The ledger is a SCHEMAFULL table with a unique index on version. Atomic
// migrations wrap the file and the ledger entry in BEGIN/COMMIT TRANSACTION.
package surrealdb
