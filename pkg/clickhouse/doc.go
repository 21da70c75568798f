// Package clickhouse runs migrations against ClickHouse over the native
// protocol using clickhouse-go.
//
// Migration files use the .sql extension. The native protocol executes one
// statement per query, so each file is split into statements which run in
// order. ClickHouse has no transactions for DDL, so a failing statement leaves
// earlier statements of the same file applied.
//
// The ledger is a MergeTree table in the connection's database. When a
// cluster is configured the ledger DDL runs ON CLUSTER and the table uses
// ReplicatedMergeTree so every replica sees the same history.
//
// Connections support mutual TLS through TLSSettings, and servers older than
// MinimumVersion are rejected when connecting.
//
// Example usage:
//
//	client, err := clickhouse.NewClientWithOptions(ctx, "clickhouse://localhost:9000/analytics", clickhouse.ClientOptions{
//		Table: "migrations",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	n, err := executor.Migrate(ctx, client, "db/migrations")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("applied %d migrations\n", n)
package clickhouse
