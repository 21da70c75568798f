package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/ssm/pkg/config"
	"github.com/pseudomuto/ssm/pkg/consts"
	"github.com/pseudomuto/ssm/pkg/database"
	"github.com/stretchr/testify/require"
)

func TestBackendFor(t *testing.T) {
	tests := []struct {
		host     string
		expected database.Backend
		wantErr  bool
	}{
		{host: "http://localhost:8000", expected: database.SurrealDB},
		{host: "HTTPS://db.example.com", expected: database.SurrealDB},
		{host: "ws://localhost:8000", expected: database.SurrealDB},
		{host: "wss://db.example.com/rpc", expected: database.SurrealDB},
		{host: "sqlite://./dev.db", expected: database.SQLite},
		{host: "file:dev.db?mode=rwc", expected: database.SQLite},
		{host: "clickhouse://localhost:9000/default", expected: database.ClickHouse},
		{host: "tcp://localhost:9000", expected: database.ClickHouse},
		{host: "postgres://localhost:5432", wantErr: true},
		{host: "localhost", wantErr: true},
		{host: ":8000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			backend, err := database.BackendFor(tt.host)
			if tt.wantErr {
				require.ErrorIs(t, err, database.ErrUnsupportedScheme)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.expected, backend)
		})
	}
}

func TestBackend_Extension(t *testing.T) {
	require.Equal(t, consts.SurrealExt, database.SurrealDB.Extension())
	require.Equal(t, consts.SQLExt, database.SQLite.Extension())
	require.Equal(t, consts.SQLExt, database.ClickHouse.Extension())
}

func TestClickHouseOptions(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		database string
		expected string
	}{
		{name: "default database", host: "clickhouse://localhost:9000", database: consts.DefaultDatabase, expected: consts.DefaultDatabase},
		{name: "host path wins over default", host: "clickhouse://localhost:9000/analytics", database: consts.DefaultDatabase, expected: ""},
		{name: "host query wins over default", host: "tcp://localhost:9000?database=events", database: consts.DefaultDatabase, expected: ""},
		{name: "configured database wins over host", host: "clickhouse://localhost:9000/analytics", database: "prod", expected: "prod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			cfg.Host = tt.host
			cfg.Database = tt.database
			cfg.Username = "admin"
			cfg.ClickHouse.Cluster = "main"
			cfg.ClickHouse.TLS.CAFile = "/certs/ca.pem"

			opts := database.ClickHouseOptions(cfg)
			require.Equal(t, tt.expected, opts.Database)
			require.Equal(t, "admin", opts.Username)
			require.Equal(t, "main", opts.Cluster)
			require.Equal(t, consts.DefaultLedgerTable, opts.Table)
			require.Equal(t, "/certs/ca.pem", opts.CAFile)
		})
	}
}

func TestOpen_SQLite(t *testing.T) {
	cfg := config.Defaults()
	cfg.Host = "sqlite://" + filepath.Join(t.TempDir(), "app.db")

	conn, err := database.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Equal(t, consts.SQLExt, conn.Extension())
	require.NoError(t, conn.Exec(context.Background(), "CREATE TABLE t (id INTEGER)"))
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name   string
		host   string
		table  string
		errMsg string
	}{
		{name: "unsupported scheme", host: "mysql://localhost", table: "migrations", errMsg: "unsupported host scheme"},
		{name: "invalid table", host: "sqlite://:memory:", table: "bad table", errMsg: "failed to open sqlite connection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			cfg.Host = tt.host
			cfg.Table = tt.table

			conn, err := database.Open(context.Background(), cfg)
			require.ErrorContains(t, err, tt.errMsg)
			require.Nil(t, conn)
		})
	}
}
