package database

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ssm/pkg/clickhouse"
	"github.com/pseudomuto/ssm/pkg/config"
	"github.com/pseudomuto/ssm/pkg/consts"
	"github.com/pseudomuto/ssm/pkg/executor"
	"github.com/pseudomuto/ssm/pkg/sqlite"
	"github.com/pseudomuto/ssm/pkg/surrealdb"
)

const (
	// SurrealDB is selected by ws, wss, http and https hosts.
	SurrealDB Backend = "surrealdb"

	// SQLite is selected by sqlite and file hosts.
	SQLite Backend = "sqlite"

	// ClickHouse is selected by clickhouse and tcp hosts.
	ClickHouse Backend = "clickhouse"
)

type (
	// Backend names a supported database.
	Backend string

	// Connection is an open database that migrations can be applied to.
	Connection interface {
		executor.Connection
		Close() error
	}
)

// ErrUnsupportedScheme is returned when a host's scheme does not map to a
// backend.
var ErrUnsupportedScheme = errors.New("unsupported host scheme")

// BackendFor returns the backend selected by host's URL scheme.
func BackendFor(host string) (Backend, error) {
	scheme, _, ok := strings.Cut(host, ":")
	if !ok || scheme == "" {
		return "", errors.Wrapf(ErrUnsupportedScheme, "%s has no scheme", host)
	}

	switch strings.ToLower(scheme) {
	case "ws", "wss", "http", "https":
		return SurrealDB, nil
	case "sqlite", "file":
		return SQLite, nil
	case "clickhouse", "tcp":
		return ClickHouse, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedScheme, "%s", scheme)
	}
}

// Extension returns the migration file extension the backend reads.
func (b Backend) Extension() string {
	if b == SurrealDB {
		return consts.SurrealExt
	}

	return consts.SQLExt
}

// Open connects to the database described by cfg.
//
// Example:
//
//	cfg := config.Defaults()
//	cfg.Host = "sqlite://./dev.db"
//
//	conn, err := database.Open(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer conn.Close()
func Open(ctx context.Context, cfg *config.Config) (Connection, error) {
	backend, err := BackendFor(cfg.Host)
	if err != nil {
		return nil, err
	}

	var (
		conn    Connection
		openErr error
	)

	switch backend {
	case SQLite:
		conn, openErr = sqlite.Open(ctx, cfg.Host, cfg.Table)
	case ClickHouse:
		conn, openErr = clickhouse.NewClientWithOptions(ctx, cfg.Host, ClickHouseOptions(cfg))
	default:
		conn, openErr = surrealdb.Open(ctx, surrealdb.Options{
			Host:      cfg.Host,
			Namespace: cfg.Namespace,
			Database:  cfg.Database,
			Username:  cfg.Username,
			Password:  cfg.Password,
			Table:     cfg.Table,
		})
	}

	if openErr != nil {
		return nil, errors.Wrapf(openErr, "failed to open %s connection", backend)
	}

	return conn, nil
}

// ClickHouseOptions maps cfg onto ClickHouse client options. A database named
// in the host URL wins over the built-in default database, while an explicitly
// configured one wins over the URL.
func ClickHouseOptions(cfg *config.Config) clickhouse.ClientOptions {
	database := cfg.Database
	if database == consts.DefaultDatabase && hostDatabase(cfg.Host) != "" {
		database = ""
	}

	return clickhouse.ClientOptions{
		Cluster:  cfg.ClickHouse.Cluster,
		Database: database,
		Username: cfg.Username,
		Password: cfg.Password,
		Table:    cfg.Table,
		TLSSettings: clickhouse.TLSSettings{
			CAFile:   cfg.ClickHouse.TLS.CAFile,
			CertFile: cfg.ClickHouse.TLS.CertFile,
			KeyFile:  cfg.ClickHouse.TLS.KeyFile,
		},
	}
}

func hostDatabase(host string) string {
	u, err := url.Parse(host)
	if err != nil {
		return ""
	}

	if db := strings.Trim(u.Path, "/"); db != "" {
		return db
	}

	return u.Query().Get("database")
}
