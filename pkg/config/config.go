package config

import (
	"io"
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ssm/pkg/consts"
	"github.com/pseudomuto/ssm/pkg/utils"
	"gopkg.in/yaml.v3"
)

type (
	// TLS holds the files used to connect over mutual TLS. All three must be set
	// for TLS to be enabled.
	TLS struct {
		// CAFile is the certificate authority PEM used to verify the server.
		CAFile string `yaml:"ca_file,omitempty"`

		// CertFile is the client certificate PEM.
		CertFile string `yaml:"cert_file,omitempty"`

		// KeyFile is the client private key PEM.
		KeyFile string `yaml:"key_file,omitempty"`
	}

	// ClickHouse represents ClickHouse-specific configuration settings.
	ClickHouse struct {
		// Cluster adds ON CLUSTER to the ledger DDL for distributed deployments.
		Cluster string `yaml:"cluster,omitempty"`

		// TLS configures mutual TLS for the native protocol connection.
		TLS TLS `yaml:"tls,omitempty"`
	}

	// Config holds everything needed to connect to a database and find its
	// migrations.
	//
	// Values come from, in increasing order of precedence, the defaults in
	// consts, an optional YAML file, environment variables and command line
	// flags. This package handles the first two; the CLI overlays the rest.
	Config struct {
		// Host is the database endpoint. Its scheme selects the backend.
		Host string `yaml:"host"`

		// Path is the directory holding migration files.
		Path string `yaml:"path"`

		// Namespace is the SurrealDB namespace. Ignored by other backends.
		Namespace string `yaml:"namespace"`

		// Database is the target database.
		Database string `yaml:"database"`

		// Username and Password are used to sign in when Username is set.
		Username string `yaml:"username,omitempty"`
		Password string `yaml:"password,omitempty"`

		// Table is the name of the ledger table.
		Table string `yaml:"table"`

		// Ext overrides the migration file extension chosen by the backend.
		Ext string `yaml:"ext,omitempty"`

		// Timeout bounds a whole run. Zero means no limit.
		Timeout time.Duration `yaml:"timeout,omitempty"`

		// ClickHouse contains ClickHouse-specific configuration settings.
		ClickHouse ClickHouse `yaml:"clickhouse,omitempty"`
	}
)

// Defaults returns a Config populated with the built-in defaults.
func Defaults() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig parses a configuration from the provided io.Reader. Fields that
// are not set fall back to their defaults.
//
// Example:
//
//	yamlData := `
//	host: ws://db.internal:8000
//	path: db/migrations
//	namespace: app
//	database: prod
//	`
//
//	cfg, err := config.LoadConfig(strings.NewReader(yamlData))
//	if err != nil {
//		panic(err)
//	}
//
//	fmt.Printf("Migrations: %s\n", cfg.Path)
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadConfigFile loads a configuration from the specified file path.
// This is a convenience function that opens the file and calls LoadConfig.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

// LoadOptionalConfigFile loads path when it exists and returns Defaults()
// otherwise.
func LoadOptionalConfigFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Defaults(), nil
	}

	return LoadConfigFile(path)
}

// Validate checks that the configuration can be used to open a connection.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Host)
	if err != nil {
		return errors.Wrapf(err, "invalid host: %s", c.Host)
	}

	if u.Scheme == "" {
		return errors.Errorf("invalid host %q: missing scheme", c.Host)
	}

	if err := utils.ValidateIdentifier("ledger table", c.Table); err != nil {
		return err
	}

	if c.Timeout < 0 {
		return errors.Errorf("invalid timeout %s: must not be negative", c.Timeout)
	}

	tls := c.ClickHouse.TLS
	if set := countSet(tls.CAFile, tls.CertFile, tls.KeyFile); set != 0 && set != 3 {
		return errors.New("clickhouse tls requires ca_file, cert_file and key_file")
	}

	return nil
}

// Enabled reports whether mutual TLS is configured.
func (t TLS) Enabled() bool {
	return t.CAFile != "" && t.CertFile != "" && t.KeyFile != ""
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = consts.DefaultHost
	}
	if c.Path == "" {
		c.Path = consts.DefaultPath
	}
	if c.Namespace == "" {
		c.Namespace = consts.DefaultNamespace
	}
	if c.Database == "" {
		c.Database = consts.DefaultDatabase
	}
	if c.Table == "" {
		c.Table = consts.DefaultLedgerTable
	}
}

func countSet(values ...string) int {
	n := 0
	for _, v := range values {
		if v != "" {
			n++
		}
	}

	return n
}
