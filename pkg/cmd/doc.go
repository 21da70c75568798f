// Package cmd provides the ssm command line interface.
//
// Commands are built with urfave/cli/v3 and provided to the root command
// through an fx value group, so the binary only wires modules together.
//
// # Available Commands
//
//   - apply (alias migrate): apply pending migrations, with --dry-run and --atomic
//   - reset: remove the migration ledger, with --purge to remove the database
//   - status: list migrations with their applied state
//   - new: create the next migration file
//
// # Global Options
//
// Every global flag can also be set through its environment variable or the
// config file (ssm.yaml, or the file named by --config / SSM_CONFIG):
//
//	-H, --host        SSM_HOST                   http://localhost:8000
//	-p, --path        SSM_PATH                   ./
//	-n, --namespace   SSM_NAMESPACE              default
//	-d, --database    SSM_DB_NAME, SSM_DATABASE  dev
//	-U, --username    SSM_USERNAME
//	-P, --password    SSM_PASSWORD
//	    --table       SSM_TABLE                  migrations
//	    --ext         SSM_EXT
//	    --timeout     SSM_TIMEOUT
//	    --verbose     SSM_VERBOSE
//
// # Example Usage
//
//	ssm -H ws://localhost:8000 -U root -P root -p ./migrations apply
//	ssm -H sqlite://./dev.db status
//	ssm -p ./migrations new add_users
//	ssm -H ws://localhost:8000 reset
package cmd
