// Package docker runs throwaway database containers for integration tests and
// local experiments with migrations.
//
// Containers are managed with testcontainers-go. SurrealDB containers start an
// in-memory datastore with root/root credentials. ClickHouse containers use the
// testcontainers ClickHouse module and can mount a config.d directory so
// cluster definitions match production.
//
// # Usage Example
//
//	container := docker.New()
//
//	ctx := context.Background()
//	defer container.Stop(ctx)
//
//	if err := container.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	host, _ := container.GetHost(ctx)
//	conn, err := surrealdb.Open(ctx, surrealdb.Options{
//		Host:      host,
//		Namespace: "test",
//		Database:  "test",
//		Username:  docker.DefaultUsername,
//		Password:  docker.DefaultPassword,
//		Table:     "migrations",
//	})
package docker
