// Package docker runs throwaway PostgreSQL and ClickHouse servers with
// testcontainers so backends can be exercised against real engines.
//
//	pg := docker.NewPostgres(docker.Options{Version: "16"})
//	if err := pg.Start(ctx); err != nil {
//		return err
//	}
//	defer pg.Stop(ctx)
//
//	dsn, err := pg.DSN(ctx)
//
// Docker must be reachable from the test process. SkipIfNoDocker skips a test
// when it is not.
package docker
