package app

import (
	"context"
	"fmt"

	"github.com/bgunnarsson/dbpeek/internal/config"
	"github.com/bgunnarsson/dbpeek/internal/db"
	"github.com/bgunnarsson/dbpeek/internal/db/mssql"
	"github.com/bgunnarsson/dbpeek/internal/db/mysql"
	"github.com/bgunnarsson/dbpeek/internal/db/postgres"
	"github.com/bgunnarsson/dbpeek/internal/db/sqlite"
)

// central factory
var openDB = func(ctx context.Context, driver config.Driver, dsn string) (db.DB, error) {
	switch driver {
	case "", config.DriverSqlite:
		return sqlite.Open(ctx, dsn)
	case config.DriverPostgres:
		return postgres.Open(ctx, dsn)
	case config.DriverMssql:
		return mssql.Open(ctx, dsn)
	case config.DriverMysql:
		return mysql.Open(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}
