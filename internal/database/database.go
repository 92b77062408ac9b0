// Package database opens the connection pool for the configured driver and
// applies the embedded schema migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/oracle312/AuthService/internal/config"
	"github.com/oracle312/AuthService/internal/migrations"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// driverNames maps config drivers to database/sql driver names.
var driverNames = map[string]string{
	config.DriverPostgres: "pgx",
	config.DriverSQLite:   "sqlite",
}

var dialects = map[string]goose.Dialect{
	config.DriverPostgres: goose.DialectPostgres,
	config.DriverSQLite:   goose.DialectSQLite3,
}

// Open creates the pool, applies the pool limits and pings the database.
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	driverName, ok := driverNames[cfg.Database.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	dbpool, err := sql.Open(driverName, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	if cfg.Database.Driver == config.DriverSQLite {
		// SQLite 只允许一个写连接
		dbpool.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return dbpool, nil
}

// Migrate applies every pending migration for the driver and returns how many ran.
func Migrate(ctx context.Context, db *sql.DB, driver string) (int, error) {
	dialect, ok := dialects[driver]
	if !ok {
		return 0, fmt.Errorf("unsupported database driver %q", driver)
	}

	fsys, err := fs.Sub(migrations.FS, driver)
	if err != nil {
		return 0, fmt.Errorf("migrations for %s: %w", driver, err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("new migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrate up: %w", err)
	}

	for _, res := range results {
		slog.Info("已应用数据库迁移", "version", res.Source.Version, "path", res.Source.Path, "duration", res.Duration)
	}

	return len(results), nil
}
