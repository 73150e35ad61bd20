package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// NewDB opens a MySQL connection pool and verifies it is reachable.
func NewDB(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := driverConfig(dsn)
	if err != nil {
		return nil, err
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connector: %w", err)
	}
	db := sql.OpenDB(connector)

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// driverConfig parses dsn and forces the options the repositories rely on.
func driverConfig(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing dsn: %w", err)
	}
	// Birthday and timestamp columns are scanned into time.Time.
	cfg.ParseTime = true
	// Affected rows count matched rows, so a no-op UPDATE still reports 1.
	cfg.ClientFoundRows = true
	return cfg, nil
}
