package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// EnsureDatabase creates the target database when it does not exist yet.
// Postgres DSNs must be in URL form.
func EnsureDatabase(ctx context.Context, driver, dsn string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch driver {
	case DriverPostgres:
		return ensurePostgresDatabase(ctx, dsn)
	case DriverMySQL:
		return ensureMySQLDatabase(ctx, dsn)
	default:
		return fmt.Errorf("unsupported database type: %s", driver)
	}
}

func ensurePostgresDatabase(ctx context.Context, dsn string) error {
	u, err := url.Parse(dsn)

	if err != nil || u.Scheme == "" {
		return fmt.Errorf("DB_CREATE_IF_MISSING needs a postgres:// URL")
	}

	name := strings.TrimPrefix(u.Path, "/")

	if name == "" {
		return fmt.Errorf("database URL has no database name")
	}

	u.Path = "/postgres"

	conn, err := sql.Open("postgres", u.String())

	if err != nil {
		return fmt.Errorf("failed to open a database connection: %v", err)
	}

	defer conn.Close()

	var exists bool

	err = conn.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists)

	if err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}

	if exists {
		return nil
	}

	if _, err := conn.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}

	return nil
}

func ensureMySQLDatabase(ctx context.Context, dsn string) error {
	normalized, err := normalizeMySQLDSN(dsn)

	if err != nil {
		return err
	}

	cfg, err := mysqldriver.ParseDSN(normalized)

	if err != nil {
		return err
	}

	name := cfg.DBName

	if name == "" {
		return fmt.Errorf("database DSN has no database name")
	}

	cfg.DBName = ""

	conn, err := sql.Open("mysql", cfg.FormatDSN())

	if err != nil {
		return fmt.Errorf("failed to open a database connection: %v", err)
	}

	defer conn.Close()

	quoted := "`" + strings.ReplaceAll(name, "`", "``") + "`"

	if _, err := conn.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+quoted); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}

	return nil
}
