package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/docket-dev/docket/internal/config"
	"github.com/docket-dev/docket/internal/models"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"

	defaultSQLitePath = "docket.db"
)

// Connect opens the database selected by DB_DRIVER with pooling configured.
func Connect(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBCreateIfMissing && cfg.DBDriver != DriverSQLite {
		if err := EnsureDatabase(ctx, cfg.DBDriver, cfg.DatabaseURL); err != nil {
			return nil, err
		}
	}

	db, err := Open(cfg.DBDriver, cfg.DatabaseURL)

	if err != nil {
		return nil, err
	}

	if cfg.DBDriver == DriverSQLite {
		return db, nil
	}

	sqlDB, err := db.DB()

	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// Open returns a gorm handle for driver. Constraint violations are
// translated into gorm.ErrDuplicatedKey and friends.
func Open(driver, dsn string) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, dsn)

	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(log.New(os.Stdout, "\r\n", log.LstdFlags)),
		TranslateError: true,

		// Cases may be deleted while appointments and files still point at them.
		DisableForeignKeyConstraintWhenMigrating: true,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// newGormLogger reports slow queries and real failures. Lookups that
// find nothing are expected and stay quiet.
func newGormLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverPostgres:
		normalized, err := ensureTimezoneUTC(dsn)

		if err != nil {
			return nil, fmt.Errorf("failed to parse database URL: %w", err)
		}

		return postgres.Open(normalized), nil
	case DriverMySQL:
		normalized, err := normalizeMySQLDSN(dsn)

		if err != nil {
			return nil, fmt.Errorf("failed to parse database URL: %w", err)
		}

		return mysql.Open(normalized), nil
	case DriverSQLite:
		if dsn == "" {
			dsn = defaultSQLitePath
		}

		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// MigrateDatabase applies the embedded SQL migrations on Postgres and
// falls back to AutoMigrate for the other drivers.
func MigrateDatabase(db *gorm.DB, driver string) error {
	if driver == DriverPostgres {
		return RunMigrations(db)
	}

	models := []interface{}{
		&models.User{},
		&models.Client{},
		&models.Case{},
		&models.Appointment{},
		&models.File{},
	}

	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("auto-migrating %T: %w", model, err)
		}
	}

	return nil
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()

	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx)
}

// Close gracefully closes the database connection
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()

	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	return nil
}

// ensureTimezoneUTC ensures a URL-style DSN has TimeZone=UTC. Key/value
// DSNs are returned unchanged.
func ensureTimezoneUTC(dsn string) (string, error) {
	if dsn == "" {
		return "", errors.New("database URL is required")
	}

	if !strings.Contains(dsn, "://") {
		return dsn, nil
	}

	u, err := url.Parse(dsn)

	if err != nil {
		return "", err
	}

	q := u.Query()

	if q.Get("TimeZone") == "" {
		q.Set("TimeZone", "UTC")
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// normalizeMySQLDSN turns on time parsing and, for TiDB Cloud hosts, TLS.
func normalizeMySQLDSN(dsn string) (string, error) {
	dsn = strings.TrimPrefix(dsn, "mysql://")

	cfg, err := mysqldriver.ParseDSN(dsn)

	if err != nil {
		return "", err
	}

	cfg.ParseTime = true
	cfg.Loc = time.UTC

	if strings.Contains(cfg.Addr, "tidbcloud.com") && cfg.TLSConfig == "" {
		cfg.TLSConfig = "true"
	}

	return cfg.FormatDSN(), nil
}
