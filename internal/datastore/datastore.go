// Package datastore opens the alert database and manages its schema.
package datastore

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/conf"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/datastore/entities"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/logger"
)

// Open connects to the configured backend and migrates the schema.
func Open(settings *conf.Settings, log logger.Logger) (*gorm.DB, error) {
	log = logger.OrDiscard(log).Module("datastore")

	dialector, err := dialectorFor(&settings.Database)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLoggerAdapter(log, settings.Database.SlowQueryThreshold),
	})
	if err != nil {
		return nil, dbError(err, "open", errors.PriorityCritical, "backend", settings.Database.Type)
	}

	if err := Migrate(db); err != nil {
		_ = Close(db)
		return nil, err
	}

	log.Info("database opened",
		logger.String("backend", settings.Database.Type))
	return db, nil
}

func dialectorFor(settings *conf.DatabaseSettings) (gorm.Dialector, error) {
	switch settings.Type {
	case conf.DatabaseSQLite:
		path := settings.SQLite.Path
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, dbError(err, "create-database-dir", errors.PriorityHigh, "path", dir)
			}
		}
		return sqlite.Open(path), nil
	case conf.DatabaseMySQL:
		return mysql.Open(MySQLDSN(&settings.MySQL)), nil
	default:
		return nil, errors.Newf("unsupported database type %q", settings.Type).
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Context("operation", "open").
			Build()
	}
}

// MySQLDSN returns the driver DSN for the configured MySQL database.
// Times are stored and parsed in UTC.
func MySQLDSN(settings *conf.MySQLSettings) string {
	cfg := gomysql.NewConfig()
	cfg.User = settings.Username
	cfg.Passwd = settings.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(settings.Host, settings.Port)
	cfg.DBName = settings.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Migrate creates or updates the alert tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.ThresholdSetting{}, &entities.Alert{}); err != nil {
		return dbError(err, "auto-migrate", errors.PriorityCritical)
	}
	return nil
}

// Ping checks that the database answers within the context deadline.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return dbError(err, "ping", "")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return dbError(err, "ping", "")
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return dbError(err, "close", "")
	}
	return sqlDB.Close()
}
