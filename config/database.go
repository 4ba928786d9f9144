package config

import (
	"fmt"
	"io"
	"log"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB connects to the configured database. SQL statements are logged to w
// at info level outside production, or when DEBUG_SQL is set.
func OpenDB(cfg *AppConfig, w io.Writer) (*gorm.DB, error) {
	logLevel := logger.Info
	if cfg.IsProduction() && !cfg.Database.DebugSQL {
		logLevel = logger.Warn
	}

	gormCfg := &gorm.Config{
		Logger: logger.New(
			log.New(w, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logLevel,
				SlowThreshold:             time.Second,
				IgnoreRecordNotFoundError: true,
			},
		),
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.URL)
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.URL)
	default:
		dsn, err := mysqlDSN(cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		dialector = mysql.Open(dsn)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect %s database: %w", cfg.Database.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if cfg.Database.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}
	return db, nil
}

// mysqlDSN forces time scanning into UTC time.Time values.
func mysqlDSN(raw string) (string, error) {
	dsn, err := gomysql.ParseDSN(raw)
	if err != nil {
		return "", fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	return dsn.FormatDSN(), nil
}
