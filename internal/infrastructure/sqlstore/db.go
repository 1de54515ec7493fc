// Package sqlstore keeps user records in a relational database. SQLite and
// PostgreSQL share the same repository code; only the driver, the placeholder
// format and the error classification differ.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-matchmaker/internal/config"
	"github.com/go-matchmaker/internal/logger"
	"github.com/go-matchmaker/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
	driver  string
	builder sq.StatementBuilderType
	logger  *logger.Logger
}

// Open connects to the database selected by cfg.Driver and pings it.
func Open(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (*DB, error) {
	var driverName string
	switch cfg.Driver {
	case config.DriverPostgres:
		driverName = "pgx"
	case config.DriverSQLite:
		driverName = "sqlite3"
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", cfg.Driver)
	}

	conn, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		log.Err(err).Str("func", "sqlstore.Open").Msg("error opening database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// a single writer avoids "database is locked" under concurrent requests
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(4)
	}

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "sqlstore.Open").Msg("error connecting database (ping)")
		conn.Close()
		return nil, err
	}
	log.Info().Str("func", "sqlstore.Open").Str("driver", cfg.Driver).Msg("connected to database successfully")

	return New(conn, cfg.Driver, log), nil
}

// New wraps an already opened connection. driver is config.DriverSQLite or
// config.DriverPostgres and picks the placeholder format.
func New(conn *sql.DB, driver string, log *logger.Logger) *DB {
	var placeholder sq.PlaceholderFormat = sq.Question
	if driver == config.DriverPostgres {
		placeholder = sq.Dollar
	}
	return &DB{
		DB:      conn,
		driver:  driver,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		logger:  log,
	}
}

// Migrate brings the schema up to date.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.driver)
}
