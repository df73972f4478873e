// Package fleetdb is the embedded SQLite store for lines, stops, driver
// codes, sessions and recorded GPS fixes.
package fleetdb

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"runtime"
	"strings"

	_ "github.com/mattn/go-sqlite3" // CGo-based SQLite driver

	"github.com/Joncarre/aplicacion-de-seguimiento/internal/appconf"
)

//go:embed schema.sql
var ddl string

// Config holds the store configuration.
type Config struct {
	DBPath  string
	Env     appconf.Environment
	Verbose bool
}

// Client is the main entry point for the store.
type Client struct {
	config  Config
	DB      *sql.DB
	Queries *Queries
}

// NewClient opens (and migrates) the database at the configured path.
func NewClient(config Config) (*Client, error) {
	db, err := createDB(config)
	if err != nil {
		return nil, fmt.Errorf("unable to create DB: %w", err)
	}

	return &Client{
		config:  config,
		DB:      db,
		Queries: New(db),
	}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

func (c *Client) GetDBPath() string {
	return c.config.DBPath
}

// createDB opens a SQLite database and applies the embedded schema.
func createDB(config Config) (*sql.DB, error) {
	if config.Env == appconf.Test && config.DBPath != ":memory:" {
		return nil, fmt.Errorf("test database must use in-memory storage, got path: %s", config.DBPath)
	}

	db, err := sql.Open("sqlite3", config.DBPath)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := configureSQLitePerformance(ctx, db); err != nil {
		return nil, fmt.Errorf("error configuring SQLite performance: %w", err)
	}

	if err := performDatabaseMigration(ctx, db); err != nil {
		return nil, fmt.Errorf("error performing database migration: %w", err)
	}

	configureConnectionPool(db, config)

	return db, nil
}

func configureSQLitePerformance(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA cache_size = -8000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("error executing %q: %w", pragma, err)
		}
	}
	return nil
}

func performDatabaseMigration(ctx context.Context, db *sql.DB) error {
	statements := strings.Split(ddl, "-- migrate") // Split DDL into individual statements
	for _, stmt := range statements {
		trimmedStmt := strings.TrimSpace(stmt)
		if trimmedStmt == "" {
			continue // Skip empty statements
		}
		if _, err := db.ExecContext(ctx, trimmedStmt); err != nil {
			return fmt.Errorf("error executing DDL statement [%s]: %w", trimmedStmt, err)
		}
	}
	return nil
}

// SetLineStops atomically replaces the ordered stop list of a line.
// Sequence orders are assigned 1..n from the slice order.
func (c *Client) SetLineStops(ctx context.Context, lineID string, orderedStopIDs []string) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := c.Queries.WithTx(tx)
	if err := qtx.ClearStopsOnLine(ctx, lineID); err != nil {
		return err
	}
	for i, stopID := range orderedStopIDs {
		err := qtx.AddStopToLine(ctx, AddStopToLineParams{
			LineID:        lineID,
			StopID:        stopID,
			SequenceOrder: int64(i + 1),
		})
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func configureConnectionPool(db *sql.DB, config Config) {
	if config.DBPath == ":memory:" {
		// Each in-memory connection sees its own database; force a single
		// connection so all queries share one schema.
		db.SetMaxOpenConns(1)
		return
	}
	db.SetMaxOpenConns(runtime.NumCPU())
	db.SetMaxIdleConns(runtime.NumCPU())
}
