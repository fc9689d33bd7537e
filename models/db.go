package models

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// DB holds the usuario store. DuckDB allows a single writer, so writes are serialized.
type DB struct {
	conn *sql.DB
	mu   sync.Mutex
}

// OpenDB opens (creating if needed) the DuckDB file at path and migrates it.
// An empty path opens an in-memory database.
func OpenDB(path string) (*DB, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, serr.Wrap(err, "failed to create database directory")
		}
	}

	// DuckDB's go driver uses an empty string for in-memory databases
	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, serr.Wrap(err, "failed to open database")
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, serr.Wrap(err, "failed to connect to database")
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, serr.Wrap(err, "failed to migrate database")
	}

	where := path
	if where == "" {
		where = ":memory:"
	}
	logger.Info("Database ready", "path", where)

	return &DB{conn: conn}, nil
}

// Close releases the database handle.
func (d *DB) Close() error {
	if d == nil || d.conn == nil {
		return nil
	}
	if err := d.conn.Close(); err != nil {
		return serr.Wrap(err, "failed to close database")
	}
	return nil
}
