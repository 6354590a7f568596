package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL migration statements.
// Each entry is applied once in order. New migrations are appended at the end.
//
// The vec0 virtual table is NOT part of the migrations: its column width
// depends on the embedding dimension, which is only known once the first
// vector arrives. The index layer creates it when the dimension locks.
var migrations = []string{
	// Migration 0: chunk payload rows. Each row carries the metadata for
	// one stored vector: the owning item, the position within that item's
	// chunk sequence, the source text, and a monotonic insertion counter
	// used for deterministic tie-breaking in search.
	`CREATE TABLE IF NOT EXISTS chunk_vectors (
		chunk_key   TEXT PRIMARY KEY,
		parent_id   TEXT NOT NULL,
		seq         INTEGER NOT NULL,
		source_text TEXT NOT NULL,
		pos         INTEGER NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_chunk_vectors_parent ON chunk_vectors(parent_id)`,

	// Migration 1: single-row index metadata. dimension is locked on the
	// first upsert and only reset by a full rebuild; model is advisory.
	`CREATE TABLE IF NOT EXISTS index_meta (
		id        INTEGER PRIMARY KEY CHECK (id = 1),
		dimension INTEGER NOT NULL,
		model     TEXT NOT NULL DEFAULT ''
	)`,
}

// applyMigrations runs any migrations that have not yet been applied.
func applyMigrations(conn *sql.DB) error {
	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for i, stmt := range migrations {
		var count int
		row := conn.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, i)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("check migration %d: %w", i, err)
		}
		if count > 0 {
			continue
		}

		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i, err)
		}

		if _, err := conn.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, i); err != nil {
			return fmt.Errorf("record migration %d: %w", i, err)
		}
	}

	return nil
}
