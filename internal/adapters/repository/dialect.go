package repository

import (
	"fmt"
	"time"
)

const completionsTable = "scale_completions"

// dialect holds the backend-specific statements for the completion table.
type dialect struct {
	driver      string
	createTable string
	createIndex string
	insert      string
	countFor    string
	countAll    string
	timestamp   func(time.Time) any
}

const (
	countAllQuery = "SELECT instrument_id, COUNT(*) FROM " + completionsTable + " GROUP BY instrument_id"
	indexName     = "idx_" + completionsTable + "_instrument"
)

func dialectFor(backend Backend) (dialect, error) {
	switch backend {
	case SQLiteBackend:
		return dialect{
			driver: "sqlite",
			createTable: `CREATE TABLE IF NOT EXISTS ` + completionsTable + ` (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				instrument_id INTEGER NOT NULL,
				origin TEXT NOT NULL DEFAULT '',
				client_type SMALLINT NOT NULL,
				completed_at DATETIME NOT NULL
			)`,
			createIndex: `CREATE INDEX IF NOT EXISTS ` + indexName + ` ON ` + completionsTable + ` (instrument_id)`,
			insert:      `INSERT INTO ` + completionsTable + ` (instrument_id, origin, client_type, completed_at) VALUES (?, ?, ?, ?)`,
			countFor:    `SELECT COUNT(*) FROM ` + completionsTable + ` WHERE instrument_id = ?`,
			countAll:    countAllQuery,
			timestamp:   func(t time.Time) any { return t },
		}, nil

	case MySQLBackend:
		// MySQL has no CREATE INDEX IF NOT EXISTS; the index is declared inline.
		return dialect{
			driver: "mysql",
			createTable: `CREATE TABLE IF NOT EXISTS ` + completionsTable + ` (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				instrument_id INT NOT NULL,
				origin VARCHAR(64) NOT NULL DEFAULT '',
				client_type SMALLINT NOT NULL,
				completed_at DATETIME(6) NOT NULL,
				INDEX ` + indexName + ` (instrument_id)
			)`,
			insert:   `INSERT INTO ` + completionsTable + ` (instrument_id, origin, client_type, completed_at) VALUES (?, ?, ?, ?)`,
			countFor: `SELECT COUNT(*) FROM ` + completionsTable + ` WHERE instrument_id = ?`,
			countAll: countAllQuery,
			// DATETIME carries no zone; store the UTC+8 wall clock.
			timestamp: func(t time.Time) any { return t.Format("2006-01-02 15:04:05.000000") },
		}, nil

	case PostgreSQLBackend:
		return dialect{
			driver: "pgx",
			createTable: `CREATE TABLE IF NOT EXISTS ` + completionsTable + ` (
				id BIGSERIAL PRIMARY KEY,
				instrument_id INTEGER NOT NULL,
				origin TEXT NOT NULL DEFAULT '',
				client_type SMALLINT NOT NULL,
				completed_at TIMESTAMPTZ NOT NULL
			)`,
			createIndex: `CREATE INDEX IF NOT EXISTS ` + indexName + ` ON ` + completionsTable + ` (instrument_id)`,
			insert:      `INSERT INTO ` + completionsTable + ` (instrument_id, origin, client_type, completed_at) VALUES ($1, $2, $3, $4)`,
			countFor:    `SELECT COUNT(*) FROM ` + completionsTable + ` WHERE instrument_id = $1`,
			countAll:    countAllQuery,
			timestamp:   func(t time.Time) any { return t },
		}, nil

	default:
		return dialect{}, fmt.Errorf("%w: %q", ErrUnsupportedBackend, backend)
	}
}
