package persist

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// AuditDB mirrors security_events.jsonl into a queryable SQLite table for
// operators who want to run ad-hoc queries over security events, adapted
// from the teacher's SQLiteStorage connection/pragma setup
// (internal/storage/sqlite.go) down to a single table. It is optional and
// secondary: the core's durable record of a security event is always the
// JSONL file; this index can be rebuilt from it at any time.
type AuditDB struct {
	db *sql.DB
}

// OpenAuditDB opens (creating if necessary) a SQLite database at dbPath
// and ensures the security_events table exists.
func OpenAuditDB(dbPath string) (*AuditDB, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("audit db path cannot be empty")
	}

	dsn := dbPath + "?_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping audit db: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS security_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	detail TEXT NOT NULL,
	context TEXT,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_security_events_kind ON security_events(kind);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit schema: %w", err)
	}

	return &AuditDB{db: db}, nil
}

// Record mirrors one SecurityEvent into the security_events table.
func (a *AuditDB) Record(ev SecurityEvent) error {
	var ctxJSON []byte
	if ev.Context != nil {
		var err error
		ctxJSON, err = json.Marshal(ev.Context)
		if err != nil {
			return err
		}
	}
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := a.db.Exec(
		`INSERT INTO security_events (kind, detail, context, created_at) VALUES (?, ?, ?, ?)`,
		ev.Kind, ev.Detail, string(ctxJSON), ts,
	)
	return err
}

// Close closes the underlying database connection.
func (a *AuditDB) Close() error {
	return a.db.Close()
}
