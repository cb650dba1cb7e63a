package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/spiralogic/elemental/pkg/types"
)

// sqliteSchema is the decision log schema. Applied idempotently on open.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS decisions (
	id              TEXT PRIMARY KEY,
	session_id      TEXT NOT NULL,
	turn_index      INTEGER NOT NULL,
	primary_element TEXT NOT NULL DEFAULT '',
	balance_element TEXT NOT NULL DEFAULT '',
	strategy        TEXT NOT NULL,
	urgency         TEXT NOT NULL,
	topics          TEXT NOT NULL DEFAULT '[]',
	intensity       TEXT NOT NULL DEFAULT '{}',
	created_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decisions_session ON decisions(session_id, turn_index);
CREATE INDEX IF NOT EXISTS idx_decisions_created ON decisions(created_at);
`

// SQLiteSink is a durable decision log backed by SQLite. It exists so tuning
// work can replay real conversation logs and inspect the decisions the
// engine made; the engine itself never reads it back.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (or creates) the decision log at path.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("analytics: failed to open decision log: %w", err)
	}

	// SQLite only supports one concurrent writer. A single open connection
	// serialises writes and avoids SQLITE_BUSY under concurrent sessions.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("analytics: failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("analytics: failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("analytics: failed to apply schema: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

// Record implements Sink.
func (s *SQLiteSink) Record(ctx context.Context, d *types.Decision) error {
	topics, err := json.Marshal(d.Topics)
	if err != nil {
		return fmt.Errorf("analytics: failed to marshal topics: %w", err)
	}
	intensity, err := json.Marshal(d.Intensity)
	if err != nil {
		return fmt.Errorf("analytics: failed to marshal intensity: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO decisions
			(id, session_id, turn_index, primary_element, balance_element,
			 strategy, urgency, topics, intensity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.SessionID, d.TurnIndex, string(d.PrimaryElement),
		string(d.BalanceElement), string(d.Strategy), string(d.Urgency),
		string(topics), string(intensity), d.CreatedAt)
	if err != nil {
		return fmt.Errorf("analytics: failed to record decision: %w", err)
	}
	return nil
}

// Recent returns the latest n decisions, most recent first.
func (s *SQLiteSink) Recent(ctx context.Context, n int) ([]types.Decision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, turn_index, primary_element, balance_element,
		       strategy, urgency, topics, intensity, created_at
		FROM decisions
		ORDER BY created_at DESC, turn_index DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("analytics: failed to query decisions: %w", err)
	}
	defer rows.Close()

	var out []types.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SessionDecisions returns every logged decision for a session in turn order.
func (s *SQLiteSink) SessionDecisions(ctx context.Context, sessionID string) ([]types.Decision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, turn_index, primary_element, balance_element,
		       strategy, urgency, topics, intensity, created_at
		FROM decisions
		WHERE session_id = ?
		ORDER BY turn_index`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("analytics: failed to query session decisions: %w", err)
	}
	defer rows.Close()

	var out []types.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDecision(rows *sql.Rows) (types.Decision, error) {
	var d types.Decision
	var primary, balance, strategy, urgency, topics, intensity string
	if err := rows.Scan(&d.ID, &d.SessionID, &d.TurnIndex, &primary, &balance,
		&strategy, &urgency, &topics, &intensity, &d.CreatedAt); err != nil {
		return d, fmt.Errorf("analytics: failed to scan decision: %w", err)
	}
	d.PrimaryElement = types.Element(primary)
	d.BalanceElement = types.Element(balance)
	d.Strategy = types.Strategy(strategy)
	d.Urgency = types.Urgency(urgency)
	if err := json.Unmarshal([]byte(topics), &d.Topics); err != nil {
		return d, fmt.Errorf("analytics: corrupt topics column: %w", err)
	}
	if err := json.Unmarshal([]byte(intensity), &d.Intensity); err != nil {
		return d, fmt.Errorf("analytics: corrupt intensity column: %w", err)
	}
	return d, nil
}

// Close implements Sink.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
