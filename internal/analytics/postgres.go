package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pgvector/pgvector-go"

	"github.com/spiralogic/elemental/pkg/types"
)

// postgresSchema is the base decision log schema (idempotent).
const postgresSchema = `
CREATE TABLE IF NOT EXISTS decisions (
	id              TEXT PRIMARY KEY,
	session_id      TEXT NOT NULL,
	turn_index      INTEGER NOT NULL,
	primary_element TEXT NOT NULL DEFAULT '',
	balance_element TEXT NOT NULL DEFAULT '',
	strategy        TEXT NOT NULL,
	urgency         TEXT NOT NULL,
	topics          JSONB NOT NULL DEFAULT '[]',
	intensity       JSONB NOT NULL DEFAULT '{}',
	created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decisions_session ON decisions(session_id, turn_index);
`

// postgresVectorMigration adds the intensity snapshot as a 5-dimensional
// vector column, enabling similarity search over recorded session states.
const postgresVectorMigration = `
ALTER TABLE decisions ADD COLUMN IF NOT EXISTS intensity_vec vector(5);
CREATE INDEX IF NOT EXISTS idx_decisions_intensity_vec
	ON decisions USING ivfflat (intensity_vec vector_l2_ops) WITH (lists = 100);
`

// PostgresSink is a decision log backed by PostgreSQL. When the pgvector
// extension is available it also stores each decision's intensity snapshot
// as a vector(5), so tuning work can ask "which recorded turns looked like
// this session state" across large decision corpora.
type PostgresSink struct {
	db                *sql.DB
	pgvectorAvailable bool
}

// NewPostgresSink opens a decision log on the given DSN.
func NewPostgresSink(dsn string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("analytics: failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("analytics: failed to ping postgres: %w", err)
	}

	s := &PostgresSink{db: db}

	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("analytics: failed to apply schema: %w", err)
	}

	// Try to enable pgvector. This fails on servers without the extension —
	// log a warning and continue without similarity search.
	if _, err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		log.Printf("analytics: pgvector extension not available (similarity search disabled): %v", err)
	} else if _, err := db.Exec(postgresVectorMigration); err != nil {
		log.Printf("analytics: failed to apply pgvector migration (similarity search disabled): %v", err)
	} else {
		s.pgvectorAvailable = true
	}

	return s, nil
}

// intensityVector flattens an intensity map into the canonical 5-dimension
// layout (classifier priority order).
func intensityVector(intensity map[types.Element]float64) pgvector.Vector {
	vec := make([]float32, len(types.ClassifierPriority))
	for i, el := range types.ClassifierPriority {
		vec[i] = float32(intensity[el])
	}
	return pgvector.NewVector(vec)
}

// Record implements Sink.
func (s *PostgresSink) Record(ctx context.Context, d *types.Decision) error {
	topics, err := json.Marshal(d.Topics)
	if err != nil {
		return fmt.Errorf("analytics: failed to marshal topics: %w", err)
	}
	intensity, err := json.Marshal(d.Intensity)
	if err != nil {
		return fmt.Errorf("analytics: failed to marshal intensity: %w", err)
	}

	if s.pgvectorAvailable {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO decisions
				(id, session_id, turn_index, primary_element, balance_element,
				 strategy, urgency, topics, intensity, intensity_vec, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			d.ID, d.SessionID, d.TurnIndex, string(d.PrimaryElement),
			string(d.BalanceElement), string(d.Strategy), string(d.Urgency),
			string(topics), string(intensity), intensityVector(d.Intensity), d.CreatedAt)
	} else {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO decisions
				(id, session_id, turn_index, primary_element, balance_element,
				 strategy, urgency, topics, intensity, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			d.ID, d.SessionID, d.TurnIndex, string(d.PrimaryElement),
			string(d.BalanceElement), string(d.Strategy), string(d.Urgency),
			string(topics), string(intensity), d.CreatedAt)
	}
	if err != nil {
		return fmt.Errorf("analytics: failed to record decision: %w", err)
	}
	return nil
}

// SimilarState is one result of a similarity query.
type SimilarState struct {
	DecisionID string
	SessionID  string
	TurnIndex  int
	Strategy   types.Strategy
	Distance   float64
}

// SimilarStates returns the k recorded decisions whose intensity snapshots
// sit closest (L2) to the given state. Requires pgvector.
func (s *PostgresSink) SimilarStates(ctx context.Context, intensity map[types.Element]float64, k int) ([]SimilarState, error) {
	if !s.pgvectorAvailable {
		return nil, fmt.Errorf("analytics: similarity search requires the pgvector extension")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, turn_index, strategy, intensity_vec <-> $1 AS distance
		FROM decisions
		WHERE intensity_vec IS NOT NULL
		ORDER BY intensity_vec <-> $1
		LIMIT $2`, intensityVector(intensity), k)
	if err != nil {
		return nil, fmt.Errorf("analytics: similarity query failed: %w", err)
	}
	defer rows.Close()

	var out []SimilarState
	for rows.Next() {
		var st SimilarState
		var strategy string
		if err := rows.Scan(&st.DecisionID, &st.SessionID, &st.TurnIndex, &strategy, &st.Distance); err != nil {
			return nil, fmt.Errorf("analytics: failed to scan similarity row: %w", err)
		}
		st.Strategy = types.Strategy(strategy)
		out = append(out, st)
	}
	return out, rows.Err()
}

// Close implements Sink.
func (s *PostgresSink) Close() error {
	return s.db.Close()
}
