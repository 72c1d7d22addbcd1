package statestore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"

	"lecturelens/internal/workflow"
)

// PostgresStore keeps the snapshot in a single-row table, upserted per run.
type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("statestore: open postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) ensureSchema() error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS workflow_snapshots (
  slot SMALLINT PRIMARY KEY DEFAULT 1,
  run_id TEXT NOT NULL,
  state JSONB NOT NULL,
  updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
)`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Save(state *workflow.State) error {
	if err := s.ensureSchema(); err != nil {
		return fmt.Errorf("statestore: ensure schema: %w", err)
	}
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("statestore: encode snapshot: %w", err)
	}
	_, err = s.db.Exec(`
INSERT INTO workflow_snapshots (slot, run_id, state, updated_at)
VALUES (1, $1, $2, NOW())
ON CONFLICT (slot)
DO UPDATE SET run_id=EXCLUDED.run_id, state=EXCLUDED.state, updated_at=NOW()`,
		state.ID, b)
	if err != nil {
		return fmt.Errorf("statestore: upsert snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load() (*workflow.State, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("statestore: ensure schema: %w", err)
	}
	var b []byte
	err := s.db.QueryRow(`SELECT state FROM workflow_snapshots WHERE slot = 1`).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("statestore: query snapshot: %w", err)
	}
	var state workflow.State
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, fmt.Errorf("statestore: decode snapshot: %w", err)
	}
	return &state, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }
