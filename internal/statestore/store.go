// Package statestore persists the most recent workflow state as a diagnostic
// snapshot. Last-writer-wins; there is deliberately no versioning.
package statestore

import (
	"errors"

	"lecturelens/internal/workflow"
)

// ErrNotFound indicates no snapshot has been written yet.
var ErrNotFound = errors.New("statestore: no snapshot")

// Store saves and loads the last-run snapshot.
type Store interface {
	Save(state *workflow.State) error
	Load() (*workflow.State, error)
}

// New selects the Postgres backend when a DSN is configured, otherwise the
// file backend at path.
func New(path, dsn string) (Store, error) {
	if dsn != "" {
		return NewPostgresStore(dsn)
	}
	return NewFileStore(path), nil
}
