package output

import (
	"context"
	"fmt"

	"github.com/YoshitsuguKoike/tasktrack/internal/application/dto"
)

// SnapshotStore is the durable home of a task store snapshot.
// Implementations: flat file (afero) and SQLite.
type SnapshotStore interface {
	// Save replaces the persisted snapshot
	Save(ctx context.Context, snap dto.Snapshot) error

	// Load returns the persisted snapshot. An empty snapshot and no error
	// are returned when nothing was saved yet.
	Load(ctx context.Context) (dto.Snapshot, error)
}

// PersistenceError reports an I/O failure or a malformed record while saving
// or loading a snapshot. It is never swallowed.
type PersistenceError struct {
	Op     string // "save" or "load"
	Record string // offending record, if any
	Err    error
}

func (e *PersistenceError) Error() string {
	if e.Record != "" {
		return fmt.Sprintf("%s snapshot: record %q: %v", e.Op, e.Record, e.Err)
	}
	return fmt.Sprintf("%s snapshot: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
