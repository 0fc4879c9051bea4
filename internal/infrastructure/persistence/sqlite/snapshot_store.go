package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/YoshitsuguKoike/tasktrack/internal/application/dto"
	"github.com/YoshitsuguKoike/tasktrack/internal/application/port/output"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/epic"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/subtask"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/task"
)

// Open opens (or creates) the database at dsn and applies the schema
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database failed: %w", err)
	}
	if err := NewMigrator(db).Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// SnapshotStore keeps the snapshot in SQLite tables. Each Save replaces the
// whole content inside one transaction.
type SnapshotStore struct {
	db *sql.DB
}

var _ output.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates a store on a migrated database
func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save replaces the stored snapshot
func (s *SnapshotStore) Save(ctx context.Context, snap dto.Snapshot) error {
	if err := s.save(ctx, snap); err != nil {
		return &output.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func (s *SnapshotStore) save(ctx context.Context, snap dto.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction failed: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"work_items", "epic_subtasks", "view_history"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s failed: %w", table, err)
		}
	}

	insertItem, err := tx.PrepareContext(ctx, `
		INSERT INTO work_items (id, kind, title, description, status,
		                        duration_minutes, start_time, epic_id, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert failed: %w", err)
	}
	defer insertItem.Close()

	for pos, it := range snap.Items() {
		var (
			duration sql.NullInt64
			start    sql.NullString
			epicID   sql.NullInt64
		)
		if d, ok := it.Duration(); ok {
			minutes, err := dto.Minutes(d)
			if err != nil {
				return fmt.Errorf("save item %d failed: %w", it.ID(), err)
			}
			duration = sql.NullInt64{Int64: minutes, Valid: true}
		}
		if t, ok := it.StartTime(); ok {
			start = sql.NullString{String: t.Format(time.RFC3339Nano), Valid: true}
		}
		if st, ok := it.(subtask.Subtask); ok {
			epicID = sql.NullInt64{Int64: int64(st.EpicID()), Valid: true}
		}
		if _, err := insertItem.ExecContext(ctx,
			int(it.ID()), it.Kind().String(), it.Title(), it.Description(), it.Status().String(),
			duration, start, epicID, pos,
		); err != nil {
			return fmt.Errorf("save item %d failed: %w", it.ID(), err)
		}
	}

	for _, e := range snap.Epics {
		for pos, sid := range e.SubtaskIDs() {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO epic_subtasks (epic_id, subtask_id, position) VALUES (?, ?, ?)",
				int(e.ID()), int(sid), pos,
			); err != nil {
				return fmt.Errorf("save epic %d subtasks failed: %w", e.ID(), err)
			}
		}
	}

	for pos, id := range snap.History {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO view_history (position, item_id) VALUES (?, ?)", pos, int(id),
		); err != nil {
			return fmt.Errorf("save history failed: %w", err)
		}
	}

	return tx.Commit()
}

// Load reads the stored snapshot; an empty database yields an empty snapshot
func (s *SnapshotStore) Load(ctx context.Context) (dto.Snapshot, error) {
	subtaskIDs, err := s.loadEpicSubtasks(ctx)
	if err != nil {
		return dto.Snapshot{}, &output.PersistenceError{Op: "load", Err: err}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, title, description, status, duration_minutes, start_time, epic_id
		FROM work_items
		ORDER BY position
	`)
	if err != nil {
		return dto.Snapshot{}, &output.PersistenceError{Op: "load", Err: err}
	}
	defer rows.Close()

	var snap dto.Snapshot
	for rows.Next() {
		var (
			id                int
			kind, title, desc string
			status            string
			duration, epicID  sql.NullInt64
			start             sql.NullString
		)
		if err := rows.Scan(&id, &kind, &title, &desc, &status, &duration, &start, &epicID); err != nil {
			return dto.Snapshot{}, &output.PersistenceError{Op: "load", Err: err}
		}
		if err := appendRow(&snap, subtaskIDs, id, kind, title, desc, status, duration, start, epicID); err != nil {
			return dto.Snapshot{}, &output.PersistenceError{Op: "load", Record: fmt.Sprintf("id=%d", id), Err: err}
		}
	}
	if err := rows.Err(); err != nil {
		return dto.Snapshot{}, &output.PersistenceError{Op: "load", Err: err}
	}

	history, err := s.loadHistory(ctx)
	if err != nil {
		return dto.Snapshot{}, &output.PersistenceError{Op: "load", Err: err}
	}
	snap.History = history
	return snap, nil
}

func appendRow(
	snap *dto.Snapshot,
	subtaskIDs map[model.TaskID][]model.TaskID,
	rawID int, rawKind, title, desc, rawStatus string,
	duration sql.NullInt64, start sql.NullString, epicID sql.NullInt64,
) error {
	id := model.TaskID(rawID)
	kind, err := model.ParseTaskType(rawKind)
	if err != nil {
		return err
	}
	status, err := model.ParseStatus(rawStatus)
	if err != nil {
		return err
	}

	var dur *time.Duration
	if duration.Valid {
		d := time.Duration(duration.Int64) * time.Minute
		dur = &d
	}
	var startTime *time.Time
	if start.Valid {
		t, err := time.Parse(time.RFC3339Nano, start.String)
		if err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}
		startTime = &t
	}

	switch kind {
	case model.TaskTypeTask:
		snap.Tasks = append(snap.Tasks, task.Reconstruct(id, title, desc, status, startTime, dur))
	case model.TaskTypeEpic:
		snap.Epics = append(snap.Epics, epic.Reconstruct(id, title, desc, status, startTime, dur, nil, subtaskIDs[id]))
	case model.TaskTypeSubtask:
		if !epicID.Valid {
			return fmt.Errorf("subtask without epic")
		}
		snap.Subtasks = append(snap.Subtasks, subtask.Reconstruct(id, model.TaskID(epicID.Int64), title, desc, status, startTime, dur))
	}
	return nil
}

func (s *SnapshotStore) loadEpicSubtasks(ctx context.Context) (map[model.TaskID][]model.TaskID, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT epic_id, subtask_id FROM epic_subtasks ORDER BY epic_id, position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[model.TaskID][]model.TaskID)
	for rows.Next() {
		var epicID, subtaskID int
		if err := rows.Scan(&epicID, &subtaskID); err != nil {
			return nil, err
		}
		result[model.TaskID(epicID)] = append(result[model.TaskID(epicID)], model.TaskID(subtaskID))
	}
	return result, rows.Err()
}

func (s *SnapshotStore) loadHistory(ctx context.Context) ([]model.TaskID, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT item_id FROM view_history ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []model.TaskID
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, model.TaskID(id))
	}
	return ids, rows.Err()
}
