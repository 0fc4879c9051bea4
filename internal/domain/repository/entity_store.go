package repository

import (
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/epic"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/subtask"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/task"
)

// EntityStore owns the three entity collections. It is passive: it does not
// validate, aggregate or index. Every value it returns is a copy.
type EntityStore interface {
	// IDs returns the allocator owned by this store
	IDs() *model.IDAllocator

	// Exists reports whether id is used by any entity kind
	Exists(id model.TaskID) bool

	// Resolve looks id up across all kinds
	Resolve(id model.TaskID) (task.Item, bool)

	Task(id model.TaskID) (task.Task, bool)
	PutTask(t task.Task)
	RemoveTask(id model.TaskID) (task.Task, bool)
	Tasks() []task.Task

	Epic(id model.TaskID) (epic.Epic, bool)
	PutEpic(e epic.Epic)
	RemoveEpic(id model.TaskID) (epic.Epic, bool)
	Epics() []epic.Epic

	Subtask(id model.TaskID) (subtask.Subtask, bool)
	PutSubtask(s subtask.Subtask)
	RemoveSubtask(id model.TaskID) (subtask.Subtask, bool)
	Subtasks() []subtask.Subtask

	// SubtasksOf resolves the epic's subtask IDs in order, skipping IDs that
	// no longer resolve
	SubtasksOf(epicID model.TaskID) []subtask.Subtask

	// Scheduled returns every task and subtask carrying a start time
	Scheduled() []task.Item

	// Clear drops all entities and resets the allocator
	Clear()
}

// PriorityIndex keeps scheduled items ordered by (start time, ID)
type PriorityIndex interface {
	// Upsert replaces any entry for the item and re-inserts it if it has a start time
	Upsert(item task.Item)
	Remove(id model.TaskID)
	// IDs returns identifiers in ascending (start, ID) order
	IDs() []model.TaskID
	Len() int
	Clear()
}

// HistoryTracker remembers the most recently accessed identifiers
type HistoryTracker interface {
	Record(id model.TaskID)
	Forget(id model.TaskID)
	// IDs returns identifiers from oldest to newest access
	IDs() []model.TaskID
	Len() int
	Clear()
}
