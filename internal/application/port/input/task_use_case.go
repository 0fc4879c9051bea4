package input

import (
	"context"

	"github.com/YoshitsuguKoike/tasktrack/internal/application/dto"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/epic"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/subtask"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/task"
)

// TaskUseCase is the concurrency-safe, persisted task store API consumed by
// the HTTP and CLI adapters. Absence is reported with a false boolean, never
// with an error.
type TaskUseCase interface {
	// Tasks
	CreateTask(ctx context.Context, draft task.Task) (task.Task, error)
	GetTask(ctx context.Context, id model.TaskID) (task.Task, bool)
	UpdateTask(ctx context.Context, t task.Task) (bool, error)
	DeleteTask(ctx context.Context, id model.TaskID) (bool, error)
	DeleteAllTasks(ctx context.Context) error
	ListTasks(ctx context.Context) []task.Task

	// Epics
	CreateEpic(ctx context.Context, draft epic.Epic) (epic.Epic, error)
	GetEpic(ctx context.Context, id model.TaskID) (epic.Epic, bool)
	UpdateEpic(ctx context.Context, u epic.Update) (bool, error)
	DeleteEpic(ctx context.Context, id model.TaskID) (bool, error)
	DeleteAllEpics(ctx context.Context) error
	ListEpics(ctx context.Context) []epic.Epic

	// Subtasks
	CreateSubtask(ctx context.Context, draft subtask.Subtask) (subtask.Subtask, bool, error)
	GetSubtask(ctx context.Context, id model.TaskID) (subtask.Subtask, bool)
	UpdateSubtask(ctx context.Context, st subtask.Subtask) (subtask.Subtask, bool, error)
	DeleteSubtask(ctx context.Context, id model.TaskID) (bool, error)
	DeleteAllSubtasks(ctx context.Context) error
	ListSubtasks(ctx context.Context) []subtask.Subtask
	GetSubtasksByEpic(ctx context.Context, epicID model.TaskID) ([]subtask.Subtask, bool)

	// Queries
	GetPrioritizedTasks(ctx context.Context) []task.Item
	GetHistory(ctx context.Context) []task.Item

	// Snapshot
	Export(ctx context.Context) dto.Snapshot
	Import(ctx context.Context, snap dto.Snapshot) error
}
