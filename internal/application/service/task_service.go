package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/YoshitsuguKoike/tasktrack/internal/app"
	"github.com/YoshitsuguKoike/tasktrack/internal/application/dto"
	"github.com/YoshitsuguKoike/tasktrack/internal/application/port/input"
	"github.com/YoshitsuguKoike/tasktrack/internal/application/port/output"
	usecase "github.com/YoshitsuguKoike/tasktrack/internal/application/usecase/task"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/epic"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/subtask"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/task"
)

// TaskService serializes access to the task manager and persists a full
// snapshot synchronously after every successful mutation, so the stored
// snapshot always reflects a completed operation.
type TaskService struct {
	mu       sync.Mutex
	manager  *usecase.Manager
	store    output.SnapshotStore // nil keeps everything in memory
	observer output.OperationObserver
}

var _ input.TaskUseCase = (*TaskService)(nil)

// NewTaskService creates a new task service. store and observer may be nil.
func NewTaskService(manager *usecase.Manager, store output.SnapshotStore, observer output.OperationObserver) *TaskService {
	if observer == nil {
		observer = output.NopObserver{}
	}
	return &TaskService{
		manager:  manager,
		store:    store,
		observer: observer,
	}
}

// Load replaces the in-memory content with the persisted snapshot
func (s *TaskService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	snap, err := s.store.Load(ctx)
	if err != nil {
		s.observer.ObserveOperation("load", err)
		return err
	}
	if err := s.manager.Import(snap); err != nil {
		s.observer.ObserveOperation("load", err)
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}
	app.GetLogger().Info("Loaded %d entities and %d history entries", snap.Len(), len(snap.History))
	s.observeStore()
	s.observer.ObserveOperation("load", nil)
	return nil
}

// ==================== Tasks ====================

func (s *TaskService) CreateTask(ctx context.Context, draft task.Task) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.manager.CreateTask(draft)
	if err != nil {
		s.observer.ObserveOperation("create_task", err)
		return task.Task{}, err
	}
	return created, s.persist(ctx, "create_task")
}

func (s *TaskService) GetTask(ctx context.Context, id model.TaskID) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.GetTask(id)
}

func (s *TaskService) UpdateTask(ctx context.Context, t task.Task) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.has(t.ID(), model.TaskTypeTask) {
		return false, nil
	}
	if err := s.manager.UpdateTask(t); err != nil {
		s.observer.ObserveOperation("update_task", err)
		return true, err
	}
	return true, s.persist(ctx, "update_task")
}

func (s *TaskService) DeleteTask(ctx context.Context, id model.TaskID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.has(id, model.TaskTypeTask) {
		return false, nil
	}
	s.manager.DeleteTask(id)
	return true, s.persist(ctx, "delete_task")
}

func (s *TaskService) DeleteAllTasks(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.manager.DeleteAllTasks()
	return s.persist(ctx, "delete_all_tasks")
}

func (s *TaskService) ListTasks(ctx context.Context) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.ListTasks()
}

// ==================== Epics ====================

func (s *TaskService) CreateEpic(ctx context.Context, draft epic.Epic) (epic.Epic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.manager.CreateEpic(draft)
	if err != nil {
		s.observer.ObserveOperation("create_epic", err)
		return epic.Epic{}, err
	}
	return created, s.persist(ctx, "create_epic")
}

func (s *TaskService) GetEpic(ctx context.Context, id model.TaskID) (epic.Epic, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.GetEpic(id)
}

func (s *TaskService) UpdateEpic(ctx context.Context, u epic.Update) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.has(u.ID, model.TaskTypeEpic) {
		return false, nil
	}
	s.manager.UpdateEpic(u)
	return true, s.persist(ctx, "update_epic")
}

func (s *TaskService) DeleteEpic(ctx context.Context, id model.TaskID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.has(id, model.TaskTypeEpic) {
		return false, nil
	}
	s.manager.DeleteEpic(id)
	return true, s.persist(ctx, "delete_epic")
}

func (s *TaskService) DeleteAllEpics(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.manager.DeleteAllEpics()
	return s.persist(ctx, "delete_all_epics")
}

func (s *TaskService) ListEpics(ctx context.Context) []epic.Epic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.ListEpics()
}

// ==================== Subtasks ====================

func (s *TaskService) CreateSubtask(ctx context.Context, draft subtask.Subtask) (subtask.Subtask, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, ok, err := s.manager.CreateSubtask(draft)
	if err != nil {
		s.observer.ObserveOperation("create_subtask", err)
		return subtask.Subtask{}, false, err
	}
	if !ok {
		return subtask.Subtask{}, false, nil
	}
	return created, true, s.persist(ctx, "create_subtask")
}

func (s *TaskService) GetSubtask(ctx context.Context, id model.TaskID) (subtask.Subtask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.GetSubtask(id)
}

// UpdateSubtask returns the stored copy, which keeps its original epic
// whatever st names.
func (s *TaskService) UpdateSubtask(ctx context.Context, st subtask.Subtask) (subtask.Subtask, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.has(st.ID(), model.TaskTypeSubtask) {
		return subtask.Subtask{}, false, nil
	}
	if err := s.manager.UpdateSubtask(st); err != nil {
		s.observer.ObserveOperation("update_subtask", err)
		return subtask.Subtask{}, true, err
	}
	it, _ := s.manager.Peek(st.ID())
	stored, _ := it.(subtask.Subtask)
	return stored, true, s.persist(ctx, "update_subtask")
}

func (s *TaskService) DeleteSubtask(ctx context.Context, id model.TaskID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.has(id, model.TaskTypeSubtask) {
		return false, nil
	}
	s.manager.DeleteSubtask(id)
	return true, s.persist(ctx, "delete_subtask")
}

func (s *TaskService) DeleteAllSubtasks(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.manager.DeleteAllSubtasks()
	return s.persist(ctx, "delete_all_subtasks")
}

func (s *TaskService) ListSubtasks(ctx context.Context) []subtask.Subtask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.ListSubtasks()
}

// GetSubtasksByEpic reports false when the epic does not exist
func (s *TaskService) GetSubtasksByEpic(ctx context.Context, epicID model.TaskID) ([]subtask.Subtask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.has(epicID, model.TaskTypeEpic) {
		return nil, false
	}
	return s.manager.GetSubtasksByEpic(epicID), true
}

// ==================== Queries ====================

func (s *TaskService) GetPrioritizedTasks(ctx context.Context) []task.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.GetPrioritizedTasks()
}

func (s *TaskService) GetHistory(ctx context.Context) []task.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.GetHistory()
}

// ==================== Snapshot ====================

func (s *TaskService) Export(ctx context.Context) dto.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.Export()
}

func (s *TaskService) Import(ctx context.Context, snap dto.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.manager.Import(snap); err != nil {
		s.observer.ObserveOperation("import", err)
		return err
	}
	return s.persist(ctx, "import")
}

// ==================== helpers ====================

func (s *TaskService) has(id model.TaskID, kind model.TaskType) bool {
	k, ok := s.manager.KindOf(id)
	return ok && k == kind
}

// persist writes the full snapshot; callers hold s.mu
func (s *TaskService) persist(ctx context.Context, op string) error {
	s.observeStore()
	if s.store == nil {
		s.observer.ObserveOperation(op, nil)
		return nil
	}
	err := s.store.Save(ctx, s.manager.Export())
	if err != nil {
		app.GetLogger().Error("Failed to persist snapshot after %s: %v", op, err)
	}
	s.observer.ObserveOperation(op, err)
	return err
}

func (s *TaskService) observeStore() {
	snap := s.manager.Export()
	scheduled := len(s.manager.GetPrioritizedTasks())
	s.observer.ObserveStore(len(snap.Tasks), len(snap.Epics), len(snap.Subtasks), scheduled)
}
