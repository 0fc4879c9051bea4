package task

import (
	"fmt"

	"github.com/YoshitsuguKoike/tasktrack/internal/app"
	"github.com/YoshitsuguKoike/tasktrack/internal/application/dto"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/epic"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/subtask"
	domaintask "github.com/YoshitsuguKoike/tasktrack/internal/domain/model/task"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/repository"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/service"
)

// Manager is the task store facade. Every public call validates first, then
// mutates the store, then re-aggregates the owning epic (subtask changes only)
// and refreshes the priority index. Single-item reads are recorded in history.
//
// Manager does no locking and no I/O; callers serialize access.
type Manager struct {
	store       repository.EntityStore
	priority    repository.PriorityIndex
	history     repository.HistoryTracker
	overlap     *service.OverlapValidator
	aggregation *service.EpicAggregationService
	logger      app.Logger
}

// NewManager creates a facade over the given structures
func NewManager(
	store repository.EntityStore,
	priority repository.PriorityIndex,
	history repository.HistoryTracker,
) *Manager {
	return &Manager{
		store:       store,
		priority:    priority,
		history:     history,
		overlap:     service.NewOverlapValidator(),
		aggregation: service.NewEpicAggregationService(),
		logger:      app.GetLogger(),
	}
}

// SetLogger replaces the logger used for warnings
func (m *Manager) SetLogger(logger app.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// KindOf reports the kind of the entity with id without touching history
func (m *Manager) KindOf(id model.TaskID) (model.TaskType, bool) {
	it, ok := m.store.Resolve(id)
	if !ok {
		return "", false
	}
	return it.Kind(), true
}

// Peek returns a copy of any entity without recording the access
func (m *Manager) Peek(id model.TaskID) (domaintask.Item, bool) {
	return m.store.Resolve(id)
}

// ==================== Tasks ====================

// CreateTask stores a new task and returns the stored copy. A draft without
// an identifier gets the next free one.
func (m *Manager) CreateTask(draft domaintask.Task) (domaintask.Task, error) {
	if err := m.checkExplicitID(draft.ID()); err != nil {
		return domaintask.Task{}, err
	}
	if err := m.validateSchedule(draft); err != nil {
		return domaintask.Task{}, err
	}

	draft.AssignID(m.assignID(draft.ID()))
	m.store.PutTask(draft)
	m.priority.Upsert(draft)
	return draft, nil
}

// GetTask returns a copy of the task and records the access
func (m *Manager) GetTask(id model.TaskID) (domaintask.Task, bool) {
	t, ok := m.store.Task(id)
	if ok {
		m.history.Record(id)
	}
	return t, ok
}

// UpdateTask replaces a stored task. Unknown identifiers are ignored.
func (m *Manager) UpdateTask(t domaintask.Task) error {
	if _, ok := m.store.Task(t.ID()); !ok {
		return nil
	}
	if err := m.validateSchedule(t); err != nil {
		return err
	}
	m.store.PutTask(t)
	m.priority.Upsert(t)
	return nil
}

// DeleteTask removes a task. Unknown identifiers are ignored.
func (m *Manager) DeleteTask(id model.TaskID) {
	if _, ok := m.store.RemoveTask(id); ok {
		m.forget(id)
	}
}

// DeleteAllTasks removes every task
func (m *Manager) DeleteAllTasks() {
	for _, t := range m.store.Tasks() {
		m.store.RemoveTask(t.ID())
		m.forget(t.ID())
	}
}

// ListTasks returns every task ordered by identifier
func (m *Manager) ListTasks() []domaintask.Task {
	return m.store.Tasks()
}

// ==================== Epics ====================

// CreateEpic stores a new epic. Its status and schedule start out derived
// from an empty subtask set regardless of what the draft carries.
func (m *Manager) CreateEpic(draft epic.Epic) (epic.Epic, error) {
	if err := m.checkExplicitID(draft.ID()); err != nil {
		return epic.Epic{}, err
	}

	e := draft.Clone()
	e.ClearSubtasks()
	m.aggregation.OnSubtaskMutated(&e, nil)
	if !e.SameDerived(draft) || len(draft.SubtaskIDs()) > 0 {
		m.logger.Warn("epic %q: status, schedule and subtasks are derived and were not applied", draft.Title())
	}

	e.AssignID(m.assignID(draft.ID()))
	m.store.PutEpic(e)
	return e.Clone(), nil
}

// GetEpic returns a copy of the epic and records the access
func (m *Manager) GetEpic(id model.TaskID) (epic.Epic, bool) {
	e, ok := m.store.Epic(id)
	if ok {
		m.history.Record(id)
	}
	return e, ok
}

// UpdateEpic applies the title and description of u to the stored epic.
// Requested derived fields that differ are ignored with a warning. Unknown
// identifiers are ignored.
func (m *Manager) UpdateEpic(u epic.Update) {
	stored, ok := m.store.Epic(u.ID)
	if !ok {
		return
	}
	if u.ConflictsWithDerived(stored) {
		m.logger.Warn("epic %d: status and schedule are derived from subtasks, ignoring requested values", u.ID)
	}
	stored.SetTitle(u.Title)
	stored.SetDescription(u.Description)
	m.store.PutEpic(stored)
}

// DeleteEpic removes an epic together with all of its subtasks
func (m *Manager) DeleteEpic(id model.TaskID) {
	e, ok := m.store.RemoveEpic(id)
	if !ok {
		return
	}
	for _, sid := range e.SubtaskIDs() {
		if _, ok := m.store.RemoveSubtask(sid); ok {
			m.forget(sid)
		}
	}
	// subtasks not listed by the epic still belong to it
	for _, st := range m.store.Subtasks() {
		if st.EpicID() == id {
			m.store.RemoveSubtask(st.ID())
			m.forget(st.ID())
		}
	}
	m.forget(id)
}

// DeleteAllEpics removes every epic and, with them, every subtask
func (m *Manager) DeleteAllEpics() {
	for _, st := range m.store.Subtasks() {
		m.store.RemoveSubtask(st.ID())
		m.forget(st.ID())
	}
	for _, e := range m.store.Epics() {
		m.store.RemoveEpic(e.ID())
		m.forget(e.ID())
	}
}

// ListEpics returns every epic ordered by identifier
func (m *Manager) ListEpics() []epic.Epic {
	return m.store.Epics()
}

// ==================== Subtasks ====================

// CreateSubtask stores a new subtask under its epic. The boolean is false,
// with no error, when the epic does not exist.
func (m *Manager) CreateSubtask(draft subtask.Subtask) (subtask.Subtask, bool, error) {
	e, ok := m.store.Epic(draft.EpicID())
	if !ok {
		return subtask.Subtask{}, false, nil
	}
	if err := m.checkExplicitID(draft.ID()); err != nil {
		return subtask.Subtask{}, false, err
	}
	if err := m.validateSchedule(draft); err != nil {
		return subtask.Subtask{}, false, err
	}

	draft.AssignID(m.assignID(draft.ID()))
	m.store.PutSubtask(draft)
	if err := e.AddSubtask(draft.ID()); err != nil {
		// the identifier was checked to be free, so the epic cannot list it
		return subtask.Subtask{}, false, &model.StructuralError{ID: draft.ID(), EpicID: e.ID(), Reason: err.Error()}
	}
	m.reaggregate(&e)
	m.priority.Upsert(draft)
	return draft, true, nil
}

// GetSubtask returns a copy of the subtask and records the access
func (m *Manager) GetSubtask(id model.TaskID) (subtask.Subtask, bool) {
	st, ok := m.store.Subtask(id)
	if ok {
		m.history.Record(id)
	}
	return st, ok
}

// UpdateSubtask replaces a stored subtask and re-aggregates its epic.
// The owning epic never changes. Unknown identifiers are ignored.
func (m *Manager) UpdateSubtask(st subtask.Subtask) error {
	stored, ok := m.store.Subtask(st.ID())
	if !ok {
		return nil
	}
	if st.EpicID() != stored.EpicID() {
		m.logger.Warn("subtask %d: owning epic is fixed at %d, ignoring %d", st.ID(), stored.EpicID(), st.EpicID())
	}
	st = st.WithEpic(stored.EpicID())

	if err := m.validateSchedule(st); err != nil {
		return err
	}
	m.store.PutSubtask(st)
	if e, ok := m.store.Epic(st.EpicID()); ok {
		m.reaggregate(&e)
	}
	m.priority.Upsert(st)
	return nil
}

// DeleteSubtask removes a subtask and re-aggregates its epic
func (m *Manager) DeleteSubtask(id model.TaskID) {
	st, ok := m.store.RemoveSubtask(id)
	if !ok {
		return
	}
	if e, ok := m.store.Epic(st.EpicID()); ok {
		e.RemoveSubtask(id)
		m.reaggregate(&e)
	}
	m.forget(id)
}

// DeleteAllSubtasks removes every subtask and resets every epic
func (m *Manager) DeleteAllSubtasks() {
	for _, st := range m.store.Subtasks() {
		m.store.RemoveSubtask(st.ID())
		m.forget(st.ID())
	}
	for _, e := range m.store.Epics() {
		e.ClearSubtasks()
		m.reaggregate(&e)
	}
}

// ListSubtasks returns every subtask ordered by identifier
func (m *Manager) ListSubtasks() []subtask.Subtask {
	return m.store.Subtasks()
}

// GetSubtasksByEpic returns the epic's subtasks in insertion order
func (m *Manager) GetSubtasksByEpic(epicID model.TaskID) []subtask.Subtask {
	return m.store.SubtasksOf(epicID)
}

// ==================== Queries ====================

// GetPrioritizedTasks returns every scheduled task and subtask by ascending start time
func (m *Manager) GetPrioritizedTasks() []domaintask.Item {
	return m.resolveAll(m.priority.IDs())
}

// GetHistory returns the recently accessed items, oldest first
func (m *Manager) GetHistory() []domaintask.Item {
	return m.resolveAll(m.history.IDs())
}

// ==================== Snapshot ====================

// Export returns the complete store content
func (m *Manager) Export() dto.Snapshot {
	return dto.Snapshot{
		Tasks:    m.store.Tasks(),
		Epics:    m.store.Epics(),
		Subtasks: m.store.Subtasks(),
		History:  m.history.IDs(),
	}
}

// Import replaces the store content with snap. Every epic is re-aggregated
// and history is replayed in order. A subtask whose epic is absent, or an
// identifier used twice, fails the import with a *model.StructuralError and
// leaves the current content untouched.
func (m *Manager) Import(snap dto.Snapshot) error {
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	m.store.Clear()
	m.priority.Clear()
	m.history.Clear()

	ids := m.store.IDs()
	for _, t := range snap.Tasks {
		ids.Observe(t.ID())
		m.store.PutTask(t)
		m.priority.Upsert(t)
	}

	owned := make(map[model.TaskID][]model.TaskID)
	for _, st := range snap.OrderedSubtasks() {
		ids.Observe(st.ID())
		m.store.PutSubtask(st)
		m.priority.Upsert(st)
		owned[st.EpicID()] = append(owned[st.EpicID()], st.ID())
	}

	for _, e := range snap.Epics {
		ids.Observe(e.ID())
		e = e.Clone()
		mine := owned[e.ID()]
		// keep the listed order, drop stale entries, then append unlisted subtasks
		listed := e.SubtaskIDs()
		e.ClearSubtasks()
		for _, sid := range listed {
			if st, ok := m.store.Subtask(sid); ok && st.EpicID() == e.ID() {
				_ = e.AddSubtask(sid)
			}
		}
		for _, sid := range mine {
			if !e.HasSubtask(sid) {
				_ = e.AddSubtask(sid)
			}
		}
		m.reaggregate(&e)
	}

	for _, id := range snap.History {
		if !m.store.Exists(id) {
			m.logger.Warn("history entry %d does not resolve, skipping", id)
			continue
		}
		m.history.Record(id)
	}
	return nil
}

// ==================== helpers ====================

func validateSnapshot(snap dto.Snapshot) error {
	seen := make(map[model.TaskID]bool, snap.Len())
	epics := make(map[model.TaskID]bool, len(snap.Epics))
	for _, it := range snap.Items() {
		if it.ID().IsZero() {
			return &model.StructuralError{Reason: fmt.Sprintf("%s without identifier", it.Kind())}
		}
		if seen[it.ID()] {
			return &model.StructuralError{ID: it.ID(), Reason: "duplicate identifier"}
		}
		seen[it.ID()] = true
		if it.Kind() == model.TaskTypeEpic {
			epics[it.ID()] = true
		}
	}
	for _, st := range snap.Subtasks {
		if !epics[st.EpicID()] {
			return &model.StructuralError{ID: st.ID(), EpicID: st.EpicID(), Reason: "epic not found"}
		}
	}
	return nil
}

func (m *Manager) checkExplicitID(id model.TaskID) error {
	if id.IsZero() {
		return nil
	}
	if id < 0 {
		return &model.StructuralError{ID: id, Reason: "identifier must be positive"}
	}
	if m.store.Exists(id) {
		return &model.StructuralError{ID: id, Reason: "identifier already in use"}
	}
	return nil
}

func (m *Manager) assignID(requested model.TaskID) model.TaskID {
	ids := m.store.IDs()
	if requested.IsZero() {
		return ids.Next()
	}
	ids.Observe(requested)
	return requested
}

func (m *Manager) validateSchedule(candidate domaintask.Item) error {
	return m.overlap.Validate(candidate, m.store.Scheduled())
}

// reaggregate recomputes e from its live subtasks and stores it
func (m *Manager) reaggregate(e *epic.Epic) {
	m.store.PutEpic(*e)
	m.aggregation.OnSubtaskMutated(e, m.store.SubtasksOf(e.ID()))
	m.store.PutEpic(*e)
}

func (m *Manager) forget(id model.TaskID) {
	m.priority.Remove(id)
	m.history.Forget(id)
}

func (m *Manager) resolveAll(ids []model.TaskID) []domaintask.Item {
	items := make([]domaintask.Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := m.store.Resolve(id); ok {
			items = append(items, it)
		}
	}
	return items
}
