package memory

import (
	"sort"

	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/epic"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/subtask"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/task"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/repository"
)

// EntityStore implements repository.EntityStore with plain maps.
// Not safe for concurrent use.
type EntityStore struct {
	ids      *model.IDAllocator
	tasks    map[model.TaskID]task.Task
	epics    map[model.TaskID]epic.Epic
	subtasks map[model.TaskID]subtask.Subtask
}

var _ repository.EntityStore = (*EntityStore)(nil)

// NewEntityStore creates an empty store with its own identifier sequence
func NewEntityStore() *EntityStore {
	return &EntityStore{
		ids:      model.NewIDAllocator(),
		tasks:    make(map[model.TaskID]task.Task),
		epics:    make(map[model.TaskID]epic.Epic),
		subtasks: make(map[model.TaskID]subtask.Subtask),
	}
}

func (s *EntityStore) IDs() *model.IDAllocator {
	return s.ids
}

func (s *EntityStore) Exists(id model.TaskID) bool {
	_, ok := s.Resolve(id)
	return ok
}

func (s *EntityStore) Resolve(id model.TaskID) (task.Item, bool) {
	if t, ok := s.tasks[id]; ok {
		return t, true
	}
	if e, ok := s.epics[id]; ok {
		return e.Clone(), true
	}
	if st, ok := s.subtasks[id]; ok {
		return st, true
	}
	return nil, false
}

// Tasks

func (s *EntityStore) Task(id model.TaskID) (task.Task, bool) {
	t, ok := s.tasks[id]
	return t, ok
}

func (s *EntityStore) PutTask(t task.Task) {
	s.tasks[t.ID()] = t
}

func (s *EntityStore) RemoveTask(id model.TaskID) (task.Task, bool) {
	t, ok := s.tasks[id]
	if ok {
		delete(s.tasks, id)
	}
	return t, ok
}

func (s *EntityStore) Tasks() []task.Task {
	result := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}

// Epics

func (s *EntityStore) Epic(id model.TaskID) (epic.Epic, bool) {
	e, ok := s.epics[id]
	if !ok {
		return epic.Epic{}, false
	}
	return e.Clone(), true
}

func (s *EntityStore) PutEpic(e epic.Epic) {
	s.epics[e.ID()] = e.Clone()
}

func (s *EntityStore) RemoveEpic(id model.TaskID) (epic.Epic, bool) {
	e, ok := s.epics[id]
	if ok {
		delete(s.epics, id)
	}
	return e, ok
}

func (s *EntityStore) Epics() []epic.Epic {
	result := make([]epic.Epic, 0, len(s.epics))
	for _, e := range s.epics {
		result = append(result, e.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}

// Subtasks

func (s *EntityStore) Subtask(id model.TaskID) (subtask.Subtask, bool) {
	st, ok := s.subtasks[id]
	return st, ok
}

func (s *EntityStore) PutSubtask(st subtask.Subtask) {
	s.subtasks[st.ID()] = st
}

func (s *EntityStore) RemoveSubtask(id model.TaskID) (subtask.Subtask, bool) {
	st, ok := s.subtasks[id]
	if ok {
		delete(s.subtasks, id)
	}
	return st, ok
}

func (s *EntityStore) Subtasks() []subtask.Subtask {
	result := make([]subtask.Subtask, 0, len(s.subtasks))
	for _, st := range s.subtasks {
		result = append(result, st)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}

func (s *EntityStore) SubtasksOf(epicID model.TaskID) []subtask.Subtask {
	e, ok := s.epics[epicID]
	if !ok {
		return nil
	}
	ids := e.SubtaskIDs()
	result := make([]subtask.Subtask, 0, len(ids))
	for _, id := range ids {
		if st, ok := s.subtasks[id]; ok {
			result = append(result, st)
		}
	}
	return result
}

func (s *EntityStore) Scheduled() []task.Item {
	result := make([]task.Item, 0, len(s.tasks)+len(s.subtasks))
	for _, t := range s.Tasks() {
		if _, ok := t.StartTime(); ok {
			result = append(result, t)
		}
	}
	for _, st := range s.Subtasks() {
		if _, ok := st.StartTime(); ok {
			result = append(result, st)
		}
	}
	return result
}

func (s *EntityStore) Clear() {
	s.tasks = make(map[model.TaskID]task.Task)
	s.epics = make(map[model.TaskID]epic.Epic)
	s.subtasks = make(map[model.TaskID]subtask.Subtask)
	s.ids.Reset()
}
