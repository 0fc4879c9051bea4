package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/epic"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/subtask"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/task"
)

var base = time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)

func at(minutes int) *time.Time {
	t := base.Add(time.Duration(minutes) * time.Minute)
	return &t
}

func minutes(n int) *time.Duration {
	d := time.Duration(n) * time.Minute
	return &d
}

// ==================== EntityStore ====================

func TestEntityStore_PutAndGet(t *testing.T) {
	s := NewEntityStore()

	s.PutTask(task.Reconstruct(2, "t2", "", model.StatusNew, nil, nil))
	s.PutTask(task.Reconstruct(1, "t1", "", model.StatusNew, at(0), minutes(30)))
	s.PutEpic(epic.Reconstruct(3, "e", "", model.StatusNew, nil, nil, nil, []model.TaskID{4, 99}))
	s.PutSubtask(subtask.Reconstruct(4, 3, "s", "", model.StatusNew, at(60), minutes(15)))

	got, ok := s.Task(1)
	require.True(t, ok)
	assert.Equal(t, "t1", got.Title())

	_, ok = s.Task(3)
	assert.False(t, ok, "an epic ID must not resolve as a task")

	assert.True(t, s.Exists(3))
	assert.False(t, s.Exists(42))

	item, ok := s.Resolve(4)
	require.True(t, ok)
	assert.Equal(t, model.TaskTypeSubtask, item.Kind())

	tasks := s.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, model.TaskID(1), tasks[0].ID())
	assert.Equal(t, model.TaskID(2), tasks[1].ID())

	// Unresolvable subtask IDs are skipped
	subs := s.SubtasksOf(3)
	require.Len(t, subs, 1)
	assert.Equal(t, model.TaskID(4), subs[0].ID())

	scheduled := s.Scheduled()
	require.Len(t, scheduled, 2)
	assert.Equal(t, model.TaskID(1), scheduled[0].ID())
	assert.Equal(t, model.TaskID(4), scheduled[1].ID())
}

func TestEntityStore_EpicIsCopied(t *testing.T) {
	s := NewEntityStore()
	e := epic.Reconstruct(1, "e", "", model.StatusNew, nil, nil, nil, []model.TaskID{2})
	s.PutEpic(e)

	// Mutating the caller's value after Put does not leak in
	_ = e.AddSubtask(3)
	stored, _ := s.Epic(1)
	assert.Equal(t, []model.TaskID{2}, stored.SubtaskIDs())

	// Mutating a returned value does not leak in either
	_ = stored.AddSubtask(4)
	again, _ := s.Epic(1)
	assert.Equal(t, []model.TaskID{2}, again.SubtaskIDs())
}

func TestEntityStore_RemoveAndClear(t *testing.T) {
	s := NewEntityStore()
	s.IDs().Observe(5)
	s.PutTask(task.Reconstruct(5, "t", "", model.StatusNew, nil, nil))

	removed, ok := s.RemoveTask(5)
	assert.True(t, ok)
	assert.Equal(t, model.TaskID(5), removed.ID())

	_, ok = s.RemoveTask(5)
	assert.False(t, ok)

	s.PutSubtask(subtask.Reconstruct(6, 1, "s", "", model.StatusNew, nil, nil))
	s.Clear()
	assert.Empty(t, s.Subtasks())
	assert.Equal(t, model.TaskID(1), s.IDs().Peek())
}

// ==================== PriorityIndex ====================

func TestPriorityIndex_Order(t *testing.T) {
	p := NewPriorityIndex()

	p.Upsert(task.Reconstruct(3, "c", "", model.StatusNew, at(60), minutes(30)))
	p.Upsert(task.Reconstruct(1, "a", "", model.StatusNew, at(0), minutes(30)))
	p.Upsert(subtask.Reconstruct(2, 9, "b", "", model.StatusNew, at(60), nil)) // tie with 3, lower ID first
	p.Upsert(task.Reconstruct(4, "unscheduled", "", model.StatusNew, nil, nil))

	assert.Equal(t, []model.TaskID{1, 2, 3}, p.IDs())
	assert.Equal(t, 3, p.Len())
}

func TestPriorityIndex_UpsertMovesItem(t *testing.T) {
	p := NewPriorityIndex()
	p.Upsert(task.Reconstruct(1, "a", "", model.StatusNew, at(0), nil))
	p.Upsert(task.Reconstruct(2, "b", "", model.StatusNew, at(30), nil))

	// Rescheduled later
	p.Upsert(task.Reconstruct(1, "a", "", model.StatusNew, at(120), nil))
	assert.Equal(t, []model.TaskID{2, 1}, p.IDs())

	// Unscheduled drops out
	p.Upsert(task.Reconstruct(2, "b", "", model.StatusNew, nil, nil))
	assert.Equal(t, []model.TaskID{1}, p.IDs())

	p.Remove(1)
	p.Remove(1)
	assert.Empty(t, p.IDs())
}

func TestPriorityIndex_IgnoresEpics(t *testing.T) {
	p := NewPriorityIndex()
	p.Upsert(epic.Reconstruct(1, "e", "", model.StatusNew, at(0), minutes(10), at(10), nil))
	assert.Equal(t, 0, p.Len())
}

func TestPriorityIndex_Clear(t *testing.T) {
	p := NewPriorityIndex()
	p.Upsert(task.Reconstruct(1, "a", "", model.StatusNew, at(0), nil))
	p.Clear()
	assert.Equal(t, 0, p.Len())

	p.Upsert(task.Reconstruct(1, "a", "", model.StatusNew, at(0), nil))
	assert.Equal(t, []model.TaskID{1}, p.IDs())
}

// ==================== HistoryTracker ====================

func TestHistoryTracker_RecordMovesToEnd(t *testing.T) {
	h := NewHistoryTracker(DefaultHistoryCapacity)
	h.Record(1)
	h.Record(3)
	h.Record(1)

	assert.Equal(t, []model.TaskID{3, 1}, h.IDs())
	assert.Equal(t, 2, h.Len())
}

func TestHistoryTracker_Capacity(t *testing.T) {
	h := NewHistoryTracker(DefaultHistoryCapacity)
	for i := 1; i <= 12; i++ {
		h.Record(model.TaskID(i))
	}

	ids := h.IDs()
	require.Len(t, ids, 10)
	assert.Equal(t, model.TaskID(3), ids[0])
	assert.Equal(t, model.TaskID(12), ids[9])
}

func TestHistoryTracker_Forget(t *testing.T) {
	h := NewHistoryTracker(0)
	h.Record(1)
	h.Record(2)
	h.Record(3)

	h.Forget(2)
	h.Forget(42)
	assert.Equal(t, []model.TaskID{1, 3}, h.IDs())

	h.Clear()
	assert.Empty(t, h.IDs())
}
