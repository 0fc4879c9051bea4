package dto

import (
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/epic"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/subtask"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/task"
)

// Snapshot is the complete content of a task store: every entity plus the
// view history, oldest access first.
type Snapshot struct {
	Tasks    []task.Task
	Epics    []epic.Epic
	Subtasks []subtask.Subtask
	History  []model.TaskID
}

// Len returns the number of entities in the snapshot
func (s Snapshot) Len() int {
	return len(s.Tasks) + len(s.Epics) + len(s.Subtasks)
}

// Items returns every entity in record order: tasks, then epics, then
// subtasks as ordered by OrderedSubtasks
func (s Snapshot) Items() []task.Item {
	items := make([]task.Item, 0, s.Len())
	for _, t := range s.Tasks {
		items = append(items, t)
	}
	for _, e := range s.Epics {
		items = append(items, e)
	}
	for _, st := range s.OrderedSubtasks() {
		items = append(items, st)
	}
	return items
}

// OrderedSubtasks returns the subtasks epic by epic, each group in the order
// its epic lists them. Subtasks no epic lists follow in snapshot order.
// Formats that keep no separate subtask list rebuild each epic's order from
// this sequence.
func (s Snapshot) OrderedSubtasks() []subtask.Subtask {
	positions := make(map[model.TaskID][]int, len(s.Subtasks))
	for i, st := range s.Subtasks {
		positions[st.ID()] = append(positions[st.ID()], i)
	}

	used := make([]bool, len(s.Subtasks))
	ordered := make([]subtask.Subtask, 0, len(s.Subtasks))
	for _, e := range s.Epics {
		for _, id := range e.SubtaskIDs() {
			for _, i := range positions[id] {
				if used[i] || s.Subtasks[i].EpicID() != e.ID() {
					continue
				}
				used[i] = true
				ordered = append(ordered, s.Subtasks[i])
			}
		}
	}
	for i, st := range s.Subtasks {
		if !used[i] {
			ordered = append(ordered, st)
		}
	}
	return ordered
}
