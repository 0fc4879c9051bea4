package epic

import (
	"errors"
	"time"

	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/task"
)

// Epic groups subtasks. Its status and schedule are derived from the
// subtasks and can only change through ApplyAggregate.
type Epic struct {
	base       task.Task
	endTime    time.Time
	hasEnd     bool
	subtaskIDs []model.TaskID // insertion order
}

// Aggregate holds the values an epic derives from its subtasks
type Aggregate struct {
	Status   model.Status
	Start    *time.Time
	Duration *time.Duration
	End      *time.Time
}

// New creates an epic draft with no subtasks
func New(title, description string) Epic {
	base, _ := task.New(title, description, model.StatusNew)
	return Epic{
		base:       base,
		subtaskIDs: []model.TaskID{},
	}
}

// Reconstruct rebuilds an epic from stored data. The derived fields are
// taken as given; callers recompute them with ApplyAggregate.
func Reconstruct(
	id model.TaskID,
	title string,
	description string,
	status model.Status,
	start *time.Time,
	duration *time.Duration,
	end *time.Time,
	subtaskIDs []model.TaskID,
) Epic {
	e := Epic{
		base:       task.Reconstruct(id, title, description, status, start, duration),
		subtaskIDs: make([]model.TaskID, len(subtaskIDs)),
	}
	copy(e.subtaskIDs, subtaskIDs)
	if end != nil {
		e.endTime, e.hasEnd = *end, true
	}
	return e
}

// Implement task.Item

func (e Epic) ID() model.TaskID {
	return e.base.ID()
}

func (e Epic) Kind() model.TaskType {
	return model.TaskTypeEpic
}

func (e Epic) Title() string {
	return e.base.Title()
}

func (e Epic) Description() string {
	return e.base.Description()
}

func (e Epic) Status() model.Status {
	return e.base.Status()
}

func (e Epic) StartTime() (time.Time, bool) {
	return e.base.StartTime()
}

func (e Epic) Duration() (time.Duration, bool) {
	return e.base.Duration()
}

// EndTime returns the latest subtask end, which may differ from start + duration
func (e Epic) EndTime() (time.Time, bool) {
	return e.endTime, e.hasEnd
}

// Epic-specific methods

// AssignID sets the identifier of a draft
func (e *Epic) AssignID(id model.TaskID) {
	e.base.AssignID(id)
}

// SetTitle updates the title
func (e *Epic) SetTitle(title string) {
	e.base.SetTitle(title)
}

// SetDescription updates the description
func (e *Epic) SetDescription(description string) {
	e.base.SetDescription(description)
}

// ApplyAggregate overwrites the derived status and schedule
func (e *Epic) ApplyAggregate(a Aggregate) {
	status := a.Status
	if !status.IsValid() {
		status = model.StatusNew
	}
	_ = e.base.SetStatus(status)

	if a.Start != nil {
		e.base.SetStartTime(*a.Start)
	} else {
		e.base.ClearStartTime()
	}
	if a.Duration != nil {
		_ = e.base.SetDuration(*a.Duration)
	} else {
		e.base.ClearDuration()
	}
	if a.End != nil {
		e.endTime, e.hasEnd = *a.End, true
	} else {
		e.endTime, e.hasEnd = time.Time{}, false
	}
}

// AddSubtask appends a subtask ID
func (e *Epic) AddSubtask(id model.TaskID) error {
	if e.HasSubtask(id) {
		return errors.New("subtask already exists in this epic")
	}
	e.subtaskIDs = append(e.subtaskIDs, id)
	return nil
}

// RemoveSubtask removes a subtask ID, reporting whether it was present
func (e *Epic) RemoveSubtask(id model.TaskID) bool {
	for i, sid := range e.subtaskIDs {
		if sid == id {
			e.subtaskIDs = append(e.subtaskIDs[:i], e.subtaskIDs[i+1:]...)
			return true
		}
	}
	return false
}

// ClearSubtasks drops every subtask ID
func (e *Epic) ClearSubtasks() {
	e.subtaskIDs = []model.TaskID{}
}

// HasSubtask checks whether id belongs to this epic
func (e Epic) HasSubtask(id model.TaskID) bool {
	for _, sid := range e.subtaskIDs {
		if sid == id {
			return true
		}
	}
	return false
}

// SubtaskIDs returns a copy of the subtask IDs in insertion order
func (e Epic) SubtaskIDs() []model.TaskID {
	result := make([]model.TaskID, len(e.subtaskIDs))
	copy(result, e.subtaskIDs)
	return result
}

// Clone returns a deep copy that shares no state with e
func (e Epic) Clone() Epic {
	c := e
	c.subtaskIDs = e.SubtaskIDs()
	return c
}

// SameDerived reports whether other carries the same derived status and schedule
func (e Epic) SameDerived(other Epic) bool {
	if e.Status() != other.Status() {
		return false
	}
	s1, ok1 := e.StartTime()
	s2, ok2 := other.StartTime()
	if ok1 != ok2 || (ok1 && !s1.Equal(s2)) {
		return false
	}
	d1, ok1 := e.Duration()
	d2, ok2 := other.Duration()
	if ok1 != ok2 || d1 != d2 {
		return false
	}
	e1, ok1 := e.EndTime()
	e2, ok2 := other.EndTime()
	return ok1 == ok2 && (!ok1 || e1.Equal(e2))
}
