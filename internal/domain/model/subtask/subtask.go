package subtask

import (
	"time"

	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/task"
)

// Subtask is a work item owned by exactly one epic. The owning epic is
// fixed at creation.
type Subtask struct {
	base   task.Task
	epicID model.TaskID
}

// New creates a subtask draft for the given epic
func New(epicID model.TaskID, title, description string, status model.Status) (Subtask, error) {
	base, err := task.New(title, description, status)
	if err != nil {
		return Subtask{}, err
	}
	return Subtask{base: base, epicID: epicID}, nil
}

// Reconstruct rebuilds a subtask from stored data
func Reconstruct(
	id model.TaskID,
	epicID model.TaskID,
	title string,
	description string,
	status model.Status,
	start *time.Time,
	duration *time.Duration,
) Subtask {
	return Subtask{
		base:   task.Reconstruct(id, title, description, status, start, duration),
		epicID: epicID,
	}
}

// Implement task.Item

func (s Subtask) ID() model.TaskID {
	return s.base.ID()
}

func (s Subtask) Kind() model.TaskType {
	return model.TaskTypeSubtask
}

func (s Subtask) Title() string {
	return s.base.Title()
}

func (s Subtask) Description() string {
	return s.base.Description()
}

func (s Subtask) Status() model.Status {
	return s.base.Status()
}

func (s Subtask) StartTime() (time.Time, bool) {
	return s.base.StartTime()
}

func (s Subtask) Duration() (time.Duration, bool) {
	return s.base.Duration()
}

func (s Subtask) EndTime() (time.Time, bool) {
	return s.base.EndTime()
}

// EpicID returns the owning epic
func (s Subtask) EpicID() model.TaskID {
	return s.epicID
}

// AssignID sets the identifier of a draft
func (s *Subtask) AssignID(id model.TaskID) {
	s.base.AssignID(id)
}

// SetTitle updates the title
func (s *Subtask) SetTitle(title string) {
	s.base.SetTitle(title)
}

// SetDescription updates the description
func (s *Subtask) SetDescription(description string) {
	s.base.SetDescription(description)
}

// SetStatus updates the status
func (s *Subtask) SetStatus(status model.Status) error {
	return s.base.SetStatus(status)
}

// SetStartTime schedules the subtask
func (s *Subtask) SetStartTime(start time.Time) {
	s.base.SetStartTime(start)
}

// ClearStartTime unschedules the subtask
func (s *Subtask) ClearStartTime() {
	s.base.ClearStartTime()
}

// SetDuration sets the planned duration
func (s *Subtask) SetDuration(d time.Duration) error {
	return s.base.SetDuration(d)
}

// ClearDuration removes the planned duration
func (s *Subtask) ClearDuration() {
	s.base.ClearDuration()
}

// WithEpic returns a copy owned by epicID. Updates use it to keep the
// stored owner regardless of what the caller passed in.
func (s Subtask) WithEpic(epicID model.TaskID) Subtask {
	s.epicID = epicID
	return s
}
