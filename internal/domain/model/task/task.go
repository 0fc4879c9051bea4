package task

import (
	"errors"
	"time"

	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
)

// Item is the common read-only view of every work item kind (TASK, EPIC, SUBTASK)
type Item interface {
	// ID returns the unique identifier
	ID() model.TaskID

	// Kind returns the item kind discriminator
	Kind() model.TaskType

	// Title returns the title
	Title() string

	// Description returns the description
	Description() string

	// Status returns the current status
	Status() model.Status

	// StartTime returns the scheduled start, if any
	StartTime() (time.Time, bool)

	// Duration returns the planned duration, if any
	Duration() (time.Duration, bool)

	// EndTime returns the computed end, if any
	EndTime() (time.Time, bool)
}

// Task is a standalone work item. It is a plain value: copying a Task
// yields an independent snapshot.
type Task struct {
	id          model.TaskID
	title       string
	description string
	status      model.Status
	startTime   time.Time
	hasStart    bool
	duration    time.Duration
	hasDuration bool
}

// New creates an unscheduled task draft without an identifier.
// An empty status defaults to NEW.
func New(title, description string, status model.Status) (Task, error) {
	if status == "" {
		status = model.StatusNew
	}
	if !status.IsValid() {
		return Task{}, errors.New("invalid status")
	}
	return Task{
		title:       title,
		description: description,
		status:      status,
	}, nil
}

// Reconstruct rebuilds a task from stored data. Nil start or duration means absent.
func Reconstruct(
	id model.TaskID,
	title string,
	description string,
	status model.Status,
	start *time.Time,
	duration *time.Duration,
) Task {
	t := Task{
		id:          id,
		title:       title,
		description: description,
		status:      status,
	}
	if start != nil {
		t.startTime, t.hasStart = *start, true
	}
	if duration != nil {
		t.duration, t.hasDuration = *duration, true
	}
	return t
}

// ID returns the task ID
func (t Task) ID() model.TaskID {
	return t.id
}

// Kind returns TASK
func (t Task) Kind() model.TaskType {
	return model.TaskTypeTask
}

// Title returns the title
func (t Task) Title() string {
	return t.title
}

// Description returns the description
func (t Task) Description() string {
	return t.description
}

// Status returns the current status
func (t Task) Status() model.Status {
	return t.status
}

// StartTime returns the scheduled start
func (t Task) StartTime() (time.Time, bool) {
	return t.startTime, t.hasStart
}

// Duration returns the planned duration
func (t Task) Duration() (time.Duration, bool) {
	return t.duration, t.hasDuration
}

// EndTime returns start + duration when both are present
func (t Task) EndTime() (time.Time, bool) {
	if !t.hasStart || !t.hasDuration {
		return time.Time{}, false
	}
	return t.startTime.Add(t.duration), true
}

// AssignID sets the identifier of a draft
func (t *Task) AssignID(id model.TaskID) {
	t.id = id
}

// SetTitle updates the title
func (t *Task) SetTitle(title string) {
	t.title = title
}

// SetDescription updates the description
func (t *Task) SetDescription(description string) {
	t.description = description
}

// SetStatus updates the status
func (t *Task) SetStatus(status model.Status) error {
	if !status.IsValid() {
		return errors.New("invalid status")
	}
	t.status = status
	return nil
}

// SetStartTime schedules the task
func (t *Task) SetStartTime(start time.Time) {
	t.startTime, t.hasStart = start, true
}

// ClearStartTime unschedules the task
func (t *Task) ClearStartTime() {
	t.startTime, t.hasStart = time.Time{}, false
}

// SetDuration sets the planned duration. Durations are kept in whole minutes.
func (t *Task) SetDuration(d time.Duration) error {
	if d < 0 {
		return errors.New("duration cannot be negative")
	}
	if d%time.Minute != 0 {
		return errors.New("duration must be a whole number of minutes")
	}
	t.duration, t.hasDuration = d, true
	return nil
}

// ClearDuration removes the planned duration
func (t *Task) ClearDuration() {
	t.duration, t.hasDuration = 0, false
}

// Interval returns the closed [start, end] range of a scheduled item.
// Items without a start or a computable end have none.
func Interval(it Item) (model.Interval, bool) {
	start, ok := it.StartTime()
	if !ok {
		return model.Interval{}, false
	}
	end, ok := it.EndTime()
	if !ok {
		return model.Interval{}, false
	}
	return model.Interval{Start: start, End: end}, true
}

// Same reports identity equality: items are equal when their identifiers are
func Same(a, b Item) bool {
	return a.ID() == b.ID()
}
