package epic

import (
	"time"

	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
)

// Update is a requested change to a stored epic. Title and description are
// applied as given. The derived fields are nil unless the caller named them.
type Update struct {
	ID          model.TaskID
	Title       string
	Description string
	Status      *model.Status
	StartTime   *time.Time
	Duration    *time.Duration
}

// UpdateFrom requests every field of e, derived ones included
func UpdateFrom(e Epic) Update {
	u := Update{
		ID:          e.ID(),
		Title:       e.Title(),
		Description: e.Description(),
	}
	status := e.Status()
	u.Status = &status
	if start, ok := e.StartTime(); ok {
		u.StartTime = &start
	}
	if d, ok := e.Duration(); ok {
		u.Duration = &d
	}
	return u
}

// ConflictsWithDerived reports whether u names a status or schedule that
// differs from what e derives from its subtasks
func (u Update) ConflictsWithDerived(e Epic) bool {
	if u.Status != nil && *u.Status != e.Status() {
		return true
	}
	if u.StartTime != nil {
		start, ok := e.StartTime()
		if !ok || !start.Equal(*u.StartTime) {
			return true
		}
	}
	if u.Duration != nil {
		d, ok := e.Duration()
		if !ok || d != *u.Duration {
			return true
		}
	}
	return false
}
