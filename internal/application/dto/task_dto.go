package dto

import (
	"fmt"
	"time"

	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/epic"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/subtask"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/task"
)

// TimeLayout is the wire format of start and end times
const TimeLayout = "2006-01-02T15:04:05"

// TaskDTO represents any work item in data transfer format
type TaskDTO struct {
	ID          int     `json:"id"`
	Type        string  `json:"type"` // "TASK", "EPIC", "SUBTASK"
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Duration    *int64  `json:"duration,omitempty"`  // minutes
	StartTime   *string `json:"startTime,omitempty"` // TimeLayout
	EndTime     *string `json:"endTime,omitempty"`   // TimeLayout, output only
	EpicID      *int    `json:"epicId,omitempty"`    // subtasks only
	SubtaskIDs  []int   `json:"subtaskIds,omitempty"`
}

// ToTaskDTO converts any item to its transfer form
func ToTaskDTO(it task.Item) TaskDTO {
	d := TaskDTO{
		ID:          int(it.ID()),
		Type:        it.Kind().String(),
		Title:       it.Title(),
		Description: it.Description(),
		Status:      it.Status().String(),
	}
	if dur, ok := it.Duration(); ok {
		m := int64(dur / time.Minute)
		d.Duration = &m
	}
	if start, ok := it.StartTime(); ok {
		s := start.Format(TimeLayout)
		d.StartTime = &s
	}
	if end, ok := it.EndTime(); ok {
		s := end.Format(TimeLayout)
		d.EndTime = &s
	}
	switch v := it.(type) {
	case subtask.Subtask:
		epicID := int(v.EpicID())
		d.EpicID = &epicID
	case epic.Epic:
		for _, id := range v.SubtaskIDs() {
			d.SubtaskIDs = append(d.SubtaskIDs, int(id))
		}
	}
	return d
}

// Minutes converts d to the whole minutes used on the wire and in storage.
// A sub-minute remainder is an error, never dropped.
func Minutes(d time.Duration) (int64, error) {
	if d%time.Minute != 0 {
		return 0, fmt.Errorf("duration %s is not a whole number of minutes", d)
	}
	return int64(d / time.Minute), nil
}

// ToTaskDTOs converts a list of items
func ToTaskDTOs(items []task.Item) []TaskDTO {
	result := make([]TaskDTO, 0, len(items))
	for _, it := range items {
		result = append(result, ToTaskDTO(it))
	}
	return result
}

// schedule parses the optional status, start time and duration fields
func (d TaskDTO) schedule() (model.Status, *time.Time, *time.Duration, error) {
	status := model.StatusNew
	if d.Status != "" {
		st, err := model.ParseStatus(d.Status)
		if err != nil {
			return "", nil, nil, err
		}
		status = st
	}

	var start *time.Time
	if d.StartTime != nil && *d.StartTime != "" {
		t, err := ParseTime(*d.StartTime)
		if err != nil {
			return "", nil, nil, err
		}
		start = &t
	}

	var dur *time.Duration
	if d.Duration != nil {
		if *d.Duration < 0 {
			return "", nil, nil, fmt.Errorf("duration cannot be negative: %d", *d.Duration)
		}
		v := time.Duration(*d.Duration) * time.Minute
		dur = &v
	}
	return status, start, dur, nil
}

// ToTask builds a task value. A zero ID yields a draft.
func (d TaskDTO) ToTask() (task.Task, error) {
	status, start, dur, err := d.schedule()
	if err != nil {
		return task.Task{}, err
	}
	return task.Reconstruct(model.TaskID(d.ID), d.Title, d.Description, status, start, dur), nil
}

// ToEpic builds an epic value. Status and schedule are carried over only so
// the caller can detect attempts to set them.
func (d TaskDTO) ToEpic() (epic.Epic, error) {
	status, start, dur, err := d.schedule()
	if err != nil {
		return epic.Epic{}, err
	}
	ids := make([]model.TaskID, 0, len(d.SubtaskIDs))
	for _, id := range d.SubtaskIDs {
		ids = append(ids, model.TaskID(id))
	}
	var end *time.Time
	if start != nil && dur != nil {
		e := start.Add(*dur)
		end = &e
	}
	return epic.Reconstruct(model.TaskID(d.ID), d.Title, d.Description, status, start, dur, end, ids), nil
}

// ToEpicUpdate builds an epic change request. Status, start time and
// duration are set only when the body carried them.
func (d TaskDTO) ToEpicUpdate() (epic.Update, error) {
	status, start, dur, err := d.schedule()
	if err != nil {
		return epic.Update{}, err
	}
	u := epic.Update{
		ID:          model.TaskID(d.ID),
		Title:       d.Title,
		Description: d.Description,
		StartTime:   start,
		Duration:    dur,
	}
	if d.Status != "" {
		u.Status = &status
	}
	return u, nil
}

// ToSubtask builds a subtask value; the epic ID is required
func (d TaskDTO) ToSubtask() (subtask.Subtask, error) {
	if d.EpicID == nil || *d.EpicID <= 0 {
		return subtask.Subtask{}, fmt.Errorf("epicId is required")
	}
	status, start, dur, err := d.schedule()
	if err != nil {
		return subtask.Subtask{}, err
	}
	return subtask.Reconstruct(model.TaskID(d.ID), model.TaskID(*d.EpicID), d.Title, d.Description, status, start, dur), nil
}

// ParseTime accepts TimeLayout as well as RFC 3339 and minute precision
func ParseTime(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		TimeLayout,
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format: %s", s)
}
