package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TaskID represents a unique identifier shared by tasks, epics and subtasks.
// The zero value means "not assigned yet".
type TaskID int

// ParseTaskID parses a decimal identifier
func ParseTaskID(s string) (TaskID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("task ID cannot be empty")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid task ID %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid task ID %q: must be positive", s)
	}
	return TaskID(n), nil
}

// String returns the string representation
func (t TaskID) String() string {
	return strconv.Itoa(int(t))
}

// IsZero reports whether the identifier has not been assigned
func (t TaskID) IsZero() bool {
	return t == 0
}

// TaskType represents the kind of work item
type TaskType string

const (
	TaskTypeTask    TaskType = "TASK"
	TaskTypeEpic    TaskType = "EPIC"
	TaskTypeSubtask TaskType = "SUBTASK"
)

// ParseTaskType parses a kind discriminator, case-insensitively
func ParseTaskType(s string) (TaskType, error) {
	t := TaskType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid task type %q", s)
	}
	return t, nil
}

// String returns the string representation
func (t TaskType) String() string {
	return string(t)
}

// IsValid validates the task type
func (t TaskType) IsValid() bool {
	switch t {
	case TaskTypeTask, TaskTypeEpic, TaskTypeSubtask:
		return true
	default:
		return false
	}
}

// Status represents the progress of a work item
type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// ParseStatus parses a status name, case-insensitively
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return st, nil
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// Interval is a closed time range used for overlap checks
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether neither interval ends before the other begins.
// Both ends are inclusive, so back-to-back intervals that share an instant
// are reported as overlapping.
func (i Interval) Overlaps(other Interval) bool {
	return !i.End.Before(other.Start) && !other.End.Before(i.Start)
}
