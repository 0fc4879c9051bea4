package service

import (
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/task"
)

// OverlapValidator rejects scheduled items whose interval intersects a stored one.
// Epics never take part: their schedule is derived, not planned.
type OverlapValidator struct{}

// NewOverlapValidator creates a new overlap validator
func NewOverlapValidator() *OverlapValidator {
	return &OverlapValidator{}
}

// Validate checks candidate against existing. A candidate without a start or
// a computable end is unscheduled and always passes. An existing item with the
// candidate's identifier is the version being replaced and is skipped.
// Returns a *model.ValidationError on the first conflict.
func (v *OverlapValidator) Validate(candidate task.Item, existing []task.Item) error {
	if candidate.Kind() == model.TaskTypeEpic {
		return nil
	}
	iv, ok := task.Interval(candidate)
	if !ok {
		return nil
	}

	for _, other := range existing {
		if other.Kind() == model.TaskTypeEpic {
			continue
		}
		if !candidate.ID().IsZero() && task.Same(candidate, other) {
			continue
		}
		otherIv, ok := task.Interval(other)
		if !ok {
			continue
		}
		if iv.Overlaps(otherIv) {
			return &model.ValidationError{ID: candidate.ID(), ConflictID: other.ID()}
		}
	}
	return nil
}
