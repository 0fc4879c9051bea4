package model

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeOverlap is matched by every ValidationError
	ErrTimeOverlap = errors.New("time overlap")

	// ErrStructural is matched by every StructuralError
	ErrStructural = errors.New("structural error")
)

// ValidationError reports that a time-bearing item collides with a stored one.
// The store is left unchanged when it is returned.
type ValidationError struct {
	ID         TaskID // candidate item (zero when not yet assigned)
	ConflictID TaskID // stored item it collides with
}

func (e *ValidationError) Error() string {
	if e.ID.IsZero() {
		return fmt.Sprintf("time overlap with task %d", e.ConflictID)
	}
	return fmt.Sprintf("task %d: time overlap with task %d", e.ID, e.ConflictID)
}

// Unwrap allows errors.Is(err, ErrTimeOverlap)
func (e *ValidationError) Unwrap() error {
	return ErrTimeOverlap
}

// StructuralError reports a broken reference between entities, such as a
// subtask whose epic does not exist while loading a snapshot.
type StructuralError struct {
	ID     TaskID
	EpicID TaskID
	Reason string
}

func (e *StructuralError) Error() string {
	if !e.EpicID.IsZero() {
		return fmt.Sprintf("task %d (epic %d): %s", e.ID, e.EpicID, e.Reason)
	}
	return fmt.Sprintf("task %d: %s", e.ID, e.Reason)
}

// Unwrap allows errors.Is(err, ErrStructural)
func (e *StructuralError) Unwrap() error {
	return ErrStructural
}

// IsValidationError checks whether err carries a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStructuralError checks whether err carries a StructuralError
func IsStructuralError(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
