package service

import (
	"time"

	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/epic"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/subtask"
)

// EpicAggregationService derives an epic's status and schedule from its subtasks.
// Both computations run from one notification so they always see the same
// subtask snapshot.
type EpicAggregationService struct{}

// NewEpicAggregationService creates a new aggregation service
func NewEpicAggregationService() *EpicAggregationService {
	return &EpicAggregationService{}
}

// OnSubtaskMutated recomputes e from its live subtasks. It is the only
// entry point that changes an epic's derived fields.
func (s *EpicAggregationService) OnSubtaskMutated(e *epic.Epic, subtasks []subtask.Subtask) {
	e.ApplyAggregate(s.Aggregate(subtasks))
}

// Aggregate computes the derived values for a set of subtasks
func (s *EpicAggregationService) Aggregate(subtasks []subtask.Subtask) epic.Aggregate {
	agg := epic.Aggregate{Status: AggregateStatus(subtasks)}
	agg.Start, agg.Duration, agg.End = AggregateSchedule(subtasks)
	return agg
}

// AggregateStatus derives an epic status:
// no subtasks or all NEW -> NEW, all DONE -> DONE, anything else -> IN_PROGRESS.
func AggregateStatus(subtasks []subtask.Subtask) model.Status {
	if len(subtasks) == 0 {
		return model.StatusNew
	}

	allNew, allDone := true, true
	for _, st := range subtasks {
		switch st.Status() {
		case model.StatusNew:
			allDone = false
		case model.StatusDone:
			allNew = false
		default:
			return model.StatusInProgress
		}
	}

	switch {
	case allNew:
		return model.StatusNew
	case allDone:
		return model.StatusDone
	default:
		return model.StatusInProgress
	}
}

// AggregateSchedule derives start (earliest subtask start), duration (sum of
// subtask durations, missing ones count as zero) and end (latest subtask end).
// With no subtasks every value is absent.
func AggregateSchedule(subtasks []subtask.Subtask) (*time.Time, *time.Duration, *time.Time) {
	if len(subtasks) == 0 {
		return nil, nil, nil
	}

	var (
		start, end *time.Time
		total      time.Duration
	)
	for _, st := range subtasks {
		if d, ok := st.Duration(); ok {
			total += d
		}
		if s, ok := st.StartTime(); ok {
			if start == nil || s.Before(*start) {
				s := s
				start = &s
			}
		}
		if e, ok := st.EndTime(); ok {
			if end == nil || e.After(*end) {
				e := e
				end = &e
			}
		}
	}
	return start, &total, end
}
