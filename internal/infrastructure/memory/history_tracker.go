package memory

import (
	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/repository"
)

// DefaultHistoryCapacity is the number of identifiers kept by default
const DefaultHistoryCapacity = 10

// HistoryTracker keeps the most recently accessed identifiers, oldest first.
// Only identifiers are stored so entries can never go stale against the store.
type HistoryTracker struct {
	lru *simplelru.LRU[model.TaskID, struct{}]
}

var _ repository.HistoryTracker = (*HistoryTracker)(nil)

// NewHistoryTracker creates a tracker holding at most capacity entries.
// Non-positive values fall back to DefaultHistoryCapacity.
func NewHistoryTracker(capacity int) *HistoryTracker {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	lru, err := simplelru.NewLRU[model.TaskID, struct{}](capacity, nil)
	if err != nil {
		// only returned for a non-positive size, which is excluded above
		panic(err)
	}
	return &HistoryTracker{lru: lru}
}

// Record moves id to the most recent position, evicting the oldest entry on overflow
func (h *HistoryTracker) Record(id model.TaskID) {
	h.lru.Add(id, struct{}{})
}

// Forget removes id regardless of its position
func (h *HistoryTracker) Forget(id model.TaskID) {
	h.lru.Remove(id)
}

// IDs returns the entries from oldest to newest
func (h *HistoryTracker) IDs() []model.TaskID {
	return h.lru.Keys()
}

// Len returns the number of entries
func (h *HistoryTracker) Len() int {
	return h.lru.Len()
}

// Clear removes every entry
func (h *HistoryTracker) Clear() {
	h.lru.Purge()
}
