package memory

import (
	"time"

	"github.com/google/btree"

	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/task"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/repository"
)

const priorityTreeDegree = 16

type priorityKey struct {
	start time.Time
	id    model.TaskID
}

func lessPriorityKey(a, b priorityKey) bool {
	if !a.start.Equal(b.start) {
		return a.start.Before(b.start)
	}
	return a.id < b.id
}

// PriorityIndex is an ordered set of scheduled task and subtask IDs.
// keys remembers the tree key of every member so an item can be removed
// without knowing its previous start time.
type PriorityIndex struct {
	tree *btree.BTreeG[priorityKey]
	keys map[model.TaskID]priorityKey
}

var _ repository.PriorityIndex = (*PriorityIndex)(nil)

// NewPriorityIndex creates an empty index
func NewPriorityIndex() *PriorityIndex {
	return &PriorityIndex{
		tree: btree.NewG(priorityTreeDegree, lessPriorityKey),
		keys: make(map[model.TaskID]priorityKey),
	}
}

// Upsert drops any previous entry for the item and inserts it again when it
// still has a start time. Epics are never indexed.
func (p *PriorityIndex) Upsert(item task.Item) {
	p.Remove(item.ID())
	if item.Kind() == model.TaskTypeEpic {
		return
	}
	start, ok := item.StartTime()
	if !ok {
		return
	}
	key := priorityKey{start: start, id: item.ID()}
	p.tree.ReplaceOrInsert(key)
	p.keys[item.ID()] = key
}

// Remove drops the entry for id, if any
func (p *PriorityIndex) Remove(id model.TaskID) {
	key, ok := p.keys[id]
	if !ok {
		return
	}
	p.tree.Delete(key)
	delete(p.keys, id)
}

// IDs returns members in ascending (start, ID) order
func (p *PriorityIndex) IDs() []model.TaskID {
	result := make([]model.TaskID, 0, p.tree.Len())
	p.tree.Ascend(func(k priorityKey) bool {
		result = append(result, k.id)
		return true
	})
	return result
}

// Len returns the number of members
func (p *PriorityIndex) Len() int {
	return p.tree.Len()
}

// Clear removes every member
func (p *PriorityIndex) Clear() {
	p.tree.Clear(false)
	p.keys = make(map[model.TaskID]priorityKey)
}
