package model

// IDAllocator issues identifiers shared by every entity kind of one store.
// It is not safe for concurrent use; callers serialize access.
type IDAllocator struct {
	next TaskID
}

// NewIDAllocator creates an allocator that starts at 1
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

// Next returns a fresh identifier
func (a *IDAllocator) Next() TaskID {
	id := a.next
	a.next++
	return id
}

// Observe makes sure an externally supplied identifier is never issued again
func (a *IDAllocator) Observe(id TaskID) {
	if id >= a.next {
		a.next = id + 1
	}
}

// Peek returns the identifier the next call to Next would return
func (a *IDAllocator) Peek() TaskID {
	return a.next
}

// Reset restarts the sequence at 1
func (a *IDAllocator) Reset() {
	a.next = 1
}
