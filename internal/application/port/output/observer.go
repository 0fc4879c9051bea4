package output

// OperationObserver receives a notification for every task service call
type OperationObserver interface {
	// ObserveOperation records the outcome of one operation
	ObserveOperation(op string, err error)

	// ObserveStore records entity counts after a mutation
	ObserveStore(tasks, epics, subtasks, scheduled int)
}

// NopObserver discards every notification
type NopObserver struct{}

func (NopObserver) ObserveOperation(string, error) {}
func (NopObserver) ObserveStore(int, int, int, int) {}
