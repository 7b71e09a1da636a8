package flowdag

import "sync"

// ReadyDeque holds task numbers awaiting dispatch, stored internally in
// reverse topological order: the slice's last element is always the
// earliest task in true topological order. PopBack removes and returns
// that element (a ready task to dispatch next); PushFront re-queues a task
// whose predecessors are not all finished yet, at the lowest-priority end,
// so it is tried again only after everything currently ahead of it.
type ReadyDeque struct {
	mu    sync.Mutex
	tasks []int
}

// NewReadyDeque builds a deque from taskNos already given in topological
// order (index 0 runs before index 1, and so on); it is stored reversed
// internally so PopBack yields them in that same order.
func NewReadyDeque(taskNosInTopoOrder []int) *ReadyDeque {
	reversed := make([]int, len(taskNosInTopoOrder))
	for i, v := range taskNosInTopoOrder {
		reversed[len(taskNosInTopoOrder)-1-i] = v
	}
	return &ReadyDeque{tasks: reversed}
}

// PopBack removes and returns the next ready task number. ok is false when
// the deque is empty.
func (d *ReadyDeque) PopBack() (taskNo int, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.tasks)
	if n == 0 {
		return 0, false
	}
	taskNo = d.tasks[n-1]
	d.tasks = d.tasks[:n-1]
	return taskNo, true
}

// PushFront re-queues taskNo at the lowest-priority position: it will be
// the last one PopBack ever returns among whatever is currently queued.
func (d *ReadyDeque) PushFront(taskNo int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks = append([]int{taskNo}, d.tasks...)
}

// Len reports how many task numbers remain queued.
func (d *ReadyDeque) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}
