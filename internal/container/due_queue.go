package container

import (
	"container/heap"
	"time"
)

type (
	// DueQueue orders elements by the instant they become due, with a
	// built-in index for removals.
	// https://pkg.go.dev/container/heap#example-package-PriorityQueue
	DueQueue[T comparable] struct {
		queue dueHeap[T]
		index map[T]*dueItem[T]
	}

	dueHeap[T any] []*dueItem[T]

	dueItem[T any] struct {
		val T
		due time.Time
		idx int
	}
)

func (h dueHeap[T]) Len() int {
	return len(h)
}

func (h dueHeap[T]) Less(i, j int) bool {
	return h[i].due.Before(h[j].due)
}

func (h dueHeap[T]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].idx = i
	h[j].idx = j
}

func (h *dueHeap[T]) Push(e any) {
	//nolint:forcetypeassert // The type is guaranteed by the implementation.
	i := e.(*dueItem[T])
	i.idx = len(*h)
	*h = append(*h, i)
}

func (h *dueHeap[T]) Pop() any {
	o := *h
	n := len(o)
	e := o[n-1]
	o[n-1] = nil
	*h = o[0 : n-1]
	return e
}

// NewDueQueue creates a new empty due queue.
func NewDueQueue[T comparable]() DueQueue[T] {
	return DueQueue[T]{index: map[T]*dueItem[T]{}}
}

// Len returns the number of elements in the queue.
func (q *DueQueue[T]) Len() int {
	return q.queue.Len()
}

// PushAt schedules an element to become due at the given instant. If the
// element is already scheduled, its due instant is replaced.
func (q *DueQueue[T]) PushAt(val T, due time.Time) {
	if i, ok := q.index[val]; ok {
		i.due = due
		heap.Fix(&q.queue, i.idx)
		return
	}
	i := &dueItem[T]{val: val, due: due}
	q.index[val] = i
	heap.Push(&q.queue, i)
}

// NextDue returns the earliest due instant in the queue, if any.
func (q *DueQueue[T]) NextDue() (time.Time, bool) {
	if len(q.queue) == 0 {
		return time.Time{}, false
	}
	return q.queue[0].due, true
}

// PopDue pops the earliest element if it is due at or before the given
// instant.
func (q *DueQueue[T]) PopDue(now time.Time) (T, bool) {
	if len(q.queue) == 0 || q.queue[0].due.After(now) {
		var zero T
		return zero, false
	}
	//nolint:forcetypeassert // The type is guaranteed by the implementation.
	e := heap.Pop(&q.queue).(*dueItem[T])
	delete(q.index, e.val)
	return e.val, true
}

// Remove removes an arbitrary element from the queue.
func (q *DueQueue[T]) Remove(val T) bool {
	if i, ok := q.index[val]; ok {
		heap.Remove(&q.queue, i.idx)
		delete(q.index, i.val)
		return true
	}
	return false
}

// Clear removes all elements from the queue.
func (q *DueQueue[T]) Clear() {
	q.queue = nil
	q.index = map[T]*dueItem[T]{}
}
