// Package container provides the internal data structures used by the
// streaming engine. None of these are synchronized; callers are expected to
// hold their own locks.
package container

type (
	// FIFO is a generic unbounded first-in-first-out queue backed by a
	// circular buffer.
	FIFO[T any] struct {
		items []T
		size  int
		enter int // Points to the next position for entering.
		leave int // Points to the next item that is leaving.
	}
)

// Len returns the number of items in the queue.
func (q *FIFO[T]) Len() int {
	return q.size
}

// Enqueue adds an item to the end of the queue.
func (q *FIFO[T]) Enqueue(value T) {
	if len(q.items) == 0 || len(q.items) == q.size {
		q.resize()
	}

	q.items[q.enter] = value
	q.enter = q.move(q.enter)
	q.size++
}

// Dequeue removes and returns the item from the front of the queue, or false
// if the queue is empty.
func (q *FIFO[T]) Dequeue() (T, bool) {
	if q.size == 0 {
		var zero T
		return zero, false
	}

	item := q.items[q.leave]
	var zero T
	q.items[q.leave] = zero
	q.leave = q.move(q.leave)
	q.size--
	return item, true
}

// Clear removes all elements from the queue.
func (q *FIFO[T]) Clear() {
	q.items = nil
	q.enter = 0
	q.leave = 0
	q.size = 0
}

// resize doubles the capacity of the backing buffer.
func (q *FIFO[T]) resize() {
	oldSize := len(q.items)
	newSize := oldSize*2 + 1

	oldLeave := q.leave
	newLeave := newSize - (oldSize - oldLeave)
	if oldSize == 0 {
		newLeave = 0
	}

	q.items = append(q.items, make([]T, newSize-oldSize)...)

	copy(q.items[newLeave:], q.items[oldLeave:oldSize])
	q.leave = newLeave
}

// move increments the index circularly.
func (q *FIFO[T]) move(index int) int {
	return (index + 1) % len(q.items)
}
