package container

import "sync"

type listNode[T any] struct {
	value T
	prev  *listNode[T]
	next  *listNode[T]
}

// CallbackList is an appendable list of callbacks with per-entry removal. It
// is safe for concurrent use; unlike the other containers in this package it
// carries its own lock, since callbacks are registered and removed from host
// goroutines.
type CallbackList[T any] struct {
	mu    sync.RWMutex
	first *listNode[T]
	last  *listNode[T]
}

// Append adds a callback to the end of the list and returns a function that
// removes it again. The remove function is idempotent.
func (l *CallbackList[T]) Append(value T) (remove func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	node := &listNode[T]{value: value}
	if l.last == nil {
		l.first = node
	} else {
		l.last.next = node
	}
	node.prev = l.last
	l.last = node

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if node == nil {
			// node was already removed
			return
		}

		if node.prev == nil {
			l.first = node.next
		} else {
			node.prev.next = node.next
		}

		if node.next == nil {
			l.last = node.prev
		} else {
			node.next.prev = node.prev
		}

		node = nil
	}
}

// All returns a snapshot of the callbacks in registration order.
func (l *CallbackList[T]) All() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []T
	for curr := l.first; curr != nil; curr = curr.next {
		out = append(out, curr.value)
	}
	return out
}
