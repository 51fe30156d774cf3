package streaming

import (
	"time"

	"github.com/Leesungkyoung/Cpastone02/internal/container"
)

type (
	// playbackQueue drains a batch of classified records at a fixed cadence
	// to produce the "live" feed. It holds no lock of its own; the engine
	// serializes access.
	playbackQueue struct {
		pending  container.FIFO[Record]
		interval time.Duration

		// nextTick is the absolute instant of the next emission. Keeping the
		// schedule absolute means a late wakeup emits every elapsed record
		// rather than drifting.
		nextTick time.Time
		active   bool
		finished bool
	}
)

// replaceAll replaces the pending queue with the given batch, preserving
// order.
func (q *playbackQueue) replaceAll(records []Record) {
	q.pending.Clear()
	for _, rec := range records {
		q.pending.Enqueue(rec)
	}
}

// start begins draining. Starting supersedes any prior drain schedule; there
// is only ever one. An empty queue finishes immediately, reporting true.
func (q *playbackQueue) start(now time.Time) (finished bool) {
	q.finished = false
	if q.pending.Len() == 0 {
		q.finished = true
		return true
	}
	q.active = true
	q.nextTick = now.Add(q.interval)
	return false
}

// stop halts draining early. It reports whether the completion signal should
// fire now, which happens at most once per session.
func (q *playbackQueue) stop() (finish bool) {
	q.active = false
	if q.finished {
		return false
	}
	q.finished = true
	return true
}

// nextDue returns the instant of the next emission, if draining.
func (q *playbackQueue) nextDue() (time.Time, bool) {
	if !q.active {
		return time.Time{}, false
	}
	return q.nextTick, true
}

// tick emits every record whose tick has elapsed as of now. It reports
// whether the queue emptied, which stops draining and fires the completion
// signal.
func (q *playbackQueue) tick(now time.Time) (out []Record, finished bool) {
	for q.active && !q.nextTick.After(now) {
		rec, ok := q.pending.Dequeue()
		if !ok {
			q.active = false
			q.finished = true
			return out, true
		}
		out = append(out, rec)
		if q.pending.Len() == 0 {
			q.active = false
			q.finished = true
			return out, true
		}
		q.nextTick = q.nextTick.Add(q.interval)
	}
	return out, false
}

// len returns the number of records not yet displayed.
func (q *playbackQueue) len() int {
	return q.pending.Len()
}
