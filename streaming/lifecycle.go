package streaming

import (
	"time"

	"github.com/Leesungkyoung/Cpastone02/internal/container"
)

type (
	// itemArena tracks the presentation state machine of every item that is
	// still animating. A single due queue orders stage advancement across
	// all items; there is no per-item timer. Items leave the arena when they
	// reach the terminal stage or are released.
	itemArena struct {
		items         map[string]*arenaItem
		dues          container.DueQueue[string]
		stageInterval time.Duration
	}

	arenaItem struct {
		id        string
		createdAt time.Time
		stage     Stage
		nextDue   time.Time
	}

	// stageAdvance is one stage transition produced by the arena.
	stageAdvance struct {
		id    string
		stage Stage
	}
)

func newItemArena(stageInterval time.Duration) *itemArena {
	return &itemArena{
		items:         make(map[string]*arenaItem),
		dues:          container.NewDueQueue[string](),
		stageInterval: stageInterval,
	}
}

// add enters an item at the started stage and schedules its first
// transition.
func (a *itemArena) add(id string, createdAt, now time.Time) {
	it := &arenaItem{
		id:        id,
		createdAt: createdAt,
		stage:     StageStarted,
		nextDue:   now.Add(a.stageInterval),
	}
	a.items[id] = it
	a.dues.PushAt(id, it.nextDue)
}

// animating reports whether an item still has pending stage transitions.
func (a *itemArena) animating(id string) bool {
	_, ok := a.items[id]
	return ok
}

// release cancels an item's pending stage transitions without side effects.
// It reports whether the item was animating.
func (a *itemArena) release(id string) bool {
	if _, ok := a.items[id]; !ok {
		return false
	}
	delete(a.items, id)
	a.dues.Remove(id)
	return true
}

// settle removes an item that is being forced directly to the terminal
// stage. It reports whether the item was animating.
func (a *itemArena) settle(id string) bool {
	return a.release(id)
}

// nextDue returns the earliest pending stage transition, if any.
func (a *itemArena) nextDue() (time.Time, bool) {
	return a.dues.NextDue()
}

// advanceDue advances every item whose transition has elapsed as of now.
// Transitions within one item are strictly increasing; an item reaching the
// terminal stage is removed from the arena.
func (a *itemArena) advanceDue(now time.Time) []stageAdvance {
	var out []stageAdvance
	for {
		id, ok := a.dues.PopDue(now)
		if !ok {
			return out
		}
		it := a.items[id]
		it.stage++
		out = append(out, stageAdvance{id: it.id, stage: it.stage})
		if it.stage >= StageJudged {
			delete(a.items, id)
			continue
		}
		it.nextDue = it.nextDue.Add(a.stageInterval)
		a.dues.PushAt(id, it.nextDue)
	}
}

// before returns the ids of animating items created before the given
// instant.
func (a *itemArena) before(t time.Time) []string {
	var out []string
	for id, it := range a.items {
		if it.createdAt.Before(t) {
			out = append(out, id)
		}
	}
	return out
}

// clear drops all animating items.
func (a *itemArena) clear() {
	a.items = make(map[string]*arenaItem)
	a.dues.Clear()
}
