package streaming

import "time"

type (
	// sessionState is the process-wide aggregate state of one playback
	// session. It is owned by the engine and mutated only under the engine
	// lock, one run-to-completion update per event.
	sessionState struct {
		displayed       []DisplayedItem // newest first
		completed       map[string]struct{}
		productionCount int
		defectCount     int
		defectHistory   []DisplayedItem // newest first
		currentLocation Location
		popupOpen       bool
		popupPayload    *DisplayedItem
		toasts          []Toast // raise order
		lastVisibleAt   time.Time
		navigationTo    *Location
		initialized     bool
		streamFinished  bool
	}
)

// reset returns the state to empty. The current location and last-visible
// instant are host facts, not session artifacts, and survive a reset.
func (s *sessionState) reset() {
	s.displayed = nil
	s.completed = make(map[string]struct{})
	s.productionCount = 0
	s.defectCount = 0
	s.defectHistory = nil
	s.popupOpen = false
	s.popupPayload = nil
	s.toasts = nil
	s.navigationTo = nil
	s.streamFinished = false
}

// item returns a pointer into the displayed list for the given id, or nil.
func (s *sessionState) item(id string) *DisplayedItem {
	for i := range s.displayed {
		if s.displayed[i].ID == id {
			return &s.displayed[i]
		}
	}
	return nil
}

// display prepends a new item to the feed, newest first.
func (s *sessionState) display(item DisplayedItem) {
	s.displayed = append([]DisplayedItem{item}, s.displayed...)
}

// isCompleted reports whether the item's terminal side effects have been
// applied.
func (s *sessionState) isCompleted(id string) bool {
	_, ok := s.completed[id]
	return ok
}

// markCompleted records that the item's terminal side effects have been
// applied. It reports false if they already were, making completion
// idempotent.
func (s *sessionState) markCompleted(id string) bool {
	if s.isCompleted(id) {
		return false
	}
	s.completed[id] = struct{}{}
	return true
}

// recordDefect prepends an item to the defect history.
func (s *sessionState) recordDefect(item DisplayedItem) {
	s.defectHistory = append([]DisplayedItem{item}, s.defectHistory...)
}

// toast returns the toast with the given id and removes it, or false.
func (s *sessionState) takeToast(id string) (Toast, bool) {
	for i, t := range s.toasts {
		if t.ID == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			return t, true
		}
	}
	return Toast{}, false
}

// snapshot copies the aggregate state for external observation.
func (s *sessionState) snapshot(pendingCount int) Snapshot {
	snap := Snapshot{
		DisplayedItems:  make([]DisplayedItem, len(s.displayed)),
		PendingCount:    pendingCount,
		ProductionCount: s.productionCount,
		DefectCount:     s.defectCount,
		DefectHistory:   make([]DisplayedItem, len(s.defectHistory)),
		CurrentLocation: s.currentLocation,
		PopupOpen:       s.popupOpen,
		LastVisibleAt:   s.lastVisibleAt,
		StreamFinished:  s.streamFinished,
		Initialized:     s.initialized,
	}
	copy(snap.DisplayedItems, s.displayed)
	copy(snap.DefectHistory, s.defectHistory)

	if s.popupPayload != nil {
		payload := *s.popupPayload
		snap.PopupPayload = &payload
	}
	if s.navigationTo != nil {
		target := *s.navigationTo
		snap.NavigationIntent = &target
	}
	if len(s.toasts) > 0 {
		snap.Toasts = make([]Toast, len(s.toasts))
		copy(snap.Toasts, s.toasts)
	}
	return snap
}
