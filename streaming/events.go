package streaming

import (
	"github.com/Leesungkyoung/Cpastone02/internal/container"
)

// The engine renders nothing itself; it emits typed events that the hosting
// shell subscribes to. Handlers are invoked sequentially in emission order,
// after the state mutation that produced them has completed, so a handler
// always observes the post-mutation state through Snapshot. Handlers may call
// back into the engine.
type (
	// ItemDisplayedHandler is invoked when a record is dequeued into the
	// visible feed.
	ItemDisplayedHandler func(DisplayedItem)

	// StageChangedHandler is invoked when a displayed item advances a stage.
	StageChangedHandler func(id string, stage Stage)

	// CountersChangedHandler is invoked when the production or defect
	// counter changes.
	CountersChangedHandler func(production, defects int)

	// DefectDetectedHandler is invoked once per handled defect, after it has
	// been appended to the defect history.
	DefectDetectedHandler func(DisplayedItem)

	// PopupOpenedHandler is invoked when the in-page defect popup opens or
	// its payload is replaced.
	PopupOpenedHandler func(DisplayedItem)

	// PopupClosedHandler is invoked when the popup is dismissed.
	PopupClosedHandler func()

	// ToastRaisedHandler is invoked when a cross-page defect toast is
	// raised. The host renders the toast and reports interaction through
	// ActivateToast or DismissToast.
	ToastRaisedHandler func(Toast)

	// ToastDismissedHandler is invoked when a toast is dismissed, whether by
	// activation or explicitly.
	ToastDismissedHandler func(id string)

	// NavigationRequestedHandler is invoked when the engine requests a page
	// transition. See BindNavigator.
	NavigationRequestedHandler func(Location)

	// StreamFinishedHandler is invoked exactly once per session, when the
	// playback queue has been drained or the stream was stopped.
	StreamFinishedHandler func()

	handlers struct {
		itemDisplayed  container.CallbackList[ItemDisplayedHandler]
		stageChanged   container.CallbackList[StageChangedHandler]
		counters       container.CallbackList[CountersChangedHandler]
		defectDetected container.CallbackList[DefectDetectedHandler]
		popupOpened    container.CallbackList[PopupOpenedHandler]
		popupClosed    container.CallbackList[PopupClosedHandler]
		toastRaised    container.CallbackList[ToastRaisedHandler]
		toastDismissed container.CallbackList[ToastDismissedHandler]
		navigation     container.CallbackList[NavigationRequestedHandler]
		streamFinished container.CallbackList[StreamFinishedHandler]
	}
)

// OnItemDisplayed registers a handler; it returns a function that removes the
// registration. The same holds for every On* method below.
func (e *Engine) OnItemDisplayed(h ItemDisplayedHandler) func() {
	return e.handlers.itemDisplayed.Append(h)
}

// OnStageChanged registers a stage transition handler.
func (e *Engine) OnStageChanged(h StageChangedHandler) func() {
	return e.handlers.stageChanged.Append(h)
}

// OnCountersChanged registers a counter handler.
func (e *Engine) OnCountersChanged(h CountersChangedHandler) func() {
	return e.handlers.counters.Append(h)
}

// OnDefectDetected registers a defect handler.
func (e *Engine) OnDefectDetected(h DefectDetectedHandler) func() {
	return e.handlers.defectDetected.Append(h)
}

// OnPopupOpened registers a popup-open handler.
func (e *Engine) OnPopupOpened(h PopupOpenedHandler) func() {
	return e.handlers.popupOpened.Append(h)
}

// OnPopupClosed registers a popup-close handler.
func (e *Engine) OnPopupClosed(h PopupClosedHandler) func() {
	return e.handlers.popupClosed.Append(h)
}

// OnToastRaised registers a toast handler.
func (e *Engine) OnToastRaised(h ToastRaisedHandler) func() {
	return e.handlers.toastRaised.Append(h)
}

// OnToastDismissed registers a toast-dismissal handler.
func (e *Engine) OnToastDismissed(h ToastDismissedHandler) func() {
	return e.handlers.toastDismissed.Append(h)
}

// OnNavigationRequested registers a navigation handler.
func (e *Engine) OnNavigationRequested(h NavigationRequestedHandler) func() {
	return e.handlers.navigation.Append(h)
}

// OnStreamFinished registers a stream-completion handler.
func (e *Engine) OnStreamFinished(h StreamFinishedHandler) func() {
	return e.handlers.streamFinished.Append(h)
}

// emit queues an event for delivery after the current mutation completes.
// Must be called with the engine lock held.
func (e *Engine) emit(fn func()) {
	e.events = append(e.events, fn)
}

// deliver drains queued events outside the engine lock, invoking handlers in
// emission order. Reentrant calls (a handler calling back into the engine)
// queue behind the in-flight delivery rather than deadlocking.
func (e *Engine) deliver() {
	for {
		e.mu.Lock()
		if e.delivering || len(e.events) == 0 {
			e.mu.Unlock()
			return
		}
		e.delivering = true
		fn := e.events[0]
		e.events = e.events[1:]
		e.mu.Unlock()

		fn()

		e.mu.Lock()
		e.delivering = false
		e.mu.Unlock()
	}
}

func (e *Engine) emitItemDisplayed(item DisplayedItem) {
	e.emit(func() {
		for _, h := range e.handlers.itemDisplayed.All() {
			h(item)
		}
	})
}

func (e *Engine) emitStageChanged(id string, stage Stage) {
	e.emit(func() {
		for _, h := range e.handlers.stageChanged.All() {
			h(id, stage)
		}
	})
}

func (e *Engine) emitCounters(production, defects int) {
	e.emit(func() {
		for _, h := range e.handlers.counters.All() {
			h(production, defects)
		}
	})
}

func (e *Engine) emitDefectDetected(item DisplayedItem) {
	e.emit(func() {
		for _, h := range e.handlers.defectDetected.All() {
			h(item)
		}
	})
}

func (e *Engine) emitPopupOpened(item DisplayedItem) {
	e.emit(func() {
		for _, h := range e.handlers.popupOpened.All() {
			h(item)
		}
	})
}

func (e *Engine) emitPopupClosed() {
	e.emit(func() {
		for _, h := range e.handlers.popupClosed.All() {
			h()
		}
	})
}

func (e *Engine) emitToastRaised(toast Toast) {
	e.emit(func() {
		for _, h := range e.handlers.toastRaised.All() {
			h(toast)
		}
	})
}

func (e *Engine) emitToastDismissed(id string) {
	e.emit(func() {
		for _, h := range e.handlers.toastDismissed.All() {
			h(id)
		}
	})
}

func (e *Engine) emitNavigationRequested(target Location) {
	e.emit(func() {
		for _, h := range e.handlers.navigation.All() {
			h(target)
		}
	})
}

func (e *Engine) emitStreamFinished() {
	e.emit(func() {
		for _, h := range e.handlers.streamFinished.All() {
			h()
		}
	})
}
