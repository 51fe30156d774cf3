package streaming

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Leesungkyoung/Cpastone02/backend"
	"github.com/Leesungkyoung/Cpastone02/streaming/errors"
	"github.com/Leesungkyoung/Cpastone02/internal/log"
	"github.com/Leesungkyoung/Cpastone02/internal/wallclock"
)

type (
	// Engine is the streaming engine for one dashboard session. All state is
	// owned by the engine; the hosting shell interacts through the exported
	// methods and the On* event registrations.
	Engine struct {
		client     *backend.Client
		classifier *Classifier
		clock      wallclock.WallClock
		logger     log.Logger
		sessionID  string

		mu    sync.Mutex
		st    sessionState
		queue playbackQueue
		arena *itemArena

		// Queued event deliveries; see deliver in events.go.
		events     []func()
		delivering bool
		handlers   handlers

		schedRunning bool
		stopCh       chan struct{}

		runCtx    context.Context
		runCancel context.CancelFunc
	}
)

// Start is the one-shot session bootstrap: it resets the session state,
// requests the backend to clear prior session artifacts, fetches the full
// historical batch, classifies it, and begins draining the playback queue.
// Calling Start on an initialized engine is a no-op. If the batch fetch
// fails, the engine rolls back to uninitialized so the host can retry, and
// the session state is left empty.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.st.initialized {
		e.mu.Unlock()
		e.logger.Debug(ctx, "stream already initialized; ignoring")
		return nil
	}
	e.st.initialized = true
	e.st.reset()
	e.queue.replaceAll(nil)
	e.arena.clear()
	e.mu.Unlock()

	e.logger.Info(ctx, "initializing stream",
		slog.String("session_id", e.sessionID))

	// Clearing the previous demo session is best-effort; playback proceeds
	// without it.
	if err := e.client.ResetDemo(ctx); err != nil {
		e.logger.Err(ctx, err)
	}

	rows, err := e.client.AllRows(ctx)
	if err != nil {
		e.mu.Lock()
		e.st.initialized = false
		e.mu.Unlock()
		e.logger.Err(ctx, err)
		return err
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := Record{ProductID: row.ProductID(), Raw: row}
		ts, err := row.Timestamp()
		if err != nil {
			e.logger.Warn(ctx, "row has an unusable timestamp",
				slog.String("product_id", rec.ProductID))
		}
		rec.Timestamp = ts
		records = append(records, e.classifier.Classify(rec))
	}

	e.logger.Info(ctx, "starting playback",
		slog.String("session_id", e.sessionID),
		slog.Int("records", len(records)))

	e.mu.Lock()
	// Background work (alert persistence) outlives the bootstrap context.
	e.runCtx, e.runCancel = context.WithCancel(context.WithoutCancel(ctx))
	e.queue.replaceAll(records)
	if e.queue.start(e.clock.Now()) {
		e.st.streamFinished = true
		e.emitStreamFinished()
	}
	e.startSchedulerLocked()
	e.mu.Unlock()

	e.deliver()
	return nil
}

// Stop halts draining early and forces the stream completion signal. Pending
// item animations are cancelled; no side effect fires from a cancelled
// transition.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.runCancel != nil {
		e.runCancel()
	}
	if e.stopCh != nil {
		close(e.stopCh)
		e.stopCh = nil
	}
	if e.queue.stop() {
		e.st.streamFinished = true
		e.emitStreamFinished()
	}
	e.arena.clear()
	e.mu.Unlock()

	e.deliver()
}

// Snapshot returns a copy of the current session aggregate state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.snapshot(e.queue.len())
}

// SetLocation records the screen the operator is currently viewing. Leaving
// the live-monitor screen closes an open popup.
func (e *Engine) SetLocation(loc Location) {
	e.mu.Lock()
	e.st.currentLocation = loc
	if loc != LocationMonitor && e.st.popupOpen {
		e.closePopupLocked()
	}
	e.mu.Unlock()

	e.deliver()
}

// SetLastVisibleAt records the instant the session regained foreground
// visibility. Items that arrived before it settle directly at the terminal
// stage, applying their one-time side effects if not already applied and
// emitting no intermediate stage transitions.
func (e *Engine) SetLastVisibleAt(t time.Time) {
	e.mu.Lock()
	e.st.lastVisibleAt = t
	for _, id := range e.arena.before(t) {
		e.arena.settle(id)
		e.settleItemLocked(id)
	}
	e.mu.Unlock()

	e.deliver()
}

// ReleaseItem cancels the pending stage transitions of a displayed item, as
// when the hosting view unmounts mid-animation. No side effect fires from a
// cancelled transition.
func (e *Engine) ReleaseItem(id string) {
	e.mu.Lock()
	e.arena.release(id)
	e.mu.Unlock()
}

// AttachItem re-evaluates a displayed item's lifecycle, as when a hosting
// view (re)mounts it. A completed or caught-up item settles at the terminal
// stage; anything else restarts the live animation from the first stage.
func (e *Engine) AttachItem(id string) error {
	e.mu.Lock()
	item := e.st.item(id)
	if item == nil {
		e.mu.Unlock()
		return &errors.Error{
			Message:       "no displayed item with this id",
			Kind:          errors.ArgumentInvalid,
			PropertyName:  "id",
			PropertyValue: id,
		}
	}

	switch {
	case e.arena.animating(id):
		// Already live; nothing to do.

	case e.st.isCompleted(id) ||
		(!e.st.lastVisibleAt.IsZero() &&
			item.CreatedAt.Before(e.st.lastVisibleAt)):
		e.settleItemLocked(id)

	default:
		now := e.clock.Now()
		item.Stage = StageStarted
		e.arena.add(id, item.CreatedAt, now)
		e.emitStageChanged(id, StageStarted)
		e.startSchedulerLocked()
	}
	e.mu.Unlock()

	e.deliver()
	return nil
}

// startSchedulerLocked ensures the single scheduler goroutine is running
// whenever any timed work is outstanding.
func (e *Engine) startSchedulerLocked() {
	if e.schedRunning {
		return
	}
	if _, ok := e.nextWakeLocked(); !ok {
		return
	}
	e.stopCh = make(chan struct{})
	e.schedRunning = true
	go e.run(e.stopCh)
}

// nextWakeLocked returns the earliest instant at which timed work is due.
func (e *Engine) nextWakeLocked() (time.Time, bool) {
	next, ok := e.queue.nextDue()
	if due, k := e.arena.nextDue(); k && (!ok || due.Before(next)) {
		next, ok = due, true
	}
	return next, ok
}

// run is the scheduler loop. One goroutine owns all engine timing: it
// sleeps until the earliest due instant, processes everything that has
// elapsed, and re-arms. It exits when no timed work remains; a later
// AttachItem restarts it.
func (e *Engine) run(stop <-chan struct{}) {
	for {
		e.mu.Lock()
		e.processLocked()
		next, ok := e.nextWakeLocked()
		if !ok {
			e.schedRunning = false
			e.mu.Unlock()
			e.deliver()
			return
		}
		now := e.clock.Now()
		e.mu.Unlock()
		e.deliver()

		t := e.clock.NewTimer(next.Sub(now))
		select {
		case <-t.C():
		case <-stop:
			t.Stop()
			e.mu.Lock()
			e.schedRunning = false
			e.mu.Unlock()
			return
		}
	}
}

// processLocked advances every due tick and stage transition as of now.
func (e *Engine) processLocked() {
	now := e.clock.Now()

	recs, finished := e.queue.tick(now)
	for _, rec := range recs {
		item := DisplayedItem{
			Record:    rec,
			ID:        itemID(rec.ProductID, now),
			CreatedAt: now,
			Stage:     StageStarted,
		}
		e.st.display(item)
		e.arena.add(item.ID, now, now)
		e.emitItemDisplayed(item)
	}
	if finished {
		e.st.streamFinished = true
		e.emitStreamFinished()
		e.logger.Info(e.runCtx, "finished displaying all records",
			slog.String("session_id", e.sessionID))
	}

	for _, adv := range e.arena.advanceDue(now) {
		e.applyStageLocked(adv.id, adv.stage)
	}
}

// applyStageLocked applies one stage transition to the displayed item. Stage
// transitions are strictly increasing; stray or redundant transitions are
// dropped.
func (e *Engine) applyStageLocked(id string, stage Stage) {
	item := e.st.item(id)
	if item == nil || stage <= item.Stage {
		return
	}
	item.Stage = stage
	e.emitStageChanged(id, stage)
	if stage == StageJudged {
		e.completeLocked(*item)
	}
}

// settleItemLocked forces an item directly to the terminal stage without
// intermediate transitions and applies its one-time side effects.
func (e *Engine) settleItemLocked(id string) {
	item := e.st.item(id)
	if item == nil {
		return
	}
	if item.Stage < StageJudged {
		item.Stage = StageJudged
		e.emitStageChanged(id, StageJudged)
	}
	e.completeLocked(*item)
}

// completeLocked applies the terminal side effects of an item exactly once:
// counters, and for defects the persistence call and notification routing.
func (e *Engine) completeLocked(item DisplayedItem) {
	if !e.st.markCompleted(item.ID) {
		return
	}

	e.st.productionCount++
	if item.Prediction == PredictionDefect {
		e.st.defectCount++
	}
	e.emitCounters(e.st.productionCount, e.st.defectCount)

	if item.Prediction == PredictionDefect {
		ctx := e.runCtx
		if ctx == nil {
			ctx = context.Background()
		}
		go e.persistAndNotify(ctx, item)
	}
}
