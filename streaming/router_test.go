package streaming_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Leesungkyoung/Cpastone02/streaming"
	strerr "github.com/Leesungkyoung/Cpastone02/streaming/errors"
)

// raiseToast plays a single defect record to completion while the operator
// is away from the live-monitor screen, returning the raised toast.
func raiseToast(
	t *testing.T,
	stub *stubBackend,
	clock *virtualClock,
	engine *streaming.Engine,
) streaming.Toast {
	t.Helper()

	engine.SetLocation(streaming.LocationAlerts)
	require.NoError(t, engine.Start(context.Background()))

	clock.Step(2 * time.Second)
	clock.Step(time.Second)
	clock.Step(time.Second)
	clock.BlockUntil(1)
	clock.Advance(time.Second)

	waitFor(t, engine, func(s streaming.Snapshot) bool {
		return len(s.Toasts) == 1
	}, "toast not raised")

	return engine.Snapshot().Toasts[0]
}

func TestDefectOpensPopupOnMonitor(t *testing.T) {
	stub := newStubBackend(t, []map[string]string{
		row(1001, baseTime),
		row(1002, baseTime.Add(time.Minute)),
		row(1003, baseTime.Add(2 * time.Minute)),
	})
	clock := newVirtualClock(baseTime)
	engine := defaultEngine(t, stub, clock, classifyScript(false, true, false))

	engine.SetLocation(streaming.LocationMonitor)
	require.NoError(t, engine.Start(context.Background()))

	clock.Step(2 * time.Second)
	for i := 0; i < 6; i++ {
		clock.Step(time.Second)
	}
	clock.BlockUntil(1)
	clock.Advance(time.Second)

	waitFor(t, engine, func(s streaming.Snapshot) bool {
		return s.ProductionCount == 3 && s.PopupOpen
	}, "playback should complete with an open popup")

	snap := engine.Snapshot()
	require.Equal(t, 1, snap.DefectCount)
	require.True(t, snap.StreamFinished)

	// On the live-monitor screen a defect opens the popup, never a toast.
	require.NotNil(t, snap.PopupPayload)
	require.Equal(t, "1002", snap.PopupPayload.ProductID)
	require.Equal(t, streaming.PredictionDefect, snap.PopupPayload.Prediction)
	require.Empty(t, snap.Toasts)

	require.Len(t, snap.DefectHistory, 1)
	require.Equal(t, "1002", snap.DefectHistory[0].ProductID)

	// The defect was persisted exactly once with the classification output.
	require.Equal(t, 1, stub.alertCount())
	alert, ok := stub.lastAlert()
	require.True(t, ok)
	require.Equal(t, int64(1002), alert.ProductID)
	require.InDelta(t, 0.805, alert.Prob, 1e-9)
	require.Len(t, alert.TopSensors, 3)
}

func TestDefectRaisesToastElsewhere(t *testing.T) {
	stub := newStubBackend(t, []map[string]string{
		row(2001, baseTime),
	})
	clock := newVirtualClock(baseTime)
	engine := defaultEngine(t, stub, clock, classifyScript(true))

	toast := raiseToast(t, stub, clock, engine)

	snap := engine.Snapshot()
	require.False(t, snap.PopupOpen, "no popup away from the monitor screen")
	require.Equal(t, 1, snap.DefectCount)
	require.Equal(t, "2001", toast.Item.ProductID)
	require.Equal(t, 1, stub.alertCount())
}

func TestActivateToastNavigatesAndPrimesPopup(t *testing.T) {
	stub := newStubBackend(t, []map[string]string{
		row(2001, baseTime),
	})
	clock := newVirtualClock(baseTime)
	engine := defaultEngine(t, stub, clock, classifyScript(true))

	toast := raiseToast(t, stub, clock, engine)

	var (
		mu    sync.Mutex
		order []string
	)
	note := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}
	engine.OnNavigationRequested(func(target streaming.Location) {
		note("navigate:" + string(target))
	})
	engine.OnPopupOpened(func(item streaming.DisplayedItem) {
		note("popup:" + item.ProductID)
	})
	engine.OnToastDismissed(func(string) {
		note("dismissed")
	})

	require.NoError(t, engine.ActivateToast(toast.ID))

	// Following a toast must land on the monitor screen with the popup
	// already primed, then clear the toast.
	mu.Lock()
	require.Equal(t, []string{
		"navigate:/monitor",
		"popup:2001",
		"dismissed",
	}, order)
	mu.Unlock()

	snap := engine.Snapshot()
	require.NotNil(t, snap.NavigationIntent)
	require.Equal(t, streaming.LocationMonitor, *snap.NavigationIntent)
	require.True(t, snap.PopupOpen)
	require.Equal(t, "2001", snap.PopupPayload.ProductID)
	require.Empty(t, snap.Toasts)

	// The toast is gone; activating it again is a state error.
	err := engine.ActivateToast(toast.ID)
	require.Error(t, err)

	var serr *strerr.Error
	require.ErrorAs(t, err, &serr)
	require.Equal(t, strerr.StateInvalid, serr.Kind)
}

func TestDismissToast(t *testing.T) {
	stub := newStubBackend(t, []map[string]string{
		row(2001, baseTime),
	})
	clock := newVirtualClock(baseTime)
	engine := defaultEngine(t, stub, clock, classifyScript(true))

	toast := raiseToast(t, stub, clock, engine)

	var (
		mu        sync.Mutex
		dismissed []string
	)
	engine.OnToastDismissed(func(id string) {
		mu.Lock()
		dismissed = append(dismissed, id)
		mu.Unlock()
	})

	engine.DismissToast(toast.ID)

	snap := engine.Snapshot()
	require.Empty(t, snap.Toasts)
	require.False(t, snap.PopupOpen)
	require.Nil(t, snap.NavigationIntent,
		"plain dismissal must not navigate")

	// Dismissing again, or dismissing garbage, is a no-op.
	engine.DismissToast(toast.ID)
	engine.DismissToast("missing")

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{toast.ID}, dismissed)
}

func TestAlertPersistFailureStillNotifies(t *testing.T) {
	stub := newStubBackend(t, []map[string]string{
		row(2001, baseTime),
	})
	stub.mu.Lock()
	stub.failAlerts = true
	stub.mu.Unlock()

	clock := newVirtualClock(baseTime)
	engine := defaultEngine(t, stub, clock, classifyScript(true))

	toast := raiseToast(t, stub, clock, engine)

	// The audit trail is best-effort; the operator still gets notified.
	require.Equal(t, "2001", toast.Item.ProductID)
	require.Equal(t, 1, engine.Snapshot().DefectCount)
	require.Zero(t, stub.alertCount())
}

func TestPopupMostRecentDefectWins(t *testing.T) {
	stub := newStubBackend(t, []map[string]string{
		row(1001, baseTime),
		row(1002, baseTime),
	})
	clock := newVirtualClock(baseTime)
	engine := defaultEngine(t, stub, clock, classifyScript(true, true))

	engine.SetLocation(streaming.LocationMonitor)
	require.NoError(t, engine.Start(context.Background()))

	clock.Step(2 * time.Second)
	clock.Step(time.Second)
	clock.Step(time.Second)
	clock.Step(time.Second)

	// First defect judged; its popup opens.
	waitFor(t, engine, func(s streaming.Snapshot) bool {
		return s.PopupOpen && s.PopupPayload.ProductID == "1001"
	}, "first defect should open the popup")

	clock.Step(time.Second)
	clock.BlockUntil(1)
	clock.Advance(time.Second)

	// The second defect replaces the payload; one popup slot only.
	waitFor(t, engine, func(s streaming.Snapshot) bool {
		return s.PopupOpen && s.PopupPayload.ProductID == "1002"
	}, "second defect should take over the popup")

	snap := engine.Snapshot()
	require.Equal(t, 2, snap.DefectCount)
	require.Len(t, snap.DefectHistory, 2)
	require.Equal(t, "1002", snap.DefectHistory[0].ProductID)
	require.Equal(t, "1001", snap.DefectHistory[1].ProductID)
	require.Empty(t, snap.Toasts)
}

func TestLeavingMonitorClosesPopup(t *testing.T) {
	stub := newStubBackend(t, []map[string]string{
		row(2001, baseTime),
	})
	clock := newVirtualClock(baseTime)
	engine := defaultEngine(t, stub, clock, classifyScript(true))

	toast := raiseToast(t, stub, clock, engine)
	require.NoError(t, engine.ActivateToast(toast.ID))
	require.True(t, engine.Snapshot().PopupOpen)

	closed := 0
	engine.OnPopupClosed(func() { closed++ })

	engine.SetLocation(streaming.LocationReports)

	snap := engine.Snapshot()
	require.False(t, snap.PopupOpen)
	require.Nil(t, snap.PopupPayload)
	require.Equal(t, streaming.LocationReports, snap.CurrentLocation)
	require.Equal(t, 1, closed)

	// No popup to close; no event.
	engine.SetLocation(streaming.LocationMonitor)
	engine.SetLocation(streaming.LocationReports)
	require.Equal(t, 1, closed)
}

func TestClosePopup(t *testing.T) {
	stub := newStubBackend(t, []map[string]string{
		row(2001, baseTime),
	})
	clock := newVirtualClock(baseTime)
	engine := defaultEngine(t, stub, clock, classifyScript(true))

	toast := raiseToast(t, stub, clock, engine)
	require.NoError(t, engine.ActivateToast(toast.ID))

	closed := 0
	engine.OnPopupClosed(func() { closed++ })

	engine.ClosePopup()
	engine.ClosePopup()

	snap := engine.Snapshot()
	require.False(t, snap.PopupOpen)
	require.Nil(t, snap.PopupPayload)
	require.Equal(t, 1, closed)
}
