package streaming

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/Leesungkyoung/Cpastone02/backend"
	"github.com/Leesungkyoung/Cpastone02/streaming/errors"
)

// persistAndNotify submits the alert for a confirmed defect and then routes
// the operator notification. Persistence is best-effort audit trail: a
// failure is logged and never hides the defect from the operator, so the
// notification fires regardless of the outcome.
func (e *Engine) persistAndNotify(ctx context.Context, item DisplayedItem) {
	e.persistAlert(ctx, item)

	e.mu.Lock()
	e.routeDefectLocked(item)
	e.mu.Unlock()

	e.deliver()
}

// persistAlert submits the alert payload for a defect item. Failures are
// logged only; there is no retry.
func (e *Engine) persistAlert(ctx context.Context, item DisplayedItem) {
	productID, err := strconv.ParseInt(item.ProductID, 10, 64)
	if err != nil {
		e.logger.Err(ctx, &errors.Error{
			Message:       "product id is not numeric; alert not persisted",
			Kind:          errors.PayloadInvalid,
			PropertyName:  "product_id",
			PropertyValue: item.ProductID,
			NestedError:   err,
		})
		return
	}

	sensors := item.TopSensors
	if sensors == nil {
		sensors = []string{}
	}

	alert, err := e.client.CreateAlert(ctx, backend.AlertCreate{
		Timestamp:  item.Timestamp,
		ProductID:  productID,
		TopSensors: sensors,
		Prob:       item.Confidence,
	})
	if err != nil {
		e.logger.Err(ctx, err)
		return
	}
	e.logger.Debug(ctx, "alert persisted",
		slog.Int64("alert_id", alert.ID),
		slog.String("product_id", item.ProductID))
}

// routeDefectLocked dispatches a defect through exactly one of the two
// notification channels: the in-page popup when the operator is on the
// live-monitor screen, a cross-page toast otherwise. The defect history is
// appended unconditionally first.
func (e *Engine) routeDefectLocked(item DisplayedItem) {
	e.st.recordDefect(item)
	e.emitDefectDetected(item)

	if e.st.currentLocation == LocationMonitor {
		e.openPopupLocked(item)
		return
	}

	toast := Toast{ID: uuid.NewString(), Item: item}
	e.st.toasts = append(e.st.toasts, toast)
	e.emitToastRaised(toast)
}

// openPopupLocked opens the popup with the item as payload. At most one
// popup is open at a time; the most recent defect wins the slot.
func (e *Engine) openPopupLocked(item DisplayedItem) {
	payload := item
	e.st.popupOpen = true
	e.st.popupPayload = &payload
	e.emitPopupOpened(item)
}

func (e *Engine) closePopupLocked() {
	if !e.st.popupOpen {
		return
	}
	e.st.popupOpen = false
	e.st.popupPayload = nil
	e.emitPopupClosed()
}

// ClosePopup dismisses the in-page defect popup.
func (e *Engine) ClosePopup() {
	e.mu.Lock()
	e.closePopupLocked()
	e.mu.Unlock()

	e.deliver()
}

// ActivateToast reports that the operator activated the given toast. In
// order: the engine requests navigation to the live-monitor screen, primes
// the popup with the toast's defect, and dismisses the toast. Following the
// toast therefore always lands on a screen with the correct popup open.
func (e *Engine) ActivateToast(id string) error {
	e.mu.Lock()
	toast, ok := e.st.takeToast(id)
	if !ok {
		e.mu.Unlock()
		return &errors.Error{
			Message:       "no active toast with this id",
			Kind:          errors.StateInvalid,
			PropertyName:  "id",
			PropertyValue: id,
		}
	}

	e.requestNavigationLocked(LocationMonitor)
	e.openPopupLocked(toast.Item)
	e.emitToastDismissed(toast.ID)
	e.mu.Unlock()

	e.deliver()
	return nil
}

// DismissToast dismisses a toast without acting on it. Dismissing an unknown
// or already-dismissed toast is a no-op.
func (e *Engine) DismissToast(id string) {
	e.mu.Lock()
	if _, ok := e.st.takeToast(id); ok {
		e.emitToastDismissed(id)
	}
	e.mu.Unlock()

	e.deliver()
}
