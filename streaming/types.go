package streaming

import "time"

type (
	// Prediction is the binary classification outcome for a manufactured
	// unit.
	Prediction int

	// Stage is one of the four ordered presentation states of a displayed
	// item.
	Stage int

	// Location identifies the screen the operator is currently viewing.
	Location string

	// Record is one manufactured unit's sensor read plus its classification
	// outcome. Records are immutable once classified.
	Record struct {
		// ProductID is an opaque identifier, unique within a session.
		ProductID string

		// Timestamp is the instant the unit was produced.
		Timestamp time.Time

		// Prediction is the simulated classification outcome.
		Prediction Prediction

		// Confidence is a probability in [0, 1]; it is only meaningful for
		// defect predictions.
		Confidence float64

		// TopSensors lists the sensor identifiers implicated in a defect
		// call. It is empty for normal predictions.
		TopSensors []string

		// Raw carries the original sensor fields of the record, keyed by
		// column name.
		Raw map[string]string
	}

	// DisplayedItem is a Record wrapped with presentation metadata.
	DisplayedItem struct {
		Record

		// ID is unique within a session, derived from the product id and the
		// dequeue instant.
		ID string

		// CreatedAt is the instant the record was dequeued into the feed.
		CreatedAt time.Time

		// Stage is the current presentation stage.
		Stage Stage
	}

	// Toast is a dismissible cross-page defect notification.
	Toast struct {
		ID   string
		Item DisplayedItem
	}

	// Snapshot is a point-in-time copy of the session aggregate state.
	Snapshot struct {
		DisplayedItems   []DisplayedItem // newest first
		PendingCount     int
		ProductionCount  int
		DefectCount      int
		DefectHistory    []DisplayedItem // newest first
		CurrentLocation  Location
		PopupOpen        bool
		PopupPayload     *DisplayedItem
		Toasts           []Toast
		LastVisibleAt    time.Time
		NavigationIntent *Location
		StreamFinished   bool
		Initialized      bool
	}
)

// The defined prediction outcomes.
const (
	PredictionNormal Prediction = iota
	PredictionDefect
)

// The defined presentation stages, in order. Stage transitions are strictly
// monotonic; StageJudged is terminal.
const (
	StageStarted Stage = iota + 1
	StageDataCollected
	StageInspected
	StageJudged
)

// The screens of the hosting dashboard shell.
const (
	LocationLanding  Location = "/"
	LocationMonitor  Location = "/monitor"
	LocationAlerts   Location = "/alerts"
	LocationReports  Location = "/reports"
	LocationSettings Location = "/settings"
)

// String returns the prediction as a string.
func (p Prediction) String() string {
	if p == PredictionDefect {
		return "defect"
	}
	return "normal"
}

// String returns the stage as a string.
func (s Stage) String() string {
	switch s {
	case StageStarted:
		return "started"
	case StageDataCollected:
		return "data-collected"
	case StageInspected:
		return "inspected"
	case StageJudged:
		return "judged"
	default:
		return "unknown"
	}
}
