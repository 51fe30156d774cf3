package backend

import (
	"time"

	"github.com/relvacode/iso8601"

	"github.com/Leesungkyoung/Cpastone02/streaming/errors"
)

type (
	// RawRow is one historical sensor-read record as returned by the stream
	// endpoint. Rows originate from a CSV export, so every field arrives as a
	// string keyed by column name.
	RawRow map[string]string

	// AlertCreate is the request body for creating an alert.
	AlertCreate struct {
		Timestamp  time.Time `json:"timestamp"`
		ProductID  int64     `json:"product_id"`
		TopSensors []string  `json:"top_sensors"`
		Prob       float64   `json:"prob"`
	}

	// Alert is the durable representation of a confirmed defect held by the
	// backend.
	Alert struct {
		ID         int64         `json:"id"`
		Timestamp  iso8601.Time  `json:"timestamp"`
		ProductID  int64         `json:"product_id"`
		TopSensors []string      `json:"top_sensors"`
		Prob       float64       `json:"prob"`
		Resolved   bool          `json:"resolved"`
		ResolvedAt *iso8601.Time `json:"resolved_at,omitempty"`
	}
)

// ProductID returns the product identifier of the row.
func (r RawRow) ProductID() string {
	return r["product_id"]
}

// Timestamp parses the production instant of the row, which arrives as an
// ISO 8601 string.
func (r RawRow) Timestamp() (time.Time, error) {
	raw, ok := r["timestamp"]
	if !ok || raw == "" {
		return time.Time{}, &errors.Error{
			Message:      "row has no timestamp",
			Kind:         errors.PayloadInvalid,
			PropertyName: "timestamp",
		}
	}
	ts, err := iso8601.ParseString(raw)
	if err != nil {
		return time.Time{}, &errors.Error{
			Message:       "row timestamp is not a valid ISO 8601 instant",
			Kind:          errors.PayloadInvalid,
			PropertyName:  "timestamp",
			PropertyValue: raw,
			NestedError:   err,
		}
	}
	return ts, nil
}
