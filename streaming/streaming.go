// Package streaming implements the client-side streaming engine of the
// quality-monitoring dashboard. It plays a finite batch of historical
// sensor-read records back as a paced "live" feed, classifies each unit with
// a simulated defect model, tracks the derived production counters, persists
// each defect exactly once, and routes defect notifications to an in-page
// popup or a cross-page toast depending on where the operator currently is.
//
// The engine renders nothing. It owns the session aggregate state, exposes it
// through Snapshot, and emits typed events that a hosting UI shell
// subscribes to.
package streaming

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/Leesungkyoung/Cpastone02/backend"
	"github.com/Leesungkyoung/Cpastone02/streaming/errors"
	"github.com/Leesungkyoung/Cpastone02/internal/log"
	"github.com/Leesungkyoung/Cpastone02/internal/wallclock"
)

// Default timing of the playback feed.
const (
	defaultDrainInterval = 2 * time.Second
	defaultStageInterval = 1 * time.Second
)

// New creates a new streaming engine backed by the given client. The engine
// is idle until Start is called.
func New(client *backend.Client, opt ...EngineOption) (*Engine, error) {
	var options EngineOptions
	options.Apply(opt)

	if client == nil {
		return nil, &errors.Error{
			Message:      "backend client must not be nil",
			Kind:         errors.ArgumentInvalid,
			PropertyName: "client",
		}
	}
	if options.DrainInterval < 0 {
		return nil, &errors.Error{
			Message:       "drain interval must not be negative",
			Kind:          errors.ConfigurationInvalid,
			PropertyName:  "DrainInterval",
			PropertyValue: options.DrainInterval,
		}
	}
	if options.StageInterval < 0 {
		return nil, &errors.Error{
			Message:       "stage interval must not be negative",
			Kind:          errors.ConfigurationInvalid,
			PropertyName:  "StageInterval",
			PropertyValue: options.StageInterval,
		}
	}
	if options.DefectRate < 0 || options.DefectRate > 1 {
		return nil, &errors.Error{
			Message:       "defect rate must be a probability",
			Kind:          errors.ConfigurationInvalid,
			PropertyName:  "DefectRate",
			PropertyValue: options.DefectRate,
		}
	}

	if options.DrainInterval == 0 {
		options.DrainInterval = defaultDrainInterval
	}
	if options.StageInterval == 0 {
		options.StageInterval = defaultStageInterval
	}
	if options.Clock == nil {
		options.Clock = wallclock.Instance
	}
	if options.Random == nil {
		options.Random = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e := &Engine{
		client:    client,
		clock:     options.Clock,
		logger:    log.Wrap(options.Logger),
		sessionID: uuid.NewString(),
		classifier: NewClassifier(
			options.Random,
			options.DefectRate,
			options.SensorPool,
		),
		arena: newItemArena(options.StageInterval),
	}
	e.queue.interval = options.DrainInterval
	e.st.completed = make(map[string]struct{})
	return e, nil
}

// itemID derives a session-unique display id from the product id and the
// dequeue instant.
func itemID(productID string, createdAt time.Time) string {
	return fmt.Sprintf("%s-%d", productID, createdAt.UnixMilli())
}
