package streaming

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/Leesungkyoung/Cpastone02/internal/wallclock"
)

type (
	// EngineOption represents a single engine option.
	EngineOption interface{ engine(*EngineOptions) }

	// EngineOptions are the resolved engine options.
	EngineOptions struct {
		// DrainInterval is the cadence at which records leave the playback
		// queue. Defaults to 2 seconds.
		DrainInterval time.Duration

		// StageInterval is the delay between presentation stages of a
		// displayed item. Defaults to 1 second.
		StageInterval time.Duration

		// DefectRate is the probability that the classifier marks a record
		// as defective. Defaults to 0.15.
		DefectRate float64

		// SensorPool is the fixed pool of sensor identifiers that defect
		// calls sample from.
		SensorPool []string

		Random *rand.Rand
		Clock  wallclock.WallClock
		Logger *slog.Logger
	}

	// WithDrainInterval sets the playback queue drain interval.
	WithDrainInterval time.Duration

	// WithStageInterval sets the delay between presentation stages.
	WithStageInterval time.Duration

	// WithDefectRate sets the simulated defect probability.
	WithDefectRate float64

	// WithSensorPool sets the sensor identifier pool for defect calls.
	WithSensorPool []string

	// This option is not used directly; see WithRandom below.
	withRandom struct{ *rand.Rand }

	// This option is not used directly; see WithClock below.
	withClock struct{ wallclock.WallClock }

	// This option is not used directly; see WithLogger below.
	withLogger struct{ *slog.Logger }
)

// Apply resolves the provided list of options.
func (o *EngineOptions) Apply(opts []EngineOption, rest ...EngineOption) {
	for _, opt := range opts {
		if opt != nil {
			opt.engine(o)
		}
	}
	for _, opt := range rest {
		if opt != nil {
			opt.engine(o)
		}
	}
}

func (o *EngineOptions) engine(opt *EngineOptions) {
	if o != nil {
		*opt = *o
	}
}

func (o WithDrainInterval) engine(opt *EngineOptions) {
	opt.DrainInterval = time.Duration(o)
}

func (o WithStageInterval) engine(opt *EngineOptions) {
	opt.StageInterval = time.Duration(o)
}

func (o WithDefectRate) engine(opt *EngineOptions) {
	opt.DefectRate = float64(o)
}

func (o WithSensorPool) engine(opt *EngineOptions) {
	opt.SensorPool = []string(o)
}

// WithRandom injects the pseudo-random source used by the classifier, making
// classification reproducible. Defaults to a time-seeded source.
func WithRandom(rnd *rand.Rand) EngineOption {
	return withRandom{rnd}
}

func (o withRandom) engine(opt *EngineOptions) {
	opt.Random = o.Rand
}

// WithClock injects the clock that drives all engine timing. Defaults to the
// wall clock; tests inject a virtual clock.
func WithClock(clock wallclock.WallClock) EngineOption {
	return withClock{clock}
}

func (o withClock) engine(opt *EngineOptions) {
	opt.Clock = o.WallClock
}

// WithLogger enables logging with the provided slog logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return withLogger{logger}
}

func (o withLogger) engine(opt *EngineOptions) {
	opt.Logger = o.Logger
}
