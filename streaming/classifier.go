package streaming

import (
	"math/rand"
	"time"
)

// Classification simulation constants. Confidence is drawn from a high band
// for defects and a low band for normal units, matching the demo data the
// dashboard was built around.
const (
	defaultDefectRate = 0.15

	defectConfidenceMin  = 0.70
	defectConfidenceSpan = 0.21

	normalConfidenceMin  = 0.10
	normalConfidenceSpan = 0.20

	defectSensorCount = 3
)

// defaultSensorPool is the fixed pool of sensor identifiers implicated in
// simulated defect calls.
var defaultSensorPool = []string{
	"sensor_015", "sensor_253", "sensor_119", "sensor_488", "sensor_301",
}

type (
	// Classifier assigns each raw record a synthetic prediction and a
	// confidence score with a fixed defect rate. It is a pure function of
	// its random source and performs no I/O.
	Classifier struct {
		rand       *rand.Rand
		defectRate float64
		sensorPool []string
	}
)

// NewClassifier creates a classifier drawing from the given random source. A
// non-positive defectRate selects the default rate; a nil sensorPool selects
// the default pool.
func NewClassifier(
	rnd *rand.Rand,
	defectRate float64,
	sensorPool []string,
) *Classifier {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if defectRate <= 0 {
		defectRate = defaultDefectRate
	}
	if sensorPool == nil {
		sensorPool = defaultSensorPool
	}
	return &Classifier{
		rand:       rnd,
		defectRate: defectRate,
		sensorPool: sensorPool,
	}
}

// Classify fills in the prediction fields of a raw record and returns the
// classified copy. The input is not modified.
func (c *Classifier) Classify(rec Record) Record {
	if c.rand.Float64() < c.defectRate {
		rec.Prediction = PredictionDefect
		rec.Confidence = defectConfidenceMin +
			c.rand.Float64()*defectConfidenceSpan
		rec.TopSensors = c.sampleSensors(defectSensorCount)
	} else {
		rec.Prediction = PredictionNormal
		rec.Confidence = normalConfidenceMin +
			c.rand.Float64()*normalConfidenceSpan
		rec.TopSensors = nil
	}
	return rec
}

// sampleSensors draws n sensor ids from the pool without replacement, in
// shuffled order.
func (c *Classifier) sampleSensors(n int) []string {
	pool := make([]string, len(c.sensorPool))
	copy(pool, c.sensorPool)
	c.rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n]
}
