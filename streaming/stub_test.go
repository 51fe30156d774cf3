package streaming_test

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Leesungkyoung/Cpastone02/backend"
	"github.com/Leesungkyoung/Cpastone02/streaming"
)

type (
	// stubBackend is an in-process dashboard backend for engine tests.
	stubBackend struct {
		mu         sync.Mutex
		rows       []map[string]string
		alerts     []alertBody
		resetCalls int
		rowsCalls  int
		failRows   bool
		failAlerts bool

		server *httptest.Server
	}

	alertBody struct {
		Timestamp  time.Time `json:"timestamp"`
		ProductID  int64     `json:"product_id"`
		TopSensors []string  `json:"top_sensors"`
		Prob       float64   `json:"prob"`
	}
)

func newStubBackend(t *testing.T, rows []map[string]string) *stubBackend {
	s := &stubBackend{rows: rows}

	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/reset_demo", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		s.resetCalls++
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/stream/all_rows", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		s.rowsCalls++
		fail := s.failRows
		rows := s.rows
		s.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rows)
	})
	mux.HandleFunc("POST /api/alerts", func(w http.ResponseWriter, r *http.Request) {
		var body alertBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}

		s.mu.Lock()
		if s.failAlerts {
			s.mu.Unlock()
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		s.alerts = append(s.alerts, body)
		id := len(s.alerts)
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          id,
			"timestamp":   body.Timestamp.Format(time.RFC3339),
			"product_id":  body.ProductID,
			"top_sensors": body.TopSensors,
			"prob":        body.Prob,
			"resolved":    false,
		})
	})

	s.server = httptest.NewServer(mux)
	t.Cleanup(s.server.Close)
	return s
}

func (s *stubBackend) alertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

func (s *stubBackend) lastAlert() (alertBody, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.alerts) == 0 {
		return alertBody{}, false
	}
	return s.alerts[len(s.alerts)-1], true
}

func (s *stubBackend) resetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resetCalls
}

func (s *stubBackend) rowsCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rowsCalls
}

// row builds a raw stream row for the given product id.
func row(productID int, ts time.Time) map[string]string {
	return map[string]string{
		"product_id": strconv.Itoa(productID),
		"timestamp":  ts.Format(time.RFC3339),
		"sensor_001": "0.42",
	}
}

// scriptedSource is a deterministic random source for classification. The
// classifier consumes one Int63 for the defect gate, one for the confidence
// draw, and (for defects) four more for the sensor shuffle; classifyScript
// lays the values out accordingly. Draws past the end of the script return
// midpoint, which classifies as normal and shuffles without rejection.
type scriptedSource struct {
	mu     sync.Mutex
	values []int64
	idx    int
}

// midpoint is Int63 for Float64() == 0.5.
const midpoint = int64(1) << 62

func (s *scriptedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := midpoint
	if s.idx < len(s.values) {
		v = s.values[s.idx]
	}
	s.idx++
	return v
}

func (s *scriptedSource) Seed(int64) {}

func newScriptedRand(script []int64) *rand.Rand {
	return rand.New(&scriptedSource{values: script})
}

// classifyScript builds a draw script that classifies the i-th record as a
// defect iff defects[i] is true. Defect confidence lands at 0.805 and normal
// confidence at 0.20.
func classifyScript(defects ...bool) []int64 {
	var script []int64
	for _, defect := range defects {
		if defect {
			// gate < 0.15, confidence, four shuffle draws
			script = append(script,
				0, midpoint, midpoint, midpoint, midpoint, midpoint)
		} else {
			script = append(script, midpoint, midpoint)
		}
	}
	return script
}

// defaultEngine builds an engine against the stub backend with a virtual
// clock. The classification script defaults to all-normal unless provided.
func defaultEngine(
	t *testing.T,
	stub *stubBackend,
	clock *virtualClock,
	script []int64,
	opt ...streaming.EngineOption,
) *streaming.Engine {
	client, err := backend.New(stub.server.URL)
	require.NoError(t, err)

	opts := []streaming.EngineOption{
		streaming.WithClock(clock),
	}
	if script != nil {
		opts = append(opts, streaming.WithRandom(newScriptedRand(script)))
	}
	opts = append(opts, opt...)

	engine, err := streaming.New(client, opts...)
	require.NoError(t, err)
	t.Cleanup(engine.Stop)
	return engine
}
