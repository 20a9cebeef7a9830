package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"spoofdefense-sim/internal/engine"
	"spoofdefense-sim/internal/scenario"
	"spoofdefense-sim/internal/sim"
)

type seqRand struct{ n int }

func (r *seqRand) Float64() float64 {
	r.n++
	return float64(r.n%97) / 97
}

func (r *seqRand) Intn(n int) int {
	r.n++
	return r.n % n
}

func newTestServer(t *testing.T, metrics http.Handler) (*Server, *sim.Simulator) {
	t.Helper()
	s := sim.NewSimulator("run-test", engine.DefaultParams(), scenario.BuiltIn(), nil, time.Millisecond, &seqRand{})
	return NewServer(s, metrics), s
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestIntentRoutes(t *testing.T) {
	srv, s := newTestServer(t, nil)
	h := srv.Router()

	w := do(t, h, http.MethodPost, "/scenario/wifi")
	if w.Code != http.StatusOK {
		t.Fatalf("select scenario: status %d body %s", w.Code, w.Body)
	}
	var resp stateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RunID != "run-test" || resp.State.Scenario == nil || resp.State.Scenario.ID != "wifi" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Briefing == "" {
		t.Fatalf("expected a briefing once a scenario is selected")
	}

	if w := do(t, h, http.MethodPost, "/drones?count=3&control=sim"); w.Code != http.StatusOK {
		t.Fatalf("drones: status %d body %s", w.Code, w.Body)
	}
	if w := do(t, h, http.MethodPost, "/intensity?value=75"); w.Code != http.StatusOK {
		t.Fatalf("intensity: status %d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/zone/bravo"); w.Code != http.StatusOK {
		t.Fatalf("zone: status %d", w.Code)
	}
	st := s.Snapshot()
	if st.DroneCount != 3 || st.Control != engine.ControlSIM || st.Intensity != 75 || st.SelectedZone.ID != "bravo" {
		t.Fatalf("setup not applied: %+v", st)
	}

	if w := do(t, h, http.MethodPost, "/start"); w.Code != http.StatusOK {
		t.Fatalf("start: status %d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/pause"); w.Code != http.StatusOK {
		t.Fatalf("pause: status %d", w.Code)
	}
	if s.Snapshot().Run != engine.RunPaused {
		t.Fatalf("expected paused run, got %s", s.Snapshot().Run)
	}
	if w := do(t, h, http.MethodPost, "/resume"); w.Code != http.StatusOK {
		t.Fatalf("resume: status %d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/defense"); w.Code != http.StatusOK {
		t.Fatalf("defense: status %d body %s", w.Code, w.Body)
	}
	if !s.Snapshot().DefenseActive {
		t.Fatalf("expected defense active")
	}
	if w := do(t, h, http.MethodPost, "/reset"); w.Code != http.StatusOK {
		t.Fatalf("reset: status %d", w.Code)
	}
	if s.Snapshot().Run != engine.RunIdle {
		t.Fatalf("expected idle after reset")
	}
}

func TestIntentErrorStatus(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Router()

	tests := []struct {
		path string
		want int
	}{
		{"/scenario/laser", http.StatusNotFound},
		{"/zone/delta", http.StatusNotFound},
		{"/drones?control=radio", http.StatusNotFound},
		{"/pause", http.StatusConflict},
		{"/defense", http.StatusConflict},
		{"/resume", http.StatusConflict},
		{"/drones", http.StatusBadRequest},
		{"/drones?count=many", http.StatusBadRequest},
		{"/intensity?value=loud", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := do(t, h, http.MethodPost, tt.path)
		if w.Code != tt.want {
			t.Errorf("%s: status %d, want %d", tt.path, w.Code, tt.want)
			continue
		}
		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil || body["error"] == "" {
			t.Errorf("%s: expected error body, got %v (%v)", tt.path, body, err)
		}
	}

	if w := do(t, h, http.MethodGet, "/start"); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /start: status %d", w.Code)
	}
}

func TestDronesRejectsBadControlBeforeCount(t *testing.T) {
	srv, s := newTestServer(t, nil)
	h := srv.Router()
	before := s.Snapshot().DroneCount

	if w := do(t, h, http.MethodPost, "/drones?count=2&control=radio"); w.Code != http.StatusNotFound {
		t.Fatalf("unknown control: status %d", w.Code)
	}
	if got := s.Snapshot().DroneCount; got != before {
		t.Fatalf("drone count changed to %d after a rejected control", got)
	}

	if err := s.SelectScenario("wifi"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if w := do(t, h, http.MethodPost, "/drones?count=2&control=sim"); w.Code != http.StatusConflict {
		t.Fatalf("control while running: status %d", w.Code)
	}
	st := s.Snapshot()
	if st.DroneCount != before || st.Control != engine.ControlGPS {
		t.Fatalf("setup changed while running: count %d control %s", st.DroneCount, st.Control)
	}
}

func TestReadRoutes(t *testing.T) {
	srv, s := newTestServer(t, nil)
	h := srv.Router()
	if err := s.SelectScenario("bluetooth"); err != nil {
		t.Fatalf("select: %v", err)
	}

	w := do(t, h, http.MethodGet, "/scenarios")
	var scenarios []scenario.Scenario
	if err := json.NewDecoder(w.Body).Decode(&scenarios); err != nil {
		t.Fatalf("decode scenarios: %v", err)
	}
	if len(scenarios) != len(scenario.BuiltIn()) || scenarios[0].ID != "bluetooth" {
		t.Fatalf("unexpected scenarios: %+v", scenarios)
	}

	w = do(t, h, http.MethodGet, "/events")
	var events []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) == 0 {
		t.Fatalf("expected the scenario selection event")
	}

	w = do(t, h, http.MethodGet, "/")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Bluetooth Drone") {
		t.Fatalf("index: status %d", w.Code)
	}

	if w := do(t, h, http.MethodGet, "/metrics"); w.Code != http.StatusNotFound {
		t.Fatalf("metrics without handler: status %d", w.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok_metric 1\n"))
	})
	srv, _ := newTestServer(t, metrics)
	w := do(t, srv.Router(), http.MethodGet, "/metrics")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ok_metric") {
		t.Fatalf("metrics: status %d body %s", w.Code, w.Body)
	}
}

func TestWebSocketStreamsSnapshots(t *testing.T) {
	srv, s := newTestServer(t, nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var st engine.State
	if err := conn.ReadJSON(&st); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if st.Run != engine.RunIdle {
		t.Fatalf("initial run = %s", st.Run)
	}

	if err := s.SelectScenario("satellite"); err != nil {
		t.Fatalf("select: %v", err)
	}
	for {
		if err := conn.ReadJSON(&st); err != nil {
			t.Fatalf("read update: %v", err)
		}
		if st.Scenario != nil && st.Scenario.ID == "satellite" {
			break
		}
	}
}
