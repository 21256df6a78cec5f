package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"nav-tracker/internal/model"
	"nav-tracker/internal/nav"
	"nav-tracker/internal/ringbuf"
	"nav-tracker/internal/tracker"
)

type fixedQuoter struct{ vals map[string]float64 }

func (f *fixedQuoter) LatestClose(ctx context.Context, symbol string) (float64, error) {
	return f.vals[symbol], nil
}

func (f *fixedQuoter) Name() string { return "fixed" }

// newTestServer builds a tracker with n appended samples and an HTTP server
// over the full route set.
func newTestServer(t *testing.T, n int) (*Hub, *tracker.Tracker, *httptest.Server) {
	t.Helper()
	fq := &fixedQuoter{vals: map[string]float64{"SPY": 501.3, "^GSPC": 5000}}
	approx := nav.New(fq, "^GSPC", 0.1, 0)
	tr := tracker.New(fq, "SPY", approx, ringbuf.New(100), time.Second, nil)

	now := time.Now()
	for i := 0; i < n; i++ {
		now = now.Add(time.Second)
		if _, err := tr.Tick(context.Background(), now); err != nil {
			t.Fatal(err)
		}
	}

	hub := NewHub(tr, nil)
	mux := http.NewServeMux()
	RegisterRoutes(mux, hub, time.Now())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return hub, tr, srv
}

func getJSON(t *testing.T, url string, out interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("GET %s: decode: %v", url, err)
	}
}

func TestLatestEndpoint(t *testing.T) {
	_, _, srv := newTestServer(t, 3)

	var resp LatestResponse
	getJSON(t, srv.URL+"/api/latest", &resp)

	if resp.Sample == nil {
		t.Fatal("expected a latest sample")
	}
	if resp.Sample.Price != 501.3 || resp.Sample.NAV != 500.0 {
		t.Fatalf("unexpected sample: %+v", resp.Sample)
	}
	wantPct := resp.Sample.Difference / resp.Sample.NAV * 100
	if resp.DifferencePct != wantPct {
		t.Errorf("differencePct: got %v, want %v", resp.DifferencePct, wantPct)
	}
}

func TestLatestEndpoint_EmptyBuffer(t *testing.T) {
	_, _, srv := newTestServer(t, 0)

	var resp LatestResponse
	getJSON(t, srv.URL+"/api/latest", &resp)

	if resp.Sample != nil {
		t.Fatalf("expected null sample on empty buffer, got %+v", resp.Sample)
	}
}

func TestSamplesEndpoint(t *testing.T) {
	_, _, srv := newTestServer(t, 5)

	var resp struct {
		Symbol  string         `json:"symbol"`
		Count   int            `json:"count"`
		Cap     int            `json:"cap"`
		Samples []model.Sample `json:"samples"`
	}
	getJSON(t, srv.URL+"/api/samples", &resp)

	if resp.Symbol != "SPY" || resp.Count != 5 || resp.Cap != 100 {
		t.Fatalf("unexpected payload: symbol=%q count=%d cap=%d", resp.Symbol, resp.Count, resp.Cap)
	}
	if len(resp.Samples) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(resp.Samples))
	}
	for _, s := range resp.Samples {
		if s.Difference != s.Price-s.NAV {
			t.Fatalf("sample difference mismatch: %+v", s)
		}
	}
}

func TestTableEndpoint(t *testing.T) {
	_, _, srv := newTestServer(t, 20)

	var rows []tracker.TableRow
	getJSON(t, srv.URL+"/api/table", &rows)

	if len(rows) != tracker.RecentTableSize {
		t.Fatalf("expected %d rows, got %d", tracker.RecentTableSize, len(rows))
	}
	if !rows[0].TS.After(rows[1].TS) {
		t.Error("rows should be newest first")
	}
}

func TestRefreshEndpoint(t *testing.T) {
	_, tr, srv := newTestServer(t, 1)

	if tr.LastUpdate().IsZero() {
		t.Fatal("precondition: lastUpdate should be set")
	}

	resp, err := http.Post(srv.URL+"/api/refresh", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if !tr.LastUpdate().IsZero() {
		t.Error("force refresh should rewind lastUpdate")
	}
}

func TestRefreshEndpoint_RequiresPOST(t *testing.T) {
	_, _, srv := newTestServer(t, 1)

	resp, err := http.Get(srv.URL + "/api/refresh")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, _, srv := newTestServer(t, 2)

	var resp HealthResponse
	getJSON(t, srv.URL+"/api/health", &resp)

	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
	if resp.BufferLen != 2 || resp.BufferCap != 100 {
		t.Errorf("unexpected buffer state: len=%d cap=%d", resp.BufferLen, resp.BufferCap)
	}
	if resp.MarketStatus == "" {
		t.Error("expected a market status string")
	}
}

func TestDashboardPage(t *testing.T) {
	_, _, srv := newTestServer(t, 0)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html content type, got %q", ct)
	}

	// Unknown paths are 404, not the page.
	nf, err := http.Get(srv.URL + "/definitely-not-here")
	if err != nil {
		t.Fatal(err)
	}
	nf.Body.Close()
	if nf.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown path, got %d", nf.StatusCode)
	}
}

func TestWS_SnapshotThenBroadcast(t *testing.T) {
	hub, tr, srv := newTestServer(t, 3)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}

	var snap SnapshotEnvelope
	if err := json.Unmarshal(firstLine(msg), &snap); err != nil {
		t.Fatalf("snapshot decode: %v", err)
	}
	if snap.Type != "snapshot" || snap.Symbol != "SPY" || len(snap.Samples) != 3 {
		t.Fatalf("unexpected snapshot: type=%q symbol=%q samples=%d", snap.Type, snap.Symbol, len(snap.Samples))
	}

	// Broadcast a new sample and expect it on the wire.
	latest, _ := tr.Latest()
	hub.Notify(context.Background(), latest)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	var env SampleEnvelope
	if err := json.Unmarshal(firstLine(msg), &env); err != nil {
		t.Fatalf("envelope decode: %v", err)
	}
	if env.Type != "sample" || env.Sample.Price != latest.Price {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if len(env.Table) == 0 {
		t.Error("expected table rows in sample envelope")
	}
}

func TestSendInitialState_AfterDisconnect(t *testing.T) {
	hub, _, _ := newTestServer(t, 2)

	// A peer that disconnects before its snapshot goroutine runs: the
	// client is already removed (send channel closed) when
	// sendInitialState fires. It must return without sending.
	c := &Client{send: make(chan []byte, 1), hub: hub}
	hub.mu.Lock()
	hub.clients[c] = true
	hub.mu.Unlock()
	hub.RemoveClient(c)

	c.sendInitialState() // must not panic on the closed channel

	if _, ok := <-c.send; ok {
		t.Fatal("no message should reach a removed client")
	}
}

// firstLine strips write-coalesced frames down to their first message.
func firstLine(b []byte) []byte {
	if i := strings.IndexByte(string(b), '\n'); i >= 0 {
		return b[:i]
	}
	return b
}
