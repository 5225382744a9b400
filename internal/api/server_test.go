package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/star/sattrack/internal/auth"
	"github.com/star/sattrack/internal/catalog"
	"github.com/star/sattrack/internal/ingest"
	"github.com/star/sattrack/internal/position"
	"github.com/star/sattrack/internal/propagation"
	"github.com/star/sattrack/internal/tle"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

// Published ISS element set (Vallado's reference TLE).
const (
	issName  = "ISS (ZARYA)"
	issLine1 = "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927"
	issLine2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"
)

// staticFetcher serves a canned feed payload.
type staticFetcher struct {
	payload []byte
}

func (f *staticFetcher) Fetch(ctx context.Context) ([]byte, error) {
	return f.payload, nil
}

func newTestServer(t *testing.T, authCfg auth.Config) (*httptest.Server, *catalog.MemoryStore) {
	t.Helper()

	store := catalog.NewMemoryStore()
	fetcher := &staticFetcher{payload: []byte(issName + "\n" + issLine1 + "\n" + issLine2 + "\n")}
	pipeline := ingest.NewPipeline(fetcher, store, testLogger)
	positions := position.NewService(store, propagation.NewSubpointPropagator(), testLogger)

	srv := NewServer("127.0.0.1:0", testLogger, authCfg, store, pipeline, positions)
	ts := httptest.NewServer(srv.HTTPServer().Handler)
	t.Cleanup(ts.Close)
	return ts, store
}

func seedISS(t *testing.T, store *catalog.MemoryStore) {
	t.Helper()
	set, err := tle.ParseRecord(issName, issLine1, issLine2)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Upsert(context.Background(), set); err != nil {
		t.Fatal(err)
	}
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t, auth.Config{})
	if status := getJSON(t, ts.URL+"/healthz", nil); status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
}

func TestListSatellites(t *testing.T) {
	ts, store := newTestServer(t, auth.Config{})
	seedISS(t, store)

	var body struct {
		Count      int            `json:"count"`
		Satellites []satelliteDTO `json:"satellites"`
	}
	if status := getJSON(t, ts.URL+"/api/v1/satellites", &body); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body.Count != 1 || len(body.Satellites) != 1 {
		t.Fatalf("count = %d, satellites = %d, want 1/1", body.Count, len(body.Satellites))
	}
	sat := body.Satellites[0]
	if sat.NoradID != 25544 || sat.Name != issName {
		t.Errorf("satellite = %+v", sat)
	}
	if _, err := time.Parse(time.RFC3339Nano, sat.Epoch); err != nil {
		t.Errorf("epoch %q is not RFC 3339: %v", sat.Epoch, err)
	}
}

func TestListSatellitesInvalidLimit(t *testing.T) {
	ts, _ := newTestServer(t, auth.Config{})
	if status := getJSON(t, ts.URL+"/api/v1/satellites?limit=nope", nil); status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}

func TestGetSatellite(t *testing.T) {
	ts, store := newTestServer(t, auth.Config{})
	seedISS(t, store)

	var sat satelliteDTO
	if status := getJSON(t, ts.URL+"/api/v1/satellites/25544", &sat); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if sat.NoradID != 25544 {
		t.Errorf("norad_id = %d, want 25544", sat.NoradID)
	}
	if sat.ObjectID != "98067A" {
		t.Errorf("object_id = %q, want 98067A", sat.ObjectID)
	}
}

func TestGetSatelliteNotFound(t *testing.T) {
	ts, _ := newTestServer(t, auth.Config{})
	if status := getJSON(t, ts.URL+"/api/v1/satellites/99999", nil); status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestPositions(t *testing.T) {
	ts, store := newTestServer(t, auth.Config{})
	seedISS(t, store)

	// 99999 is absent from the catalog; the query degrades per-identifier.
	url := ts.URL + "/api/v1/satellites/positions?norad_ids=25544,99999&at=2008-09-20T12:25:40Z"
	var snap struct {
		Timestamp time.Time `json:"timestamp"`
		Positions []struct {
			NoradID int     `json:"norad_id"`
			Lat     float64 `json:"lat"`
			Lon     float64 `json:"lon"`
			AltKm   float64 `json:"alt_km"`
		} `json:"positions"`
	}
	if status := getJSON(t, url, &snap); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if len(snap.Positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(snap.Positions))
	}
	pos := snap.Positions[0]
	if pos.NoradID != 25544 {
		t.Errorf("norad_id = %d, want 25544", pos.NoradID)
	}
	if pos.AltKm < 160 || pos.AltKm > 2000 {
		t.Errorf("alt_km = %.1f outside LEO band", pos.AltKm)
	}
	if snap.Timestamp.IsZero() {
		t.Error("missing snapshot timestamp")
	}
}

func TestPositionsNoIDs(t *testing.T) {
	ts, _ := newTestServer(t, auth.Config{})
	if status := getJSON(t, ts.URL+"/api/v1/satellites/positions", nil); status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}

func TestPositionsBadTimestamp(t *testing.T) {
	ts, _ := newTestServer(t, auth.Config{})
	url := ts.URL + "/api/v1/satellites/positions?norad_ids=25544&at=yesterday"
	if status := getJSON(t, url, nil); status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}

func TestRefresh(t *testing.T) {
	ts, store := newTestServer(t, auth.Config{})

	resp, err := http.Post(ts.URL+"/api/v1/refresh", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Status string `json:"status"`
		RunID  string `json:"run_id"`
		Count  int    `json:"count"`
		Failed int    `json:"failed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "completed" || body.Count != 1 || body.Failed != 0 {
		t.Errorf("refresh response = %+v", body)
	}
	if store.Count() != 1 {
		t.Errorf("store count = %d after refresh, want 1", store.Count())
	}
}

func TestAuthRequired(t *testing.T) {
	ts, store := newTestServer(t, auth.Config{Enabled: true, Token: "secret"})
	seedISS(t, store)

	// Probes stay public when auth is on.
	if status := getJSON(t, ts.URL+"/healthz", nil); status != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", status)
	}

	if status := getJSON(t, ts.URL+"/api/v1/satellites", nil); status != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", status)
	}

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/satellites", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", resp.StatusCode)
	}

	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong-token status = %d, want 401", resp.StatusCode)
	}
}
