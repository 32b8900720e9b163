package main

import (
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glowline/wakelight/internal/layout"
	"github.com/glowline/wakelight/internal/mapdb"
	"github.com/glowline/wakelight/internal/mapper"
	"github.com/glowline/wakelight/internal/strip"
	"github.com/glowline/wakelight/internal/wake"
)

// testServer wires a Server over an in-memory strip, a line layout, and a
// temp database.
func testServer(t *testing.T) (*Server, *strip.MockStrip) {
	t.Helper()
	dir := t.TempDir()

	const n = 10
	lay := &layout.Layout{
		IDs:       make([]int, n),
		Positions: make([]layout.Position, n),
	}
	for i := 0; i < n; i++ {
		lay.IDs[i] = i
		lay.Positions[i] = layout.Position{X: float64(i), Y: 0}
	}

	db, err := mapdb.Open(filepath.Join(dir, "wakelight.db"))
	if err != nil {
		t.Fatalf("mapdb.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m, err := mapper.New(lay, db)
	if err != nil {
		t.Fatalf("mapper.New: %v", err)
	}

	mock := strip.NewMockStrip(n)
	runner := &wake.Runner{Strip: mock, Mapper: m, ImageDir: dir, Steps: 2}
	sched, err := LoadSchedule(filepath.Join(dir, "times.txt"))
	if err != nil {
		t.Fatal(err)
	}
	return NewServer(runner, sched, db, m, lay, dir, 10*time.Millisecond), mock
}

func TestHomePageShowsAlarm(t *testing.T) {
	srv, _ := testServer(t)
	if err := srv.sched.Set("06:45"); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	srv.ServeMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `value="06:45"`) {
		t.Error("home page does not show the current alarm time")
	}
}

func TestSetAlarmViaForm(t *testing.T) {
	srv, _ := testServer(t)
	mux := srv.ServeMux()

	form := url.Values{"time": {"07:30"}}
	req := httptest.NewRequest(http.MethodPost, "/schedule", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST /schedule = %d, want redirect", rec.Code)
	}
	if got := srv.sched.At(); got != "07:30" {
		t.Errorf("alarm = %q, want 07:30", got)
	}
}

func TestSetAlarmRejectsGarbage(t *testing.T) {
	srv, _ := testServer(t)
	form := url.Values{"time": {"sunrise o'clock"}}
	req := httptest.NewRequest(http.MethodPost, "/schedule", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeMux().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /schedule with garbage = %d, want 400", rec.Code)
	}
}

func TestLightsEndpointsRequirePost(t *testing.T) {
	srv, _ := testServer(t)
	mux := srv.ServeMux()
	for _, path := range []string{"/lights/on", "/lights/off", "/lights/stop", "/schedule"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("GET %s = %d, want 405", path, rec.Code)
		}
	}
}

func TestRunsListEmpty(t *testing.T) {
	srv, _ := testServer(t)
	rec := httptest.NewRecorder()
	srv.ServeMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /runs = %d", rec.Code)
	}
}

func TestRegionsChart(t *testing.T) {
	srv, _ := testServer(t)

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 128, G: 64, B: 32, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(srv.imageDir, "sunrise.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	rec := httptest.NewRecorder()
	srv.ServeMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/regions", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /debug/regions = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "echarts") {
		t.Error("regions page does not embed a chart")
	}
}

func TestRegionsChartRejectsPathTraversal(t *testing.T) {
	srv, _ := testServer(t)
	rec := httptest.NewRecorder()
	srv.ServeMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/regions?image=../../etc/passwd", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("traversal attempt = %d, want 400", rec.Code)
	}
}

func TestRegionsChartMissingImage(t *testing.T) {
	srv, _ := testServer(t)
	rec := httptest.NewRecorder()
	srv.ServeMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/regions?image=nope.jpg", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing image = %d, want 404", rec.Code)
	}
}
