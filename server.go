package main

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"image"
	"log"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/glowline/wakelight/internal/layout"
	"github.com/glowline/wakelight/internal/mapdb"
	"github.com/glowline/wakelight/internal/mapper"
	"github.com/glowline/wakelight/internal/security"
	"github.com/glowline/wakelight/internal/wake"
)

type Server struct {
	runner   *wake.Runner
	sched    *Schedule
	db       *mapdb.DB
	mapper   *mapper.Mapper
	layout   *layout.Layout
	imageDir string
	runtime  time.Duration
}

func NewServer(runner *wake.Runner, sched *Schedule, db *mapdb.DB, m *mapper.Mapper, lay *layout.Layout, imageDir string, runtime time.Duration) *Server {
	return &Server{
		runner:   runner,
		sched:    sched,
		db:       db,
		mapper:   m,
		layout:   lay,
		imageDir: imageDir,
		runtime:  runtime,
	}
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.homeHandler)
	mux.HandleFunc("/schedule", s.scheduleHandler)
	mux.HandleFunc("/lights/on", s.lightsOnHandler)
	mux.HandleFunc("/lights/off", s.lightsOffHandler)
	mux.HandleFunc("/lights/stop", s.lightsStopHandler)
	mux.HandleFunc("/runs", s.listRuns)
	mux.HandleFunc("/debug/regions", s.regionsChartHandler)
	return mux
}

var homeTemplate = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html>
<head><title>Wake Light</title></head>
<body>
<h1>Wake Light</h1>
<form action="/schedule" method="post">
  <label>Alarm time: <input type="time" name="time" value="{{.Alarm}}"></label>
  <button type="submit">Set</button>
</form>
<form action="/lights/on" method="post"><button type="submit">Lights on</button></form>
<form action="/lights/off" method="post"><button type="submit">Lights off</button></form>
<form action="/lights/stop" method="post"><button type="submit">Stop</button></form>
<p><a href="/runs">Recent runs</a> | <a href="/debug/regions">LED regions</a></p>
</body>
</html>
`))

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	var buf bytes.Buffer
	if err := homeTemplate.Execute(&buf, struct{ Alarm string }{Alarm: s.sched.At()}); err != nil {
		http.Error(w, fmt.Sprintf("Failed to render page: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) scheduleHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.sched.Set(r.FormValue("time")); err != nil {
		http.Error(w, fmt.Sprintf("Invalid alarm time: %v", err), http.StatusBadRequest)
		return
	}
	log.Printf("[Server] alarm set to %q", s.sched.At())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// startSequence runs fn on its own goroutine; a strip already mid-sequence
// is reported to the caller instead of queued.
func (s *Server) startSequence(w http.ResponseWriter, name string, fn func(time.Duration) error) {
	go func() {
		if err := fn(s.runtime); err != nil {
			if errors.Is(err, wake.ErrBusy) {
				log.Printf("[Server] %s rejected: %v", name, err)
				return
			}
			log.Printf("[Server] %s failed: %v", name, err)
		}
	}()
	fmt.Fprintf(w, "%s started\n", name)
}

func (s *Server) lightsOnHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.startSequence(w, "wake-up", s.runner.On)
}

func (s *Server) lightsOffHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.startSequence(w, "wind-down", s.runner.Off)
}

func (s *Server) lightsStopHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.runner.Stop()
	w.Write([]byte("stop requested\n"))
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	runs, err := s.db.RecentRuns(50)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to retrieve runs: %v", err), http.StatusInternalServerError)
		return
	}
	for _, run := range runs {
		fmt.Fprintln(w, run.String())
	}
}

// regionsChartHandler renders the LED layout as a scatter chart colored by
// how many image pixels each LED's region claimed. A debugging-only endpoint
// (no auth) to spot LEDs that own suspiciously large or empty regions.
// Query params:
//   - image (optional; default sunrise.jpg) file name under the image dir
func (s *Server) regionsChartHandler(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("image")
	if name == "" {
		name = "sunrise.jpg"
	}
	// The image name comes from the query string; keep it inside the
	// configured directory.
	if err := security.ValidateImageName(name, s.imageDir); err != nil {
		http.Error(w, fmt.Sprintf("Invalid image name: %v", err), http.StatusBadRequest)
		return
	}

	f, err := os.Open(filepath.Join(s.imageDir, name))
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to open image: %v", err), http.StatusNotFound)
		return
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to decode image: %v", err), http.StatusBadRequest)
		return
	}

	res, err := s.mapper.MapImage(img)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to map image: %v", err), http.StatusInternalServerError)
		return
	}

	// The layout holds raw measured coordinates; scale onto the chart's unit
	// axes the same way the mapper normalizes them.
	var maxX, maxY float64
	for _, pos := range s.layout.Positions {
		maxX = math.Max(maxX, pos.X)
		maxY = math.Max(maxY, pos.Y)
	}
	if maxX == 0 {
		maxX = 1
	}
	if maxY == 0 {
		maxY = 1
	}

	data := make([]opts.ScatterData, 0, len(s.layout.Positions))
	maxCount := 1
	for i, pos := range s.layout.Positions {
		count := res.Counts[i]
		if count > maxCount {
			maxCount = count
		}
		data = append(data, opts.ScatterData{Value: []interface{}{pos.X / maxX, pos.Y / maxY, count}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "LED Regions", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "LED Regions", Subtitle: fmt.Sprintf("image=%s leds=%d", name, len(data))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: 1, Name: "X"}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1, Name: "Y"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxCount),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}},
		}),
	)
	scatter.AddSeries("leds", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		http.Error(w, fmt.Sprintf("Failed to render chart: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
