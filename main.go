// Command wakelight drives an LED strip as a wake-up light: it maps weather
// photos onto the physical LED layout, reveals them with dithered fades on a
// schedule, and serves a small web UI for the alarm.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/glowline/wakelight/internal/anim"
	"github.com/glowline/wakelight/internal/config"
	"github.com/glowline/wakelight/internal/layout"
	"github.com/glowline/wakelight/internal/mapdb"
	"github.com/glowline/wakelight/internal/mapper"
	"github.com/glowline/wakelight/internal/strip"
	"github.com/glowline/wakelight/internal/version"
	"github.com/glowline/wakelight/internal/wake"
	"github.com/glowline/wakelight/internal/weather"
)

var (
	devMode    = flag.Bool("dev", false, "Run against an in-memory strip instead of serial hardware")
	listen     = flag.String("listen", "", "Listen address (overrides config)")
	configPath = flag.String("config", "", "Path to JSON config file")
	selfTest   = flag.Bool("selftest", false, "Run the strip test patterns and exit")
)

func main() {
	flag.Parse()
	log.Printf("[Main] wakelight %s", version.String())

	cfg := &config.Config{}
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	addr := cfg.GetListenAddr()
	if *listen != "" {
		addr = *listen
	}

	var st strip.Strip
	if *devMode || cfg.GetDevice() == "" {
		log.Printf("[Main] no serial device configured, using in-memory strip")
		st = strip.NewMockStrip(cfg.GetLedCount())
	} else {
		serialStrip, err := strip.OpenSerialStrip(cfg.GetDevice(), cfg.GetLedCount(), cfg.GetBaudRate())
		if err != nil {
			log.Fatalf("failed to open strip: %v", err)
		}
		defer serialStrip.Close()
		st = serialStrip
	}

	if *selfTest {
		if err := runSelfTest(st); err != nil {
			log.Fatalf("self test failed: %v", err)
		}
		log.Printf("[Main] self test complete")
		return
	}

	lay, err := layout.LoadCSV(cfg.GetLayoutPath())
	if err != nil {
		log.Fatalf("failed to load LED layout: %v", err)
	}
	if len(lay.IDs) != st.NumPixels() {
		log.Fatalf("layout has %d LEDs but strip has %d", len(lay.IDs), st.NumPixels())
	}

	db, err := mapdb.Open(cfg.GetDBPath())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	m, err := mapper.New(lay, db)
	if err != nil {
		log.Fatalf("failed to build mapper: %v", err)
	}

	var source wake.WeatherSource
	if key := cfg.GetAPIKey(); key != "" {
		source = &weather.Client{APIKey: key}
	} else {
		log.Printf("[Main] no weather API key configured, every morning is a sunrise")
	}

	runner := &wake.Runner{
		Strip:    st,
		Mapper:   m,
		DB:       db,
		Weather:  source,
		ImageDir: cfg.GetImageDir(),
		Location: cfg.GetLocation(),
		Gamma:    cfg.GetGamma(),
	}

	sched, err := LoadSchedule(cfg.GetSchedulePath())
	if err != nil {
		log.Fatalf("failed to load schedule: %v", err)
	}
	if at := sched.At(); at != "" {
		log.Printf("[Main] alarm set for %s", at)
	}

	runtime := cfg.GetRuntime()
	hold := cfg.GetHoldTime()

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// alarm goroutine: runs the full morning against the wall clock
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx, func() { morning(ctx, runner, runtime, hold) })
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// mount the admin debugging routes (accessible only in dev mode or
		// over Tailscale)
		if err := db.AttachDebugRoutes(mux); err != nil {
			log.Printf("failed to attach debug routes: %v", err)
		}

		webMux := NewServer(runner, sched, db, m, lay, cfg.GetImageDir(), runtime).ServeMux()
		mux.Handle("/", webMux)

		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("got request %q", r.URL.Path)
			mux.ServeHTTP(w, r)
		})

		server := &http.Server{
			Addr:    addr,
			Handler: h,
		}

		go func() {
			log.Printf("[Main] listening on %s", addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	runner.Stop()
	log.Printf("Graceful shutdown complete")
}

// runSelfTest cycles the demo patterns so a freshly wired strip can be
// checked for dead pixels and ordering before hanging it on the wall.
func runSelfTest(st strip.Strip) error {
	n := st.NumPixels()
	player := &anim.Player{Strip: st}
	patterns := []struct {
		name   string
		a      anim.Animation
		budget time.Duration
	}{
		{"color wipe", anim.NewColorWipe(n, strip.MustColor(255, 0, 0)), 3 * time.Second},
		{"theatre chase", anim.NewTheatreChase(n, strip.MustColor(127, 127, 127), 30), 3 * time.Second},
		{"rainbow", anim.NewRainbow(n, 1), 5 * time.Second},
		{"alternate colors", anim.NewAlternateColors(n, nil, 30), 3 * time.Second},
	}
	for _, p := range patterns {
		log.Printf("[Main] self test: %s", p.name)
		if err := player.Play(p.a, p.budget); err != nil {
			return err
		}
	}
	for i := 0; i < n; i++ {
		if err := st.SetPixel(i, strip.Black); err != nil {
			return err
		}
	}
	return st.Show()
}

// morning runs the whole alarm sequence: reveal the display, hold it while
// the occupant wakes, then wind back down to dark. Shutdown cancels the hold
// and skips the wind-down.
func morning(ctx context.Context, runner *wake.Runner, runtime, hold time.Duration) {
	if err := runner.On(runtime); err != nil {
		log.Printf("[Main] morning wake-up failed: %v", err)
		return
	}
	select {
	case <-time.After(hold):
	case <-ctx.Done():
		return
	}
	if err := runner.Off(runtime); err != nil {
		log.Printf("[Main] morning wind-down failed: %v", err)
	}
}
