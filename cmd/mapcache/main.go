// Command mapcache warms the sqlite mapping cache: it maps every image in a
// directory onto the LED layout and stores the results, so the first alarm
// on a freshly deployed device does not pay the mapping cost at 6am.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glowline/wakelight/internal/layout"
	"github.com/glowline/wakelight/internal/mapdb"
	"github.com/glowline/wakelight/internal/mapper"
)

var (
	layoutPath = flag.String("layout", "layout.csv", "LED layout CSV")
	dbPath     = flag.String("db", "wakelight.db", "sqlite database path")
	imageDir   = flag.String("images", "images", "Directory of display images")
)

func main() {
	flag.Parse()

	lay, err := layout.LoadCSV(*layoutPath)
	if err != nil {
		log.Fatalf("failed to load layout: %v", err)
	}

	db, err := mapdb.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	m, err := mapper.New(lay, db)
	if err != nil {
		log.Fatalf("failed to build mapper: %v", err)
	}

	entries, err := os.ReadDir(*imageDir)
	if err != nil {
		log.Fatalf("failed to read image directory: %v", err)
	}

	warmed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
		default:
			continue
		}
		path := filepath.Join(*imageDir, entry.Name())
		start := time.Now()
		if _, err := m.MapFile(path); err != nil {
			log.Printf("failed to map %s: %v", entry.Name(), err)
			continue
		}
		log.Printf("mapped %s in %s", entry.Name(), time.Since(start).Round(time.Millisecond))
		warmed++
	}

	count, err := db.MappingCount()
	if err != nil {
		log.Fatalf("failed to count mappings: %v", err)
	}
	log.Printf("warmed %d images; cache now holds %d mappings", warmed, count)
}
