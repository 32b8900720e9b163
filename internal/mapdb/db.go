// Package mapdb persists computed image mappings and wake-run history in
// sqlite. Clustering a photo takes real time on the Pi, so mappings are
// cached across restarts; the run log exists so "did the lights come on this
// morning" has an answer.
package mapdb

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/glowline/wakelight/internal/mapper"
	"github.com/glowline/wakelight/internal/strip"
)

type DB struct {
	*sql.DB
	path string
}

// Open opens (creating if needed) the wakelight database at path and runs
// any pending migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db := &DB{DB: sqlDB, path: path}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Get implements mapper.Cache. A missing key is a plain miss; a row whose
// blob does not decode is reported as an error so the mapper can log it and
// recompute.
func (db *DB) Get(key string) ([]strip.Color, bool, error) {
	var blob []byte
	err := db.QueryRow(`SELECT colors FROM mappings WHERE key = ?`, key).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read mapping: %w", err)
	}
	colors, err := decodeColors(blob)
	if err != nil {
		return nil, false, fmt.Errorf("corrupt mapping for key %s: %w", key, err)
	}
	return colors, true, nil
}

// Put implements mapper.Cache, replacing any previous entry for key.
func (db *DB) Put(key string, colors []strip.Color) error {
	_, err := db.Exec(
		`INSERT INTO mappings (key, led_count, colors, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET led_count = excluded.led_count,
		                                colors = excluded.colors,
		                                created_at = excluded.created_at`,
		key, len(colors), encodeColors(colors), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("write mapping: %w", err)
	}
	return nil
}

// MappingCount reports how many cached mappings the store holds.
func (db *DB) MappingCount() (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM mappings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count mappings: %w", err)
	}
	return n, nil
}

// encodeColors packs colors as 4 bytes per LED, big endian, preserving the
// white channel.
func encodeColors(colors []strip.Color) []byte {
	blob := make([]byte, 4*len(colors))
	for i, c := range colors {
		binary.BigEndian.PutUint32(blob[4*i:], uint32(c))
	}
	return blob
}

func decodeColors(blob []byte) ([]strip.Color, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 4", len(blob))
	}
	colors := make([]strip.Color, len(blob)/4)
	for i := range colors {
		colors[i] = strip.Color(binary.BigEndian.Uint32(blob[4*i:]))
	}
	return colors, nil
}

var _ mapper.Cache = (*DB)(nil)
