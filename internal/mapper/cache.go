package mapper

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"github.com/glowline/wakelight/internal/strip"
)

// Cache persists computed mappings keyed by image identity. Absence of a key
// is not an error; implementations report corruption through the error
// return and the mapper recovers by recomputing.
type Cache interface {
	// Get returns the cached colors for key, or ok=false on a miss.
	Get(key string) (colors []strip.Color, ok bool, err error)
	// Put stores colors under key, replacing any previous entry.
	Put(key string, colors []strip.Color) error
}

// Key derives the cache key for an image's raw bytes mapped onto a specific
// layout. Content-addressed on both sides: renaming the file keeps its
// entry, while editing the image or moving an LED invalidates one.
func Key(imageData []byte, layoutDigest string) string {
	h := sha256.New()
	h.Write(imageData)
	fmt.Fprintf(h, "|layout=%s", layoutDigest)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// MemoryCache is a process-local Cache for tests and cache-less dev runs.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string][]strip.Color
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]strip.Color)}
}

func (c *MemoryCache) Get(key string) ([]strip.Color, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	colors, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]strip.Color, len(colors))
	copy(out, colors)
	return out, true, nil
}

func (c *MemoryCache) Put(key string, colors []strip.Color) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := make([]strip.Color, len(colors))
	copy(stored, colors)
	c.entries[key] = stored
	return nil
}

var _ Cache = (*MemoryCache)(nil)

func bytesReader(data []byte) io.Reader { return bytes.NewReader(data) }
