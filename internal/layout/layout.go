// Package layout models the physical arrangement of the LED strip: the
// per-LED 2D coordinates, their normalization into the unit square, and a
// k-d tree index answering nearest-LED queries for arbitrary points.
//
// The strip is wound irregularly around a frame, so LED index order says
// nothing about spatial position; the coordinates come from a hand-measured
// CSV table.
package layout

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// ErrInvalidInput is returned for malformed, empty or non-finite position
// data. Always fatal to the current operation, never retried.
var ErrInvalidInput = errors.New("invalid position input")

// Position is one LED's 2D coordinate. After Normalize, both axes are in
// [0, 1].
type Position struct {
	X, Y float64
}

// Layout is an ordered table of LED positions. The slice index is NOT the
// LED address: IDs carries the physical strip index for each row, since the
// strip winds through the frame in an arbitrary order.
type Layout struct {
	IDs       []int
	Positions []Position
}

// Len reports the number of LEDs in the layout.
func (l *Layout) Len() int { return len(l.Positions) }

// ParseCSV reads a layout from CSV with an ID,X,Y header row, one record
// per LED. Malformed or empty input fails with ErrInvalidInput.
func ParseCSV(r io.Reader) (*Layout, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: no position records", ErrInvalidInput)
	}

	// Locate the ID, X and Y columns from the header row.
	col := map[string]int{}
	for i, name := range records[0] {
		col[name] = i
	}
	for _, name := range []string{"ID", "X", "Y"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: missing %q column", ErrInvalidInput, name)
		}
	}

	l := &Layout{}
	for _, rec := range records[1:] {
		id, err := strconv.Atoi(rec[col["ID"]])
		if err != nil {
			return nil, fmt.Errorf("%w: bad ID %q", ErrInvalidInput, rec[col["ID"]])
		}
		x, err := strconv.ParseFloat(rec[col["X"]], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad X %q", ErrInvalidInput, rec[col["X"]])
		}
		y, err := strconv.ParseFloat(rec[col["Y"]], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad Y %q", ErrInvalidInput, rec[col["Y"]])
		}
		l.IDs = append(l.IDs, id)
		l.Positions = append(l.Positions, Position{X: x, Y: y})
	}
	if err := validate(l.Positions); err != nil {
		return nil, err
	}
	return l, nil
}

// LoadCSV reads a layout from the CSV file at path.
func LoadCSV(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open layout file: %w", err)
	}
	defer f.Close()
	return ParseCSV(f)
}

// Normalize scales each axis independently into [0, 1] by dividing by the
// axis maximum, in place. An axis whose maximum is zero is left untouched
// (every coordinate on it is already zero).
func (l *Layout) Normalize() error {
	if err := validate(l.Positions); err != nil {
		return err
	}
	var maxX, maxY float64
	for _, p := range l.Positions {
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	for i := range l.Positions {
		if maxX > 0 {
			l.Positions[i].X /= maxX
		}
		if maxY > 0 {
			l.Positions[i].Y /= maxY
		}
	}
	return nil
}

func validate(positions []Position) error {
	if len(positions) == 0 {
		return fmt.Errorf("%w: empty position set", ErrInvalidInput)
	}
	for i, p := range positions {
		if !isFinite(p.X) || !isFinite(p.Y) {
			return fmt.Errorf("%w: non-finite coordinate at index %d", ErrInvalidInput, i)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
