package layout

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseCSV(t *testing.T) {
	input := "ID,X,Y\n0,0.0,0.0\n1,10.0,0.0\n2,0.0,20.0\n3,10.0,20.0\n"
	l, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	want := &Layout{
		IDs: []int{0, 1, 2, 3},
		Positions: []Position{
			{0, 0}, {10, 0}, {0, 20}, {10, 20},
		},
	}
	if diff := cmp.Diff(want, l); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCSVColumnOrder(t *testing.T) {
	// Header lookup must survive reordered columns.
	input := "X,ID,Y\n3.5,7,1.5\n"
	l, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if l.IDs[0] != 7 || l.Positions[0] != (Position{3.5, 1.5}) {
		t.Errorf("got IDs=%v positions=%v", l.IDs, l.Positions)
	}
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"header only", "ID,X,Y\n"},
		{"missing column", "ID,X\n0,1\n"},
		{"bad id", "ID,X,Y\nseven,1,2\n"},
		{"bad coordinate", "ID,X,Y\n0,one,2\n"},
		{"non-finite", "ID,X,Y\n0,NaN,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCSV(strings.NewReader(tt.input)); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	l := &Layout{
		IDs:       []int{0, 1, 2},
		Positions: []Position{{5, 100}, {10, 50}, {2.5, 0}},
	}
	if err := l.Normalize(); err != nil {
		t.Fatal(err)
	}
	want := []Position{{0.5, 1}, {1, 0.5}, {0.25, 0}}
	if diff := cmp.Diff(want, l.Positions); diff != "" {
		t.Errorf("normalized positions mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeZeroAxis(t *testing.T) {
	l := &Layout{IDs: []int{0, 1}, Positions: []Position{{0, 1}, {0, 2}}}
	if err := l.Normalize(); err != nil {
		t.Fatal(err)
	}
	for i, p := range l.Positions {
		if p.X != 0 {
			t.Errorf("position %d X = %v, want 0", i, p.X)
		}
	}
	if l.Positions[1].Y != 1 {
		t.Errorf("Y not normalized: %v", l.Positions)
	}
}

func TestNewIndexInvalidInput(t *testing.T) {
	if _, err := NewIndex(nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty error = %v, want ErrInvalidInput", err)
	}
	if _, err := NewIndex([]Position{{math.NaN(), 0}}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("NaN error = %v, want ErrInvalidInput", err)
	}
	if _, err := NewIndex([]Position{{math.Inf(1), 0}}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Inf error = %v, want ErrInvalidInput", err)
	}
}

func TestNearestUnitSquareCorners(t *testing.T) {
	corners := []Position{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	ix, err := NewIndex(corners)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		x, y float64
		want int
	}{
		{0.1, 0.1, 0},
		{0.9, 0.1, 1},
		{0.1, 0.9, 2},
		{0.9, 0.9, 3},
		{0.0, 0.0, 0},
		{1.0, 1.0, 3},
		{0.45, 0.2, 0},
	}
	for _, tt := range tests {
		if got := ix.Nearest(tt.x, tt.y); got != tt.want {
			t.Errorf("Nearest(%v,%v) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestNearestAlwaysInRange(t *testing.T) {
	positions := []Position{
		{0.1, 0.3}, {0.9, 0.2}, {0.4, 0.8}, {0.6, 0.6}, {0.2, 0.9},
	}
	ix, err := NewIndex(positions)
	if err != nil {
		t.Fatal(err)
	}
	queries := []Position{
		{0, 0}, {1, 1}, {-5, -5}, {100, 100}, {0.5, 0.5}, {0.333, 0.667},
	}
	for _, q := range queries {
		got := ix.Nearest(q.X, q.Y)
		if got < 0 || got >= len(positions) {
			t.Errorf("Nearest(%v,%v) = %d, out of range [0,%d)", q.X, q.Y, got, len(positions))
		}
	}
}

func TestNearestDeterministic(t *testing.T) {
	positions := []Position{{0.2, 0.2}, {0.8, 0.8}, {0.5, 0.1}}
	ix1, _ := NewIndex(positions)
	ix2, _ := NewIndex(positions)
	for x := 0.0; x <= 1.0; x += 0.1 {
		for y := 0.0; y <= 1.0; y += 0.1 {
			if ix1.Nearest(x, y) != ix2.Nearest(x, y) {
				t.Fatalf("Nearest(%v,%v) differs between identical indexes", x, y)
			}
		}
	}
}

func TestNearestMatchesBruteForce(t *testing.T) {
	positions := []Position{
		{0.05, 0.95}, {0.5, 0.5}, {0.95, 0.05}, {0.3, 0.7}, {0.7, 0.3},
		{0.15, 0.15}, {0.85, 0.85}, {0.5, 0.05},
	}
	ix, err := NewIndex(positions)
	if err != nil {
		t.Fatal(err)
	}
	brute := func(x, y float64) int {
		best, bestDist := -1, math.Inf(1)
		for i, p := range positions {
			d := (p.X-x)*(p.X-x) + (p.Y-y)*(p.Y-y)
			if d < bestDist {
				best, bestDist = i, d
			}
		}
		return best
	}
	for x := 0.01; x < 1.0; x += 0.13 {
		for y := 0.01; y < 1.0; y += 0.13 {
			got, want := ix.Nearest(x, y), brute(x, y)
			if got != want {
				t.Errorf("Nearest(%v,%v) = %d, brute force = %d", x, y, got, want)
			}
		}
	}
}
