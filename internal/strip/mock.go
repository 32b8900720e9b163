package strip

import "time"

// MockStrip implements Strip in memory for tests and dev mode. It records
// every flushed frame so tests can assert on the exact sequence of rendered
// states.
type MockStrip struct {
	staged    []Color
	Frames    [][]Color   // snapshot appended on every Show
	ShowTimes []time.Time // wall-clock instant of every Show

	SetPixelError error
	ShowError     error
	ShowDelay     time.Duration // simulated render latency
	ShowCount     int
}

// NewMockStrip returns a MockStrip with n pixels, all black.
func NewMockStrip(n int) *MockStrip {
	return &MockStrip{staged: make([]Color, n)}
}

func (m *MockStrip) NumPixels() int { return len(m.staged) }

func (m *MockStrip) SetPixel(i int, c Color) error {
	if m.SetPixelError != nil {
		return m.SetPixelError
	}
	if err := checkIndex(i, len(m.staged)); err != nil {
		return err
	}
	m.staged[i] = c
	return nil
}

func (m *MockStrip) Show() error {
	if m.ShowError != nil {
		return m.ShowError
	}
	if m.ShowDelay > 0 {
		time.Sleep(m.ShowDelay)
	}
	m.ShowCount++
	snap := make([]Color, len(m.staged))
	copy(snap, m.staged)
	m.Frames = append(m.Frames, snap)
	m.ShowTimes = append(m.ShowTimes, time.Now())
	return nil
}

// Current returns the last flushed frame, or all black if Show has never
// been called.
func (m *MockStrip) Current() []Color {
	if len(m.Frames) == 0 {
		return make([]Color, len(m.staged))
	}
	return m.Frames[len(m.Frames)-1]
}

var _ Strip = (*MockStrip)(nil)

// MockPort implements Porter for SerialStrip tests.
type MockPort struct {
	Written    []byte
	WriteError error
	Closed     bool
}

func (p *MockPort) Read(b []byte) (int, error) { return 0, nil }

func (p *MockPort) Write(b []byte) (int, error) {
	if p.WriteError != nil {
		return 0, p.WriteError
	}
	p.Written = append(p.Written, b...)
	return len(b), nil
}

func (p *MockPort) Close() error {
	p.Closed = true
	return nil
}

var _ Porter = (*MockPort)(nil)
