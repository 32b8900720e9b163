package strip

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"
)

// DefaultBaudRate matches the firmware on the strip controller.
const DefaultBaudRate = 115200

// Porter is the minimal serial port interface SerialStrip needs. It is
// satisfied by go.bug.st/serial.Port and by MockPort in tests.
type Porter interface {
	io.ReadWriter
	io.Closer
}

// SerialStrip drives an LED controller over a serial line. The controller
// speaks a small line protocol:
//
//	P <index> <rrggbbww hex>   stage one pixel
//	S                          show (latch staged pixels to the LEDs)
//	X                          all off
//
// Writes are buffered and flushed on Show so a full frame goes out as one
// serial burst rather than per-pixel writes.
type SerialStrip struct {
	port   Porter
	w      *bufio.Writer
	pixels int

	// commandMu serializes protocol writes. This guards the wire format, not
	// frame ownership; frame-level serialization is the caller's job.
	commandMu sync.Mutex
}

// OpenSerialStrip opens the serial device at path and returns a strip with
// the given pixel count. A non-positive baud falls back to DefaultBaudRate.
func OpenSerialStrip(path string, pixels, baud int) (*SerialStrip, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDevice, path, err)
	}
	return NewSerialStrip(port, pixels), nil
}

// NewSerialStrip wraps an already-open port. Used directly by tests with a
// MockPort.
func NewSerialStrip(port Porter, pixels int) *SerialStrip {
	return &SerialStrip{
		port:   port,
		w:      bufio.NewWriter(port),
		pixels: pixels,
	}
}

func (s *SerialStrip) NumPixels() int { return s.pixels }

func (s *SerialStrip) SetPixel(i int, c Color) error {
	if err := checkIndex(i, s.pixels); err != nil {
		return err
	}
	s.commandMu.Lock()
	defer s.commandMu.Unlock()
	if _, err := fmt.Fprintf(s.w, "P %d %08x\n", i, uint32(c)); err != nil {
		return fmt.Errorf("%w: set pixel %d: %v", ErrDevice, i, err)
	}
	return nil
}

func (s *SerialStrip) Show() error {
	s.commandMu.Lock()
	defer s.commandMu.Unlock()
	if _, err := s.w.WriteString("S\n"); err != nil {
		return fmt.Errorf("%w: show: %v", ErrDevice, err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("%w: flush: %v", ErrDevice, err)
	}
	return nil
}

// Close blanks the strip and closes the port.
func (s *SerialStrip) Close() error {
	s.commandMu.Lock()
	s.w.WriteString("X\n")
	s.w.Flush()
	s.commandMu.Unlock()
	if err := s.port.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", ErrDevice, err)
	}
	return nil
}

var _ Strip = (*SerialStrip)(nil)
