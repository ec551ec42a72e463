package device

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

// DefaultSerialBaud matches the board sketches' Serial.begin rate.
const DefaultSerialBaud = 9600

// SerialSource reads telemetry from a USB-attached board that prints one JSON
// object per line. Lines that are not JSON objects (boot banners, debug prints)
// are skipped.
type SerialSource struct {
	port io.ReadCloser

	mu     sync.Mutex
	latest map[string]any
	fresh  bool
	err    error
	closed bool
}

// OpenSerial opens portPath 8N1 at baud (DefaultSerialBaud if 0) and starts reading.
func OpenSerial(portPath string, baud int) (*SerialSource, error) {
	if baud == 0 {
		baud = DefaultSerialBaud
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portPath, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portPath, err)
	}

	// Toggling DTR resets most Arduino-style boards so the stream starts clean.
	if err := port.SetDTR(true); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set DTR: %w", err)
	}

	log.Info().Str("port", portPath).Int("baud", baud).Msg("Serial telemetry port opened")

	return NewLineSource(port), nil
}

// NewLineSource starts reading newline-delimited JSON from r.
func NewLineSource(r io.ReadCloser) *SerialSource {
	s := &SerialSource{port: r}
	go s.readLoop()
	return s
}

func (s *SerialSource) readLoop() {
	scanner := bufio.NewScanner(s.port)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var raw map[string]any
		if err := json.Unmarshal(line, &raw); err != nil {
			log.Debug().Err(err).Msg("Skipping malformed serial line")
			continue
		}
		s.mu.Lock()
		s.latest = raw
		s.fresh = true
		s.mu.Unlock()
	}

	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	s.mu.Lock()
	if !s.closed {
		log.Warn().Err(err).Msg("Serial telemetry stream ended")
	}
	s.err = err
	s.mu.Unlock()
}

// FetchReading returns the most recent JSON object read from the port. Each
// line is returned once; until the board prints another, ErrNoNewReading.
func (s *SerialSource) FetchReading(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, fmt.Errorf("%w: serial: %v", ErrUnreachable, s.err)
	}
	if s.latest == nil {
		return nil, fmt.Errorf("%w: no serial reading yet", ErrNotConnected)
	}
	if !s.fresh {
		return nil, ErrNoNewReading
	}
	s.fresh = false

	out := make(map[string]any, len(s.latest))
	for k, v := range s.latest {
		out[k] = v
	}
	return out, nil
}

// Close closes the port and stops the reader.
func (s *SerialSource) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.port.Close()
}
