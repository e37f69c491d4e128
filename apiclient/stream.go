package apiclient

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"sync"
	"time"

	"github.com/Alia5/flightstick/apitypes"
)

var errStreamClosed = errors.New("stream closed")

// Stream is a long-lived connection to a stream route. The request line has
// already been sent; reads and writes carry the route's own protocol.
type Stream struct {
	conn net.Conn

	mu     sync.Mutex
	closed bool
}

// OpenStream connects to a stream route. Streams are not available on mock
// transports.
func (c *Client) OpenStream(ctx context.Context, path string) (*Stream, error) {
	conn, err := c.transport.open(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return &Stream{conn: conn}, nil
}

func (s *Stream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Stream) Read(p []byte) (int, error) {
	if s.isClosed() {
		return 0, errStreamClosed
	}
	return s.conn.Read(p)
}

func (s *Stream) Write(p []byte) (int, error) {
	if s.isClosed() {
		return 0, errStreamClosed
	}
	return s.conn.Write(p)
}

func (s *Stream) SetReadDeadline(t time.Time) error  { return s.conn.SetReadDeadline(t) }
func (s *Stream) SetWriteDeadline(t time.Time) error { return s.conn.SetWriteDeadline(t) }

// Close closes the connection. Further reads and writes fail.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.conn.Close()
}

// HUDStream receives telemetry snapshots pushed by the server.
type HUDStream struct {
	*Stream
	scanner *bufio.Scanner
}

// OpenHUDStream subscribes to telemetry updates.
func (c *Client) OpenHUDStream(ctx context.Context) (*HUDStream, error) {
	s, err := c.OpenStream(ctx, PathHUDStream)
	if err != nil {
		return nil, err
	}
	return &HUDStream{Stream: s, scanner: bufio.NewScanner(s)}, nil
}

// Next blocks for the next snapshot. A problem+json line from the server is
// returned as *apitypes.ApiError.
func (h *HUDStream) Next() (*apitypes.HUD, error) {
	if !h.scanner.Scan() {
		if err := h.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, errStreamClosed
	}
	line := h.scanner.Bytes()
	var problem apitypes.ApiError
	if err := json.Unmarshal(line, &problem); err == nil && problem.Status != 0 {
		return nil, &problem
	}
	var hud apitypes.HUD
	if err := json.Unmarshal(line, &hud); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &hud, nil
}

// StartReading calls onHUD for every snapshot in a background goroutine
// until the stream ends. onError, if set, receives the terminating error
// unless the stream was closed locally.
func (h *HUDStream) StartReading(onHUD func(*apitypes.HUD), onError func(error)) {
	go func() {
		for {
			hud, err := h.Next()
			if err != nil {
				if onError != nil && !h.isClosed() {
					onError(err)
				}
				return
			}
			onHUD(hud)
		}
	}()
}

// TrackerStream sends raw head samples to the server-side filter.
type TrackerStream struct {
	*Stream
	buf [apitypes.TrackerSampleSize]byte
}

// OpenTrackerStream opens a sample stream into the server's tracker processor.
func (c *Client) OpenTrackerStream(ctx context.Context) (*TrackerStream, error) {
	s, err := c.OpenStream(ctx, PathTrackerStream)
	if err != nil {
		return nil, err
	}
	return &TrackerStream{Stream: s}, nil
}

// Send writes one raw sample. It is not safe for concurrent use.
func (t *TrackerStream) Send(x, y float64) error {
	binary.LittleEndian.PutUint64(t.buf[0:8], math.Float64bits(x))
	binary.LittleEndian.PutUint64(t.buf[8:16], math.Float64bits(y))
	_, err := t.Write(t.buf[:])
	return err
}
