package handler

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"time"

	"github.com/Alia5/flightstick/apitypes"
	"github.com/Alia5/flightstick/engine"
	"github.com/Alia5/flightstick/internal/server/api"
	"github.com/Alia5/flightstick/tracker"
)

// DefaultStreamInterval is used when HUDStream gets no positive interval.
const DefaultStreamInterval = 50 * time.Millisecond

// HUDSource provides telemetry snapshots.
type HUDSource interface {
	HUD() engine.HUD
}

// HUDStream returns a stream handler pushing one telemetry JSON line per
// interval until the client disconnects or the server shuts down.
func HUDStream(src HUDSource, interval time.Duration) api.StreamHandlerFunc {
	if interval <= 0 {
		interval = DefaultStreamInterval
	}
	return func(conn net.Conn, req *api.Request, logger *slog.Logger) error {
		ctx, cancel := context.WithCancel(req.Ctx)
		defer cancel()
		go func() {
			// Clients never send on this stream; any read result means gone.
			_, _ = io.Copy(io.Discard, conn)
			cancel()
		}()

		enc := json.NewEncoder(conn)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if err := enc.Encode(ToAPIHUD(src.HUD())); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("write telemetry: %w", err)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	}
}

// TrackerStream returns a stream handler reading raw head samples (two
// little-endian float64, yaw then pitch) and feeding them through proc into
// sink.
func TrackerStream(proc *tracker.Processor, sink tracker.Sink) api.StreamHandlerFunc {
	return func(conn net.Conn, req *api.Request, logger *slog.Logger) error {
		stop := context.AfterFunc(req.Ctx, func() {
			_ = conn.SetReadDeadline(time.Now())
		})
		defer stop()

		buf := make([]byte, apitypes.TrackerSampleSize)
		for {
			if _, err := io.ReadFull(conn, buf); err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || req.Ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("read tracker sample: %w", err)
			}
			x := math.Float64frombits(binary.LittleEndian.Uint64(buf[0:8]))
			y := math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16]))
			if !finite(x) || !finite(y) {
				logger.Warn("dropping non-finite tracker sample", "x", x, "y", y)
				continue
			}
			yaw, pitch := proc.Feed(x, y)
			sink.UpdateTracker(yaw, pitch)
		}
	}
}
