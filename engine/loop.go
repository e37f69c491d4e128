package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Alia5/flightstick/device"
	"github.com/Alia5/flightstick/physics"
)

// errExitRequested ends the loop without reporting an error.
var errExitRequested = errors.New("exit requested")

// emitErrorLogInterval rate-limits the transient emit warning.
const emitErrorLogInterval = 5 * time.Second

type worker struct {
	state   *sharedState
	capture device.Capture
	output  device.Output
	cursor  *cursor
	frames  FrameSink
	logger  *slog.Logger

	emitErrors  int
	lastEmitLog time.Time
}

// loop runs cycles until ctx is cancelled, an exit is requested or the
// capture device fails. Only the last case returns an error.
func (w *worker) loop(ctx context.Context, period time.Duration) error {
	for ctx.Err() == nil {
		if err := w.cycle(); err != nil {
			if errors.Is(err, errExitRequested) {
				w.logger.Info("Exit requested")
				return nil
			}
			return err
		}
		time.Sleep(period)
	}
	return nil
}

// cycle runs one iteration: requests, input drain, mapping, emit, telemetry.
func (w *worker) cycle() error {
	recenter, exit := w.state.consumeRequests()
	if exit {
		return errExitRequested
	}
	if recenter {
		w.cursor.recenter()
		w.logger.Debug("Recentered")
	}

	events, err := w.capture.ReadEvents()
	for _, ev := range events {
		w.cursor.apply(ev)
	}
	if err != nil {
		return err
	}

	cfg, yaw, pitch := w.state.snapshot()
	frame, res := w.compute(cfg, yaw, pitch)

	if err := w.output.Emit(frame); err != nil {
		w.emitFailed(err)
	}
	if w.frames != nil {
		w.frames.LogFrame(frame)
	}

	w.state.tryPublish(Telemetry{
		X:          res.X,
		Y:          res.Y,
		Throttle:   w.cursor.throttle,
		Rudder:     w.cursor.rudder,
		Snapped:    res.Snapped,
		InDeadzone: res.InDeadzone,
	})
	return nil
}

func (w *worker) compute(cfg physics.Config, yaw, pitch float64) (device.Frame, physics.Result) {
	dx, dy := w.cursor.offset()
	res := physics.Map(dx, dy, cfg)

	var f device.Frame
	f.Axes[device.AxisX] = res.X
	f.Axes[device.AxisY] = res.Y
	f.Axes[device.AxisThrottle] = w.cursor.throttle
	f.Axes[device.AxisRudder] = w.cursor.rudder
	f.Axes[device.AxisHeadYaw] = yaw
	f.Axes[device.AxisHeadPitch] = pitch
	f.Buttons = w.cursor.buttons
	return f, res
}

// emitFailed logs dropped frames at most once per emitErrorLogInterval.
func (w *worker) emitFailed(err error) {
	w.emitErrors++
	now := time.Now()
	if now.Sub(w.lastEmitLog) < emitErrorLogInterval {
		return
	}
	w.logger.Warn("Dropped frames", "count", w.emitErrors, "error", err)
	w.emitErrors = 0
	w.lastEmitLog = now
}
