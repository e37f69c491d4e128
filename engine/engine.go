// Package engine turns relative pointer motion into virtual joystick frames.
//
// An Engine owns one background worker while running. The worker exclusively
// owns the capture and output devices and runs a fixed-period cycle: consume
// control requests, drain pending input, map the cursor offset through the
// physics mapper, emit one frame and publish telemetry. Every other method is
// safe to call from any goroutine and returns without waiting for a cycle.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Alia5/flightstick/device"
	"github.com/Alia5/flightstick/physics"
)

var (
	// ErrAlreadyRunning is returned by Start while a worker is active.
	ErrAlreadyRunning = errors.New("engine already running")
	// ErrInvalidScreen is returned by Start for non-positive screen sizes.
	ErrInvalidScreen = errors.New("invalid screen size")
	// ErrInvalidConfig is returned by UpdateConfig for unusable values.
	ErrInvalidConfig = physics.ErrInvalidConfig
)

// Defaults for Options.
const (
	DefaultPeriod       = 900 * time.Microsecond
	DefaultThrottleStep = 0.05
	DefaultRudderStep   = 0.20
)

// CaptureOpener opens and exclusively grabs the capture device at path.
type CaptureOpener func(path string) (device.Capture, error)

// OutputFactory creates the virtual output device.
type OutputFactory func() (device.Output, error)

// FrameSink receives every emitted frame.
type FrameSink interface {
	LogFrame(f device.Frame)
}

// Options configures an Engine.
type Options struct {
	OpenCapture  CaptureOpener
	CreateOutput OutputFactory
	// Period is the sleep between cycles.
	Period time.Duration
	// ThrottleStep is the throttle change per wheel detent.
	ThrottleStep float64
	// RudderStep is the rudder change per horizontal wheel detent.
	RudderStep float64
	// Frames, if set, sees every emitted frame.
	Frames FrameSink
}

// HUD is the control-plane view of the engine.
type HUD struct {
	Telemetry
	HeadYaw   float64 `json:"headYaw"`
	HeadPitch float64 `json:"headPitch"`
	Running   bool    `json:"running"`
}

// Engine is the control-plane facade around the worker.
type Engine struct {
	opts   Options
	logger *slog.Logger
	state  *sharedState

	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	device string
	err    error
}

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// New returns a stopped engine with default configuration.
func New(opts Options, logger *slog.Logger) *Engine {
	if opts.Period <= 0 {
		opts.Period = DefaultPeriod
	}
	if opts.ThrottleStep == 0 {
		opts.ThrottleStep = DefaultThrottleStep
	}
	if opts.RudderStep == 0 {
		opts.RudderStep = DefaultRudderStep
	}
	return &Engine{
		opts:   opts,
		logger: logger,
		state:  newSharedState(),
	}
}

// Start opens the capture device at capturePath, creates the output device
// and starts the worker with the cursor at the screen center. It returns once
// both devices are up, or with the startup error, in which case the engine
// stays stopped. Recenter and exit requests made while the engine was stopped
// are discarded; the first cycle starts from the screen center.
func (e *Engine) Start(capturePath string, screenWidth, screenHeight float64) error {
	if !validDimension(screenWidth) || !validDimension(screenHeight) {
		return fmt.Errorf("%w: %vx%v", ErrInvalidScreen, screenWidth, screenHeight)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running.Load() {
		return ErrAlreadyRunning
	}
	if e.opts.OpenCapture == nil || e.opts.CreateOutput == nil {
		return errors.New("engine has no device backends")
	}

	e.state.consumeRequests()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	ready := make(chan error, 1)

	e.running.Store(true)
	go e.run(ctx, capturePath, screenWidth, screenHeight, ready, done)

	if err := <-ready; err != nil {
		cancel()
		<-done
		return err
	}
	e.cancel = cancel
	e.done = done
	e.device = capturePath
	e.err = nil
	return nil
}

// Stop cancels the worker and waits for it to exit. It is a no-op when the
// engine is not running.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// IsRunning reports whether a worker is active.
func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

// Done is closed when the current worker exits. It is already closed when
// the engine is stopped.
func (e *Engine) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done == nil {
		return closedCh
	}
	return e.done
}

// Err returns why the last worker exited on its own: nil after Stop or an
// exit request, a device.ErrCaptureLost error after losing the capture device.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Device returns the capture path of the current or last run.
func (e *Engine) Device() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.device
}

// UpdateConfig validates c and makes it visible to the next cycle.
func (e *Engine) UpdateConfig(c physics.Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	e.state.setConfig(c)
	return nil
}

// Config returns the active configuration.
func (e *Engine) Config() physics.Config {
	return e.state.getConfig()
}

// UpdateTracker sets the head-tracking axes, each expected in [-1, 1].
func (e *Engine) UpdateTracker(yaw, pitch float64) {
	e.state.setHead(yaw, pitch)
}

// Recenter asks the worker to move the cursor to the screen center and zero
// the rudder on its next cycle.
func (e *Engine) Recenter() {
	e.state.requestRecenter()
}

// RequestExit asks the worker to stop on its next cycle.
func (e *Engine) RequestExit() {
	e.state.requestExit()
}

// Telemetry returns the last published telemetry. It may be one frame stale.
func (e *Engine) Telemetry() Telemetry {
	t, _, _ := e.state.read()
	return t
}

// HUD returns telemetry together with the head axes and run state.
func (e *Engine) HUD() HUD {
	t, yaw, pitch := e.state.read()
	return HUD{Telemetry: t, HeadYaw: yaw, HeadPitch: pitch, Running: e.IsRunning()}
}

func (e *Engine) run(ctx context.Context, path string, width, height float64, ready chan<- error, done chan<- struct{}) {
	defer close(done)
	defer e.running.Store(false)

	capture, err := e.opts.OpenCapture(path)
	if err != nil {
		ready <- fmt.Errorf("open capture %s: %w", path, err)
		return
	}
	defer func() {
		if err := capture.Close(); err != nil {
			e.logger.Warn("close capture", "error", err)
		}
	}()

	output, err := e.opts.CreateOutput()
	if err != nil {
		ready <- fmt.Errorf("create output: %w", err)
		return
	}
	defer func() {
		if err := output.Close(); err != nil {
			e.logger.Warn("close output", "error", err)
		}
	}()

	ready <- nil
	e.logger.Info("Engine started", "device", path, "screen", fmt.Sprintf("%vx%v", width, height))

	w := &worker{
		state:   e.state,
		capture: capture,
		output:  output,
		cursor:  newCursor(width, height, e.opts.ThrottleStep, e.opts.RudderStep),
		frames:  e.opts.Frames,
		logger:  e.logger,
	}
	exitErr := w.loop(ctx, e.opts.Period)

	e.mu.Lock()
	e.err = exitErr
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.mu.Unlock()

	if exitErr != nil {
		e.logger.Error("Engine stopped", "error", exitErr)
	} else {
		e.logger.Info("Engine stopped")
	}
}

func validDimension(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
