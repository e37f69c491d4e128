package testing

import (
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/Alia5/flightstick/device"
)

// FakeCapture is an in-memory device.Capture. Queued events are returned by
// the next ReadEvents call.
type FakeCapture struct {
	mu      sync.Mutex
	queue   []device.Event
	err     error
	closed  bool
	batches int
}

// Push queues events for the next ReadEvents call.
func (c *FakeCapture) Push(evs ...device.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, evs...)
}

// Fail makes every following ReadEvents call return err after the queue.
func (c *FakeCapture) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// ReadEvents implements device.Capture.
func (c *FakeCapture) ReadEvents() ([]device.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches++
	evs := c.queue
	c.queue = nil
	if len(evs) > 0 {
		return evs, nil
	}
	return nil, c.err
}

// Reads returns how many times ReadEvents was called.
func (c *FakeCapture) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batches
}

// Close implements device.Capture.
func (c *FakeCapture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *FakeCapture) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// FakeOutput records every emitted frame.
type FakeOutput struct {
	mu      sync.Mutex
	frames  []device.Frame
	emitErr error
	closed  bool
}

// FailEmit makes Emit return err; frames are still recorded.
func (o *FakeOutput) FailEmit(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.emitErr = err
}

// Emit implements device.Output.
func (o *FakeOutput) Emit(f device.Frame) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.frames = append(o.frames, f)
	return o.emitErr
}

// Close implements device.Output.
func (o *FakeOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	return nil
}

// Closed reports whether Close was called.
func (o *FakeOutput) Closed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

// Count returns the number of emitted frames.
func (o *FakeOutput) Count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.frames)
}

// Last returns the most recent frame and whether there was one.
func (o *FakeOutput) Last() (device.Frame, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.frames) == 0 {
		return device.Frame{}, false
	}
	return o.frames[len(o.frames)-1], true
}

// Devices bundles fakes for one engine run.
type Devices struct {
	Capture *FakeCapture
	Output  *FakeOutput
	// Path is the capture path the engine opened.
	Path string

	mu sync.Mutex
}

// ErrNoSuchDevice is returned by OpenCapture for paths in MissingPaths.
var ErrNoSuchDevice = errors.New("no such device")

// NewDevices returns fresh fakes.
func NewDevices() *Devices {
	return &Devices{Capture: &FakeCapture{}, Output: &FakeOutput{}}
}

// OpenCapture is an engine.CaptureOpener returning d.Capture. The path
// "missing" fails with ErrNoSuchDevice.
func (d *Devices) OpenCapture(path string) (device.Capture, error) {
	if path == "missing" {
		return nil, ErrNoSuchDevice
	}
	d.mu.Lock()
	d.Path = path
	d.mu.Unlock()
	return d.Capture, nil
}

// CreateOutput is an engine.OutputFactory returning d.Output.
func (d *Devices) CreateOutput() (device.Output, error) {
	return d.Output, nil
}

type mockRegistration struct {
	createFunc func(o *device.CreateOptions) (device.Output, error)
}

func (m *mockRegistration) CreateOutput(o *device.CreateOptions, _ *slog.Logger) (device.Output, error) {
	return m.createFunc(o)
}

func (m *mockRegistration) Description() string {
	return "mock output"
}

// CreateMockRegistration returns an output backend backed by cf.
func CreateMockRegistration(t *testing.T, cf func(o *device.CreateOptions) (device.Output, error)) device.OutputRegistration {
	t.Helper()
	return &mockRegistration{createFunc: cf}
}
