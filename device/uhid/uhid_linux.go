//go:build linux

package uhid

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/Alia5/flightstick/device"
	"github.com/Alia5/flightstick/device/flightstick"
)

// Path is the uhid character device.
var Path = "/dev/uhid"

func init() {
	device.RegisterOutput("uhid", &registration{})
}

type registration struct{}

func (registration) CreateOutput(o *device.CreateOptions, logger *slog.Logger) (device.Output, error) {
	return New(flightstick.Identity(o), logger)
}

func (registration) Description() string {
	return "Linux uhid HID joystick (hidraw/SDL consumers)"
}

// Device is a uhid-backed HID joystick.
type Device struct {
	fd     int
	logger *slog.Logger

	encode encodeFunc

	mu      sync.Mutex
	readBuf []byte
}

// New creates the HID device with the flight stick report descriptor.
func New(id device.Identity, logger *slog.Logger) (*Device, error) {
	fd, err := unix.Open(Path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", Path, err)
	}
	req, err := createRequest(id, "flightstick/uhid", flightstick.ReportDescriptor)
	if err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	if _, err := unix.Write(fd, req); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("UHID_CREATE2: %w", err)
	}
	logger.Info("Created uhid device", "name", id.Name, "vendor", fmt.Sprintf("0x%04x", id.Vendor), "product", fmt.Sprintf("0x%04x", id.Product))
	return &Device{
		fd:      fd,
		logger:  logger,
		encode:  encodeFlightstick,
		readBuf: make([]byte, eventSize),
	}, nil
}

// Emit sends the frame as one HID input report.
func (d *Device) Emit(f device.Frame) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.drain()
	req, err := frameRequest(d.encode, f)
	if err != nil {
		return err
	}
	if _, err := unix.Write(d.fd, req); err != nil {
		return fmt.Errorf("UHID_INPUT2: %w", err)
	}
	return nil
}

// drain consumes kernel notifications so the queue never fills up.
func (d *Device) drain() {
	for {
		n, err := unix.Read(d.fd, d.readBuf)
		if err != nil {
			if !errors.Is(err, unix.EAGAIN) {
				d.logger.Debug("uhid read failed", "error", err)
			}
			return
		}
		if n < 4 {
			return
		}
		d.logger.Debug("uhid event", "event", eventName(binary.LittleEndian.Uint32(d.readBuf)))
	}
}

// Close destroys the HID device.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fd < 0 {
		return nil
	}
	if _, err := unix.Write(d.fd, destroyRequest()); err != nil {
		d.logger.Warn("UHID_DESTROY failed", "error", err)
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}
