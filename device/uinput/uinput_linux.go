//go:build linux

package uinput

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/Alia5/flightstick/device"
)

// Path is the uinput control node.
var Path = "/dev/uinput"

const (
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiSetAbsBit  = 0x40045567
	uiDevSetup   = 0x405c5503
	uiAbsSetup   = 0x401c5504
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502
)

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type uinputSetup struct {
	ID           inputID
	Name         [80]byte
	FFEffectsMax uint32
}

type absInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

type uinputAbsSetup struct {
	Code uint16
	_    uint16
	Info absInfo
}

type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

func init() {
	device.RegisterOutput("uinput", &registration{})
}

type registration struct{}

func (registration) CreateOutput(o *device.CreateOptions, logger *slog.Logger) (device.Output, error) {
	return New(o.Apply(device.DefaultIdentity()), logger)
}

func (registration) Description() string {
	return "Linux uinput joystick (evdev/joydev consumers)"
}

// Device is a uinput joystick with six absolute axes and five buttons.
type Device struct {
	fd     int
	logger *slog.Logger

	mu  sync.Mutex
	buf bytes.Buffer
}

// New creates and registers the virtual joystick.
func New(id device.Identity, logger *slog.Logger) (*Device, error) {
	fd, err := unix.Open(Path, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", Path, err)
	}
	d := &Device{fd: fd, logger: logger}
	if err := d.setup(id); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	logger.Info("Created uinput device", "name", id.Name, "vendor", fmt.Sprintf("0x%04x", id.Vendor), "product", fmt.Sprintf("0x%04x", id.Product))
	return d, nil
}

func (d *Device) setup(id device.Identity) error {
	for _, ev := range []int{int(device.EvSyn), int(device.EvKey), int(device.EvAbs)} {
		if err := unix.IoctlSetInt(d.fd, uiSetEvBit, ev); err != nil {
			return fmt.Errorf("UI_SET_EVBIT %d: %w", ev, err)
		}
	}
	for _, code := range buttonCodes {
		if err := unix.IoctlSetInt(d.fd, uiSetKeyBit, int(code)); err != nil {
			return fmt.Errorf("UI_SET_KEYBIT 0x%x: %w", code, err)
		}
	}
	for _, code := range axisCodes {
		if err := unix.IoctlSetInt(d.fd, uiSetAbsBit, int(code)); err != nil {
			return fmt.Errorf("UI_SET_ABSBIT %d: %w", code, err)
		}
		abs := uinputAbsSetup{
			Code: code,
			Info: absInfo{Minimum: -device.AxisMax, Maximum: device.AxisMax},
		}
		if err := ioctlPtr(d.fd, uiAbsSetup, unsafe.Pointer(&abs)); err != nil {
			return fmt.Errorf("UI_ABS_SETUP %d: %w", code, err)
		}
	}

	setup := uinputSetup{
		ID: inputID{Bustype: id.Bus, Vendor: id.Vendor, Product: id.Product, Version: id.Version},
	}
	copy(setup.Name[:len(setup.Name)-1], id.Name)
	if err := ioctlPtr(d.fd, uiDevSetup, unsafe.Pointer(&setup)); err != nil {
		return fmt.Errorf("UI_DEV_SETUP: %w", err)
	}
	if err := ioctlPtr(d.fd, uiDevCreate, nil); err != nil {
		return fmt.Errorf("UI_DEV_CREATE: %w", err)
	}
	return nil
}

// Emit writes the frame as one batch of events ending in SYN_REPORT.
func (d *Device) Emit(f device.Frame) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.buf.Reset()
	for _, ev := range frameEvents(f) {
		ie := inputEvent{Type: ev.Type, Code: ev.Code, Value: ev.Value}
		if err := binary.Write(&d.buf, binary.NativeEndian, &ie); err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
	}
	n, err := unix.Write(d.fd, d.buf.Bytes())
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if n != d.buf.Len() {
		return fmt.Errorf("short frame write: %d of %d bytes", n, d.buf.Len())
	}
	return nil
}

// Close destroys the virtual device.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fd < 0 {
		return nil
	}
	if err := ioctlPtr(d.fd, uiDevDestroy, nil); err != nil {
		d.logger.Warn("UI_DEV_DESTROY failed", "error", err)
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}

func ioctlPtr(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
