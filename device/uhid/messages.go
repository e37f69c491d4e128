// Package uhid implements the output device as a Linux uhid HID device
// carrying the flight stick report descriptor.
package uhid

import (
	"encoding/binary"
	"fmt"

	"github.com/Alia5/flightstick/device"
	"github.com/Alia5/flightstick/device/flightstick"
)

// uhid event types.
const (
	evDestroy uint32 = 1
	evStart   uint32 = 2
	evStop    uint32 = 3
	evOpen    uint32 = 4
	evClose   uint32 = 5
	evOutput  uint32 = 6
	evGetRpt  uint32 = 9
	evCreate2 uint32 = 11
	evInput2  uint32 = 12
	evSetRpt  uint32 = 13
)

const (
	nameSize    = 128
	physSize    = 64
	uniqSize    = 64
	maxDescSize = 4096
	maxDataSize = 4096

	// type + name + phys + uniq + rd_size + bus + vendor + product + version + country + rd_data
	create2Size = 4 + nameSize + physSize + uniqSize + 2 + 2 + 4*4 + maxDescSize

	// eventSize is sizeof(struct uhid_event); CREATE2 is its largest member.
	eventSize = create2Size
)

func eventName(t uint32) string {
	switch t {
	case evStart:
		return "start"
	case evStop:
		return "stop"
	case evOpen:
		return "open"
	case evClose:
		return "close"
	case evOutput:
		return "output"
	case evGetRpt:
		return "get_report"
	case evSetRpt:
		return "set_report"
	}
	return fmt.Sprintf("type_%d", t)
}

// createRequest encodes a UHID_CREATE2 message.
func createRequest(id device.Identity, phys string, descriptor []byte) ([]byte, error) {
	if len(descriptor) > maxDescSize {
		return nil, fmt.Errorf("report descriptor too large: %d bytes", len(descriptor))
	}
	b := make([]byte, create2Size)
	le := binary.LittleEndian
	le.PutUint32(b[0:], evCreate2)
	off := 4
	copy(b[off:off+nameSize-1], id.Name)
	off += nameSize
	copy(b[off:off+physSize-1], phys)
	off += physSize
	off += uniqSize
	le.PutUint16(b[off:], uint16(len(descriptor)))
	le.PutUint16(b[off+2:], id.Bus)
	le.PutUint32(b[off+4:], uint32(id.Vendor))
	le.PutUint32(b[off+8:], uint32(id.Product))
	le.PutUint32(b[off+12:], uint32(id.Version))
	le.PutUint32(b[off+16:], 0)
	off += 20
	copy(b[off:], descriptor)
	return b, nil
}

// inputRequest encodes a UHID_INPUT2 message carrying one input report.
func inputRequest(report []byte) ([]byte, error) {
	if len(report) > maxDataSize {
		return nil, fmt.Errorf("input report too large: %d bytes", len(report))
	}
	b := make([]byte, 4+2+len(report))
	binary.LittleEndian.PutUint32(b[0:], evInput2)
	binary.LittleEndian.PutUint16(b[4:], uint16(len(report)))
	copy(b[6:], report)
	return b, nil
}

// encodeFunc turns a frame into the state carried by one input report.
type encodeFunc func(f device.Frame) device.ReportBuilder

func encodeFlightstick(f device.Frame) device.ReportBuilder {
	s := flightstick.FromFrame(f)
	return &s
}

// frameRequest encodes f as a UHID_INPUT2 message.
func frameRequest(encode encodeFunc, f device.Frame) ([]byte, error) {
	return inputRequest(encode(f).BuildReport())
}

// destroyRequest encodes a UHID_DESTROY message.
func destroyRequest() []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, evDestroy)
	return b
}
