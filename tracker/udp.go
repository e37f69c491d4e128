package tracker

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
)

// OpenTrack "UDP over network" protocol.
const (
	DefaultUDPAddr = "127.0.0.1:4242"
	PacketSize     = 6 * 8
	// DefaultDegreesPerUnit maps OpenTrack degrees to raw pose units.
	DefaultDegreesPerUnit = 90.0
)

// Pose is one OpenTrack sample: position in centimeters, rotation in degrees.
type Pose struct {
	X, Y, Z          float64
	Yaw, Pitch, Roll float64
}

// DecodePose decodes an OpenTrack packet of six little-endian float64s.
func DecodePose(b []byte) (Pose, error) {
	if len(b) < PacketSize {
		return Pose{}, fmt.Errorf("short opentrack packet: %d bytes", len(b))
	}
	f := func(i int) float64 {
		return math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return Pose{X: f(0), Y: f(1), Z: f(2), Yaw: f(3), Pitch: f(4), Roll: f(5)}, nil
}

// Sink receives shaped head axes.
type Sink interface {
	UpdateTracker(yaw, pitch float64)
}

// UDPReceiver feeds OpenTrack packets through a Processor into a Sink.
type UDPReceiver struct {
	proc   *Processor
	sink   Sink
	logger *slog.Logger

	// DegreesPerUnit converts incoming degrees to raw pose units.
	DegreesPerUnit float64

	conn *net.UDPConn
}

// NewUDPReceiver returns a receiver; call Listen then Serve.
func NewUDPReceiver(proc *Processor, sink Sink, logger *slog.Logger) *UDPReceiver {
	return &UDPReceiver{
		proc:           proc,
		sink:           sink,
		logger:         logger,
		DegreesPerUnit: DefaultDegreesPerUnit,
	}
}

// Listen binds the UDP socket.
func (r *UDPReceiver) Listen(addr string) error {
	ua, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", ua)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	r.conn = conn
	r.logger.Info("Head tracker listening", "addr", conn.LocalAddr().String())
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (r *UDPReceiver) Addr() net.Addr {
	if r.conn == nil {
		return nil
	}
	return r.conn.LocalAddr()
}

// Serve reads packets until ctx is done.
func (r *UDPReceiver) Serve(ctx context.Context) error {
	if r.conn == nil {
		return errors.New("receiver not listening")
	}
	go func() {
		<-ctx.Done()
		_ = r.conn.Close()
	}()

	buf := make([]byte, 512)
	for {
		n, _, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		pose, err := DecodePose(buf[:n])
		if err != nil {
			r.logger.Debug("dropping packet", "error", err)
			continue
		}
		yaw, pitch := r.proc.Feed(pose.Yaw/r.DegreesPerUnit, pose.Pitch/r.DegreesPerUnit)
		r.sink.UpdateTracker(yaw, pitch)
	}
}
