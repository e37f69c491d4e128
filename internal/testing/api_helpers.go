package testing

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/Alia5/flightstick/engine"
	"github.com/Alia5/flightstick/internal/server/api"
)

// StartAPIServer starts an API server on a loopback port with the handlers
// installed by register. It is closed when the test ends.
func StartAPIServer(t *testing.T, cfg api.ServerConfig, register func(r *api.Router)) (addr string) {
	t.Helper()
	cfg.Addr = "127.0.0.1:0"
	apiSrv := api.New(cfg.Addr, cfg, slog.Default())
	if register != nil {
		register(apiSrv.Router())
	}
	if err := apiSrv.Start(); err != nil {
		t.Fatalf("api start failed: %v", err)
	}
	t.Cleanup(apiSrv.Close)
	return apiSrv.Addr().String()
}

// NewEngine returns an engine wired to fresh fakes with a short period. The
// engine is stopped when the test ends.
func NewEngine(t *testing.T) (*engine.Engine, *Devices) {
	t.Helper()
	devs := NewDevices()
	e := engine.New(engine.Options{
		OpenCapture:  devs.OpenCapture,
		CreateOutput: devs.CreateOutput,
		Period:       200 * time.Microsecond,
	}, slog.Default())
	t.Cleanup(e.Stop)
	return e, devs
}

// ExecCmd dials the API server, sends cmd and reads the full response.
// The command should not include the terminator. Returns the response
// without the trailing newline.
func ExecCmd(t *testing.T, addr string, cmd string) string {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer c.Close()

	if _, err := fmt.Fprintf(c, "%s\x00", cmd); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	b, err := io.ReadAll(bufio.NewReader(c))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return strings.TrimSuffix(string(b), "\n")
}
