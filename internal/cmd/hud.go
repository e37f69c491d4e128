package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Alia5/flightstick/apiclient"
	"github.com/Alia5/flightstick/apitypes"
	"github.com/Alia5/flightstick/engine"
	"github.com/Alia5/flightstick/hud"
)

// ClientConfig selects the control API to talk to.
type ClientConfig struct {
	Addr     string        `help:"Control API address" default:"127.0.0.1:3243" env:"FLIGHTSTICK_API_ADDR"`
	Password string        `help:"Control API password" env:"FLIGHTSTICK_API_PASSWORD"`
	Timeout  time.Duration `help:"Request timeout" default:"5s" env:"FLIGHTSTICK_API_TIMEOUT"`
}

func (c ClientConfig) client() *apiclient.Client {
	return apiclient.NewWithConfig(c.Addr, &apiclient.Config{
		DialTimeout:  c.Timeout,
		ReadTimeout:  c.Timeout,
		WriteTimeout: c.Timeout,
		Password:     c.Password,
	})
}

// HUD shows the terminal HUD of a running instance through the control API.
type HUD struct {
	Client   ClientConfig  `embed:"" prefix:"api."`
	Interval time.Duration `help:"Redraw interval" default:"50ms"`
}

// Run is called by Kong when the hud command is executed.
func (h *HUD) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := h.Client.client()
	stream, err := c.OpenHUDStream(ctx)
	if err != nil {
		return fmt.Errorf("open telemetry stream: %w", err)
	}
	defer stream.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	return runRemoteHUD(ctx, screen, c, stream, h.Interval, logger)
}

// hudStream is the part of apiclient.HUDStream the remote HUD uses.
type hudStream interface {
	StartReading(onHUD func(*apitypes.HUD), onError func(error))
}

func runRemoteHUD(ctx context.Context, screen tcell.Screen, c *apiclient.Client, stream hudStream, interval time.Duration, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	src := &remoteSource{}
	errCh := make(chan error, 1)
	stream.StartReading(src.set, func(err error) {
		errCh <- err
		cancel()
	})

	view := hud.New(screen, src)
	view.OnRecenter = func() {
		if err := c.Recenter(); err != nil {
			logger.Warn("Recenter failed", "error", err)
		}
	}
	if err := view.Run(ctx, interval); err != nil {
		return err
	}
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			return fmt.Errorf("telemetry stream: %w", err)
		}
	default:
	}
	return nil
}

// remoteSource holds the latest snapshot received from the server.
type remoteSource struct {
	mu  sync.Mutex
	hud engine.HUD
}

func (s *remoteSource) set(h *apitypes.HUD) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hud = engine.HUD{
		Telemetry: engine.Telemetry{
			X:          h.X,
			Y:          h.Y,
			Throttle:   h.Throttle,
			Rudder:     h.Rudder,
			Snapped:    h.Snapped,
			InDeadzone: h.InDeadzone,
		},
		HeadYaw:   h.HeadYaw,
		HeadPitch: h.HeadPitch,
		Running:   h.Running,
	}
}

func (s *remoteSource) HUD() engine.HUD {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hud
}
