package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/Alia5/flightstick/device"
	"github.com/Alia5/flightstick/device/evdev"
	"github.com/Alia5/flightstick/engine"
	"github.com/Alia5/flightstick/hud"
	"github.com/Alia5/flightstick/internal/configpaths"
	"github.com/Alia5/flightstick/internal/log"
	"github.com/Alia5/flightstick/internal/server/api"
	"github.com/Alia5/flightstick/internal/server/api/auth"
	"github.com/Alia5/flightstick/internal/server/api/handler"
	"github.com/Alia5/flightstick/internal/server/overlay"
	"github.com/Alia5/flightstick/tracker"
)

const keyFileName = "flightstick.key.txt"

// TrackerConfig configures the head-tracking feed.
type TrackerConfig struct {
	Addr           string  `help:"OpenTrack UDP listen address (empty disables)" default:"127.0.0.1:4242" env:"FLIGHTSTICK_TRACKER_ADDR"`
	DegreesPerUnit float64 `help:"Degrees of head rotation per raw tracker unit" default:"90" env:"FLIGHTSTICK_TRACKER_DEGREES_PER_UNIT"`
	tracker.Config `embed:""`
}

// Run grabs the pointer and drives the virtual joystick until an exit is
// requested, the pointer goes away or the process is signalled.
type Run struct {
	Device    string `help:"Pointer device to capture (best discovered pointer if empty)" env:"FLIGHTSTICK_DEVICE"`
	Keyboard  string `help:"Keyboard device watched for hotkeys (discovered if empty)" env:"FLIGHTSTICK_KEYBOARD"`
	NoHotkeys bool   `help:"Do not watch a keyboard for hotkeys" env:"FLIGHTSTICK_NO_HOTKEYS"`
	Output    string `help:"Output backend (uinput, uhid)" default:"uinput" env:"FLIGHTSTICK_OUTPUT"`

	ScreenWidth  float64       `help:"Virtual screen width in pixels" default:"1920" env:"FLIGHTSTICK_SCREEN_WIDTH"`
	ScreenHeight float64       `help:"Virtual screen height in pixels" default:"1080" env:"FLIGHTSTICK_SCREEN_HEIGHT"`
	Period       time.Duration `help:"Engine cycle period" default:"900us" env:"FLIGHTSTICK_PERIOD"`
	ThrottleStep float64       `help:"Throttle change per wheel detent" default:"0.05" env:"FLIGHTSTICK_THROTTLE_STEP"`
	RudderStep   float64       `help:"Rudder change per horizontal wheel detent" default:"0.20" env:"FLIGHTSTICK_RUDDER_STEP"`

	HUD         bool          `help:"Show the terminal HUD when stdout is a terminal" default:"true" negatable:"" env:"FLIGHTSTICK_HUD"`
	HUDInterval time.Duration `help:"HUD redraw interval" default:"50ms" env:"FLIGHTSTICK_HUD_INTERVAL"`
	Stay        bool          `help:"Keep serving the API after the engine stops" env:"FLIGHTSTICK_STAY"`

	Identity          IdentityConfig   `embed:"" prefix:"identity."`
	Stick             StickConfig      `embed:"" prefix:"stick."`
	Tracker           TrackerConfig    `embed:"" prefix:"tracker."`
	ApiServerConfig   api.ServerConfig `embed:"" prefix:"api."`
	Overlay           overlay.Config   `embed:"" prefix:"overlay."`
	ConnectionTimeout time.Duration    `help:"API connection timeout" default:"30s" env:"FLIGHTSTICK_CONNECTION_TIMEOUT"`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, frames log.MultiFrames) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.Start(ctx, logger, frames)
}

// backends bundles the collaborators Start wires into the engine. Tests
// replace them with fakes.
type backends struct {
	openCapture  engine.CaptureOpener
	createOutput engine.OutputFactory
	findPointer  func() (string, error)
	findKeyboard func(pointer string) string
	scan         handler.ScanFunc
	watchHotkeys func(ctx context.Context, path string, fn func(evdev.Action)) error
}

func (r *Run) linuxBackends(logger *slog.Logger) (*backends, error) {
	reg := device.GetOutput(r.Output)
	if reg == nil {
		return nil, fmt.Errorf("unknown output %q (available: %s)", r.Output, strings.Join(device.ListOutputs(), ", "))
	}
	opts, err := r.Identity.options()
	if err != nil {
		return nil, err
	}
	return &backends{
		openCapture: func(path string) (device.Capture, error) {
			c, err := evdev.OpenCapture(path, logger)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		createOutput: func() (device.Output, error) {
			return reg.CreateOutput(opts, logger)
		},
		findPointer: func() (string, error) {
			c, err := evdev.FindPointer(logger)
			return c.Path, err
		},
		findKeyboard: func(pointer string) string { return evdev.FindKeyboard(pointer, logger) },
		scan:         func() ([]evdev.DeviceInfo, error) { return evdev.Scan(logger) },
		watchHotkeys: func(ctx context.Context, path string, fn func(evdev.Action)) error {
			return evdev.WatchHotkeys(ctx, path, fn, logger)
		},
	}, nil
}

// Start runs until ctx is done or the engine stops.
func (r *Run) Start(ctx context.Context, logger *slog.Logger, frames log.MultiFrames) error {
	b, err := r.linuxBackends(logger)
	if err != nil {
		return err
	}
	return r.start(ctx, logger, frames, b)
}

func (r *Run) start(ctx context.Context, logger *slog.Logger, frames log.MultiFrames, b *backends) error {
	opts := engine.Options{
		OpenCapture:  b.openCapture,
		CreateOutput: b.createOutput,
		Period:       r.Period,
		ThrottleStep: r.ThrottleStep,
		RudderStep:   r.RudderStep,
	}
	if len(frames) > 0 {
		opts.Frames = frames
	}
	e := engine.New(opts, logger)
	if err := e.UpdateConfig(r.Stick.physics()); err != nil {
		return err
	}
	if err := r.Tracker.Config.Validate(); err != nil {
		return err
	}

	path := r.Device
	if path == "" {
		var err error
		if path, err = b.findPointer(); err != nil {
			return fmt.Errorf("find pointer: %w", err)
		}
	}
	if err := e.Start(path, r.ScreenWidth, r.ScreenHeight); err != nil {
		return err
	}
	defer e.Stop()
	done := e.Done()

	proc := tracker.NewProcessor(r.Tracker.Config)
	recenter := func() {
		e.Recenter()
		proc.Recenter()
	}

	if r.Tracker.Addr != "" {
		recv := tracker.NewUDPReceiver(proc, e, logger)
		if r.Tracker.DegreesPerUnit > 0 {
			recv.DegreesPerUnit = r.Tracker.DegreesPerUnit
		}
		if err := recv.Listen(r.Tracker.Addr); err != nil {
			return fmt.Errorf("head tracker: %w", err)
		}
		go func() {
			if err := recv.Serve(ctx); err != nil {
				logger.Error("Head tracker stopped", "error", err)
			}
		}()
	}

	if !r.NoHotkeys {
		kbd := r.Keyboard
		if kbd == "" {
			kbd = b.findKeyboard(path)
		}
		go func() {
			err := b.watchHotkeys(ctx, kbd, func(a evdev.Action) {
				logger.Info("Hotkey", "action", a.String())
				switch a {
				case evdev.ActionExit:
					e.RequestExit()
				case evdev.ActionRecenter:
					recenter()
				}
			})
			if err != nil {
				logger.Warn("Hotkeys unavailable", "keyboard", kbd, "error", err)
			}
		}()
	}

	if r.ApiServerConfig.Addr != "" {
		apiSrv, err := r.startAPI(e, proc, recenter, b, logger)
		if err != nil {
			return err
		}
		defer apiSrv.Close()
	}

	if r.Overlay.Addr != "" {
		ov := overlay.New(r.Overlay, e, logger)
		ov.OnRecenter = recenter
		if err := ov.Start(); err != nil {
			return fmt.Errorf("overlay: %w", err)
		}
		defer ov.Close()
	}

	hudDone := make(chan struct{})
	if r.HUD && term.IsTerminal(int(os.Stdout.Fd())) {
		hudCtx, hudCancel := context.WithCancel(ctx)
		if err := r.startHUD(hudCtx, e, recenter, hudDone, logger); err != nil {
			hudCancel()
			return err
		}
		defer func() {
			hudCancel()
			<-hudDone
		}()
	} else if restore, err := suppressEcho(int(os.Stdin.Fd())); err != nil {
		logger.Warn("Could not disable terminal echo", "error", err)
	} else {
		defer restore()
	}

	if r.Stay {
		<-ctx.Done()
		return nil
	}

	select {
	case <-ctx.Done():
		return nil
	case <-hudDone:
		// Leaving the HUD ends the session like the exit hotkey.
		e.RequestExit()
		<-done
	case <-done:
	}
	if err := e.Err(); err != nil {
		return fmt.Errorf("engine stopped: %w", err)
	}
	return nil
}

func (r *Run) startHUD(ctx context.Context, e *engine.Engine, recenter func(), done chan<- struct{}, logger *slog.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("hud: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("hud: %w", err)
	}
	view := hud.New(screen, e)
	view.OnRecenter = recenter
	go func() {
		defer close(done)
		defer screen.Fini()
		if err := view.Run(ctx, r.HUDInterval); err != nil {
			logger.Error("HUD failed", "error", err)
		}
	}()
	return nil
}

func (r *Run) startAPI(e *engine.Engine, proc *tracker.Processor, recenter func(), b *backends, logger *slog.Logger) (*api.Server, error) {
	cfg := r.ApiServerConfig
	cfg.ConnectionTimeout = r.ConnectionTimeout
	if cfg.Password == "" && !isLoopback(cfg.Addr) {
		pwd, err := loadOrCreatePassword(logger)
		if err != nil {
			return nil, err
		}
		cfg.Password = pwd
	}

	apiSrv := api.New(cfg.Addr, cfg, logger)
	rt := apiSrv.Router()
	rt.Register("ping", handler.Ping(Version))
	rt.Register("engine/start", handler.EngineStart(e, r.Output, b.findPointer))
	rt.Register("engine/stop", handler.EngineStop(e, r.Output))
	rt.Register("engine/status", handler.EngineStatus(e, r.Output))
	rt.Register("engine/config", handler.EngineConfig(e))
	rt.Register("engine/config/{field}", handler.EngineConfigField(e))
	rt.Register("engine/recenter", handler.EngineRecenter(recenterFunc(recenter)))
	rt.Register("engine/exit", handler.EngineExit(e))
	rt.Register("engine/tracker", handler.EngineTracker(e))
	rt.Register("engine/hud", handler.EngineHUD(e))
	rt.Register("devices/list", handler.DevicesList(b.scan))
	rt.RegisterStream("engine/hud/stream", handler.HUDStream(e, cfg.StreamInterval))
	rt.RegisterStream("tracker/stream", handler.TrackerStream(proc, e))

	if err := apiSrv.Start(); err != nil {
		return nil, fmt.Errorf("start API server: %w", err)
	}
	logger.Info("Control API listening", "addr", apiSrv.Addr().String(), "auth", cfg.Password != "")
	return apiSrv, nil
}

type recenterFunc func()

func (f recenterFunc) Recenter() { f() }

func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// loadOrCreatePassword reads the API password from the key file in the
// config dir, generating one on first use.
func loadOrCreatePassword(logger *slog.Logger) (string, error) {
	dir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve key file path: %w", err)
	}
	keyFilePath := filepath.Join(dir, keyFileName)
	if pwd, err := os.ReadFile(keyFilePath); err == nil {
		if s := strings.TrimSpace(string(pwd)); s != "" {
			return s, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read key file: %w", err)
	}

	newPwd, err := auth.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate new API password: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config dir for key file: %w", err)
	}
	if err := os.WriteFile(keyFilePath, []byte(newPwd), 0o600); err != nil {
		return "", fmt.Errorf("failed to write new API password to file: %w", err)
	}
	logger.Info("Generated API password for non-loopback listener", "path", keyFilePath)
	logger.Info("Your flightstick API password is: " + newPwd)
	return newPwd, nil
}
