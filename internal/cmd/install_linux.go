//go:build linux

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const serviceName = "flightstick.service"

// Install registers flightstick as a systemd service.
type Install struct {
	UnitPath string `help:"Where to write the unit file" default:"/etc/systemd/system/flightstick.service"`
	Args     string `help:"Arguments passed to the binary" default:"run --no-hud"`

	systemctl func(args ...string) error
}

// Run is called by Kong when the install command is executed.
func (i *Install) Run(logger *slog.Logger) error {
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if exePath, err = filepath.EvalSymlinks(exePath); err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	return i.install(exePath, logger)
}

func (i *Install) install(exePath string, logger *slog.Logger) error {
	systemctl := i.systemctl
	if systemctl == nil {
		systemctl = runSystemctl
	}

	unit := systemdUnitContent(exePath, i.Args)
	if err := os.WriteFile(i.UnitPath, []byte(unit), 0o644); err != nil {
		return err
	}

	steps := [][]string{
		{"daemon-reload"},
		{"enable", serviceName},
		{"restart", serviceName},
	}
	for _, args := range steps {
		if err := systemctl(args...); err != nil {
			return err
		}
	}

	logger.Info("flightstick systemd service installed", "path", i.UnitPath, "exe", exePath)
	return nil
}

// Uninstall stops and removes the systemd service.
type Uninstall struct {
	UnitPath string `help:"Unit file to remove" default:"/etc/systemd/system/flightstick.service"`

	systemctl func(args ...string) error
}

// Run is called by Kong when the uninstall command is executed.
func (u *Uninstall) Run(logger *slog.Logger) error {
	systemctl := u.systemctl
	if systemctl == nil {
		systemctl = runSystemctl
	}

	var errs []error
	if err := systemctl("stop", serviceName); err != nil {
		errs = append(errs, err)
	}
	if err := systemctl("disable", serviceName); err != nil {
		errs = append(errs, err)
	}
	if err := os.Remove(u.UnitPath); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err)
	}
	if err := systemctl("daemon-reload"); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	logger.Info("flightstick systemd service removed", "path", u.UnitPath)
	return nil
}

// The service needs /dev/input and /dev/uinput, so it runs as root.
func systemdUnitContent(exePath, args string) string {
	return fmt.Sprintf(`[Unit]
Description=flightstick mouse to joystick remapper
After=systemd-udev-settle.service

[Service]
Type=simple
ExecStart=%q %s
WorkingDirectory=%s
Restart=on-failure

[Install]
WantedBy=multi-user.target
`, exePath, args, filepath.Dir(exePath))
}

func runSystemctl(args ...string) error {
	cmd := exec.Command("systemctl", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return nil
}
