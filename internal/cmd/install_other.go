//go:build !linux

package cmd

import (
	"errors"
	"log/slog"
)

var errNoService = errors.New("service install is only supported on Linux")

// Install registers flightstick as a system service.
type Install struct{}

func (i *Install) Run(logger *slog.Logger) error { return errNoService }

// Uninstall removes the system service.
type Uninstall struct{}

func (u *Uninstall) Run(logger *slog.Logger) error { return errNoService }
