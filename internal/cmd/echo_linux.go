//go:build linux

package cmd

import (
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// suppressEcho turns off terminal echo on fd so hotkeys typed while the
// pointer is grabbed do not end up on screen. The returned func restores the
// previous terminal state.
func suppressEcho(fd int) (func(), error) {
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}
	state, err := term.GetState(fd)
	if err != nil {
		return nil, err
	}
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, err
	}
	t.Lflag &^= unix.ECHO
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		return nil, err
	}
	return func() { _ = term.Restore(fd, state) }, nil
}
