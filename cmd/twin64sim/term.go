package main

import (
	"golang.org/x/sys/unix"
)

const (
	getTermios = unix.TCGETS
	setTermios = unix.TCSETS
)

func tcget(fd uintptr) (*unix.Termios, error) {
	return unix.IoctlGetTermios(int(fd), getTermios)
}

func tcset(fd uintptr, p *unix.Termios) error {
	return unix.IoctlSetTermios(int(fd), setTermios, p)
}

// withRawMode puts fd into raw mode (no echo, no line buffering) for the
// duration of fn, restoring the saved termios before returning — the
// console module writes directly to stdout a byte at a time, and canonical
// line discipline would otherwise garble interleaved program output.
func withRawMode(fd uintptr, fn func() error) error {
	saved, err := tcget(fd)
	if err != nil {
		// Not a terminal (e.g. stdin redirected from a file) — run as-is.
		return fn()
	}
	raw := *saved
	raw.Lflag &^= unix.ECHO | unix.ICANON
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := tcset(fd, &raw); err != nil {
		return fn()
	}
	defer tcset(fd, saved)
	return fn()
}
