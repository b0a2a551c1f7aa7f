//go:build linux

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// terminalWidth reports the column count of f, or 0 if f is not a terminal.
func terminalWidth(f *os.File) int {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0
	}
	return int(ws.Col)
}
