//go:build windows

package cli

import (
	"os"

	"golang.org/x/sys/windows"
)

func withEchoDisabled(stdin *os.File, read func() error) error {
	handle := windows.Handle(stdin.Fd())
	var originalMode uint32
	if err := windows.GetConsoleMode(handle, &originalMode); err != nil {
		return err
	}

	if err := windows.SetConsoleMode(handle, originalMode&^windows.ENABLE_ECHO_INPUT); err != nil {
		return err
	}
	defer func() {
		_ = windows.SetConsoleMode(handle, originalMode)
	}()

	return read()
}
