//go:build windows

package platform

import "golang.org/x/sys/windows"

// EnableVirtualTerminal turns on ANSI escape handling for the console so
// colour output from the generator and compiler renders.
func EnableVirtualTerminal() error {
	h, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
	if err != nil {
		return err
	}
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		// not a console, e.g. redirected to a file
		return nil
	}
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
}
