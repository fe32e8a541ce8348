//go:build !windows

package platform

// EnableVirtualTerminal is a no-op outside Windows.
func EnableVirtualTerminal() error { return nil }
