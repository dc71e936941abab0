//go:build windows

package doctor

// Console modes are restored by Windows when the TUI process exits.
func resetTerminal() {}
