package shared

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName names the per-user directories created under the XDG base directories.
const AppName = "swatch"

// DataDir returns the XDG data directory for swatch (~/.local/share/swatch on Linux).
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// StateDir returns the XDG state directory for swatch (~/.local/state/swatch on Linux).
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// DefaultDatabasePath is used when database.path is empty.
func DefaultDatabasePath() string {
	return filepath.Join(DataDir(), "swatch.db")
}

// DefaultLogPath is used when log.file is empty.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "swatch-tui.log")
}
