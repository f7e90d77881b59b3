package file

import (
	"os"
)

// WriteString truncates the named node and writes s to it. Control nodes
// under /proc and /sys must be written in a single syscall or the driver
// sees a partial command.
func WriteString(name, s string) error {
	name, err := abs(name)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	_, werr := f.WriteString(s)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

// WriteMarker writes s to a marker file, creating it if absent. Marker
// files are made world-readable so the companion UI can poll them.
func WriteMarker(name, s string) error {
	name, err := abs(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(name); err == nil {
		if err := os.Chmod(name, 0o644); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	_, werr := f.WriteString(s)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}
