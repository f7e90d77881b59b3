// Package file provides filesystem access rooted at a configurable
// prefix. Kernel node paths are absolute; pointing the root somewhere
// else redirects every read and write, which is how the tests run
// against fixture trees instead of a live /proc and /sys.
package file

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

var root = "/"

func init() {
	if s, ok := os.LookupEnv("GPUGOV_ROOTFS_PATH"); ok && len(s) > 0 {
		root = s
	}
}

// SetRoot redirects all absolute paths under dir. Passing "/" restores
// direct access.
func SetRoot(dir string) error {
	if dir == "/" {
		root = dir
		return nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		return err
	}
	root = abs
	return nil
}

// Abs resolves name against the configured root. Watchers use it so
// inotify sees the same tree reads and writes do.
func Abs(name string) (string, error) {
	return abs(name)
}

func abs(name string) (string, error) {
	if strings.HasPrefix(name, root) {
		return name, nil
	}

	name, err := filepath.Abs(name)
	if err != nil {
		return "", err
	}

	if root == "/" {
		return name, nil
	}

	return filepath.Join(root, name[1:]), nil
}

func open(name string) (*os.File, error) {
	name, err := abs(name)
	if err != nil {
		return nil, err
	}

	return os.Open(name)
}

func sysOpen(name string) (int, error) {
	name, err := abs(name)
	if err != nil {
		return 0, err
	}

	return unix.Open(name, unix.O_RDONLY, 0)
}
