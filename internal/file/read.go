package file

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/seyud/gpugov/internal/byteutil"
)

func sysRead(name string, b []byte) ([]byte, error) {
	fd, err := sysOpen(name)
	if err != nil {
		return nil, err
	}
	n, err := unix.Read(fd, b)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	unix.Close(fd)
	return bytes.TrimSpace(b[:n]), nil
}

// ReadBytes reads up to 256 bytes of the named node. The result aliases
// a stack buffer copy and is safe to retain.
func ReadBytes(name string) ([]byte, error) {
	var buf [256]byte
	b, err := sysRead(name, buf[:])
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// ReadInt reads the named node and parses its content as a base 10 integer.
func ReadInt(name string) (int64, error) {
	var buf [21]byte
	b, err := sysRead(name, buf[:])
	if err != nil {
		return 0, err
	}
	return byteutil.Btoi(b), nil
}

// ReadString reads the named node and returns its trimmed content.
func ReadString(name string) (string, error) {
	var buf [256]byte
	b, err := sysRead(name, buf[:])
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Read reads the whole named file. Used for multi-line nodes like the
// gpufreq variable dump that exceed a single read buffer.
func Read(name string) ([]byte, error) {
	f, err := open(name)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	return io.ReadAll(f)
}

// Exists reports whether the named file exists.
func Exists(name string) bool {
	name, err := abs(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(name)
	return err == nil
}

// Readable reports whether the named file exists and can be opened for
// reading. Driver capability probing uses this rather than Exists because
// some nodes are present but permission-gated.
func Readable(name string) bool {
	fd, err := sysOpen(name)
	if err != nil {
		return false
	}
	unix.Close(fd)
	return true
}
