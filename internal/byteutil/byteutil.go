// Package byteutil provides helpers for parsing the small byte slices
// read from kernel interface nodes without allocating.
package byteutil

import (
	"bytes"
)

// Btou is a naive base 10 implementation of [strconv.ParseUint] that assumes
// all the bytes of b are numerical characters, and ignores any that aren't.
func Btou(b []byte) uint64 {
	var u uint64
	for _, c := range b {
		c -= '0'
		if c > 9 {
			continue
		}
		u = 10*u + uint64(c)
	}
	return u
}

// Btoi is a naive base 10 implementation of [strconv.ParseInt] that assumes
// all the bytes of b are numerical characters, and ignores any that aren't.
func Btoi(b []byte) int64 {
	var neg bool
loop:
	for i, c := range b {
		switch {
		case c == '-':
			neg = true
			i++
			fallthrough
		case c >= '0' && c <= '9':
			b = b[i:]
			break loop
		}
	}
	u := Btou(b)
	if neg {
		u = ^u + 1
	}
	return int64(u)
}

// Pair splits b by the first occurrence of sep and returns the subslice
// of b before sep with spaces trimmed and the subslice of b after sep
// with spaces trimmed. Kernel nodes report values as "key = value",
// "key=value", or "key: value" depending on the driver.
func Pair(b []byte, sep byte) (key, val []byte) {
	i := bytes.IndexByte(b, sep)
	if i < 0 {
		return bytes.TrimSpace(b), nil
	}
	key = bytes.TrimSpace(b[:i])
	val = bytes.TrimSpace(b[i+1:])
	return
}

// Column splits b by the first space and returns the subslice
// of b before the space and the remainder of b after the space
// with spaces trimmed.
func Column(b []byte) (col, rest []byte) {
	b = bytes.TrimSpace(b)
	i := bytes.IndexByte(b, ' ')
	if i < 0 {
		return b, b[:0]
	}
	col = b[:i]
	rest = bytes.TrimSpace(b[i+1:])
	return
}
