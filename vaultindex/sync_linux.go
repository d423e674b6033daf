//go:build linux

package vaultindex

import "golang.org/x/sys/unix"

type fder interface {
	Fd() uintptr
}

// datasync flushes file data, and only the metadata needed to read it back,
// to stable storage.
func datasync(f osFile) error {
	if fd, ok := f.(fder); ok {
		return unix.Fdatasync(int(fd.Fd()))
	}
	return f.Sync()
}
