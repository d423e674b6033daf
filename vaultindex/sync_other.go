//go:build !linux

package vaultindex

func datasync(f osFile) error {
	return f.Sync()
}
