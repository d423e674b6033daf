package vaultindex

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// osFile is the subset of *os.File used by the index. Every access is
// positional, so no operation depends on the file cursor.
type osFile interface {
	io.ReaderAt
	io.WriterAt
	io.Closer

	Truncate(size int64) error
	Sync() error
}

type openFunc func(path string) (osFile, error)

func openOSFile(path string) (osFile, error) {
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
}

type file struct {
	rw osFile
}

func newFile(f osFile) *file {
	return &file{rw: f}
}

// checkHeader reports whether the file starts with a valid header, and
// whether the file is empty. A file too short to hold a header is reported
// as invalid, not as an error.
func (f *file) checkHeader() (valid, empty bool, err error) {
	buf := make([]byte, HeaderSize)
	n, err := f.rw.ReadAt(buf, 0)
	if n == HeaderSize {
		return validHeader(buf), false, nil
	}
	if isEOF(err) {
		return false, n == 0, nil
	}
	return false, false, errors.Wrap(err, "cannot read header")
}

// reset truncates the file and writes a fresh header.
func (f *file) reset() error {
	if err := f.rw.Truncate(0); err != nil {
		return errors.Wrap(err, "cannot truncate file")
	}
	if _, err := f.rw.WriteAt(encodeHeader(), 0); err != nil {
		return errors.Wrap(err, "cannot write header")
	}
	if err := datasync(f.rw); err != nil {
		return errors.Wrap(err, "cannot sync header")
	}
	return nil
}

// readSlot fills buf with the record at slot. It returns false when the slot
// lies past the end of the file or is only partially present.
func (f *file) readSlot(slot int64, buf []byte) (bool, error) {
	n, err := f.rw.ReadAt(buf[:RecordSize], slotOffset(slot))
	if n == RecordSize {
		return true, nil
	}
	if isEOF(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "cannot read slot %d", slot)
}

// scan visits full records in slot order until fn reports done or the
// records run out. When fn stops the scan, the stopping slot is returned with
// done set; otherwise the returned slot is the first one past the last full
// record, where an append belongs.
func (f *file) scan(fn func(slot int64, rec []byte) (done bool, err error)) (int64, bool, error) {
	buf := make([]byte, RecordSize)
	for slot := int64(0); ; slot++ {
		ok, err := f.readSlot(slot, buf)
		if err != nil {
			return slot, false, err
		}
		if !ok {
			return slot, false, nil
		}
		done, err := fn(slot, buf)
		if err != nil {
			return slot, false, err
		}
		if done {
			return slot, true, nil
		}
	}
}

// writeSlot writes rec at slot and forces it to stable storage.
func (f *file) writeSlot(slot int64, rec []byte) error {
	if _, err := f.rw.WriteAt(rec, slotOffset(slot)); err != nil {
		return errors.Wrapf(err, "cannot write slot %d", slot)
	}
	if err := datasync(f.rw); err != nil {
		return errors.Wrapf(err, "cannot sync slot %d", slot)
	}
	return nil
}

func (f *file) close() error {
	return f.rw.Close()
}

func isEOF(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}
