package vaultindex

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// FileName is the name of the index file inside the vault directory.
const FileName = "index.vuoto"

// CurrentVersion is the version of the index format. It must be incremented
// for every change that breaks compatibility with the existing layout; files
// carrying another version are reinitialized on open.
const CurrentVersion uint32 = 1

// RecordSize is the width of one slot, and thus the maximum byte length of a
// vault name.
const RecordSize = 16

// HeaderSize is the size of the magic tag followed by the version.
const HeaderSize = len(magic) + versionSize

const versionSize = 4

var magic = [8]byte{'V', 'U', 'O', 'T', 'O', 'I', 'D', 'X'}

var emptyRecord [RecordSize]byte

func encodeHeader() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf, magic[:])
	binary.LittleEndian.PutUint32(buf[len(magic):], CurrentVersion)
	return buf
}

// validHeader reports whether b holds the magic tag and the current version.
func validHeader(b []byte) bool {
	if len(b) < HeaderSize {
		return false
	}
	if !bytes.Equal(b[:len(magic)], magic[:]) {
		return false
	}
	return binary.LittleEndian.Uint32(b[len(magic):HeaderSize]) == CurrentVersion
}

// slotOffset returns the file offset of the given slot.
func slotOffset(slot int64) int64 {
	return int64(HeaderSize) + slot*RecordSize
}

func checkName(name string) error {
	if name == "" {
		return errors.New("name must be non-empty")
	}
	if len(name) > RecordSize {
		return errors.Errorf("name too long: %d bytes, must be <= %d", len(name), RecordSize)
	}
	if bytes.IndexByte([]byte(name), 0) != -1 {
		return errors.New("name cannot contain NUL")
	}
	if !utf8.ValidString(name) {
		return errors.New("name is not valid utf-8")
	}
	return nil
}

// encodeRecord zero-pads a checked name to the record width.
func encodeRecord(name string) []byte {
	rec := make([]byte, RecordSize)
	copy(rec, name)
	return rec
}

func isEmptyRecord(rec []byte) bool {
	return bytes.Equal(rec, emptyRecord[:])
}

// decodeRecord returns the name held by an occupied record: the bytes up to
// the first NUL, or the whole record when there is none.
func decodeRecord(rec []byte) (string, error) {
	n := bytes.IndexByte(rec, 0)
	if n == -1 {
		n = len(rec)
	}
	if !utf8.Valid(rec[:n]) {
		return "", errors.Errorf("record %q is not valid utf-8", rec[:n])
	}
	return string(rec[:n]), nil
}
