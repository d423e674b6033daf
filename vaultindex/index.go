package vaultindex

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vuoto/vuoto/errdefs"
)

const (
	opOpen   = "vaultindex: open"
	opAdd    = "vaultindex: add"
	opRemove = "vaultindex: remove"
	opClose  = "vaultindex: close"
)

// An Index is the registry of vault names backed by a single file. It is not
// safe for concurrent use, and no other writer may touch the file while it is
// open.
type Index struct {
	f     *file
	path  string
	names []string
	log   logrus.FieldLogger
}

// Open opens the index file located in dir, creating it if it does not exist.
// The directory itself must already exist.
//
// A file whose header does not carry the expected magic tag and version is
// truncated and reinitialized: every record it held is discarded.
func Open(dir string, opts ...Option) (*Index, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	path := filepath.Join(dir, FileName)
	osf, err := o.open(path)
	if err != nil {
		return nil, errdefs.IO(opOpen, errors.Wrapf(err, "cannot open index file %q", path))
	}

	idx := &Index{
		f:    newFile(osf),
		path: path,
		log:  o.logger.WithField("path", path),
	}
	if err := idx.load(); err != nil {
		_ = idx.f.close()
		return nil, err
	}
	return idx, nil
}

func (idx *Index) load() error {
	valid, empty, err := idx.f.checkHeader()
	if err != nil {
		return errdefs.IO(opOpen, err)
	}
	if !valid {
		if !empty {
			idx.log.Warn("index header is invalid or from another version, reinitializing")
		}
		if err := idx.f.reset(); err != nil {
			return errdefs.IO(opOpen, err)
		}
	}

	_, _, err = idx.f.scan(func(slot int64, rec []byte) (bool, error) {
		if isEmptyRecord(rec) {
			return false, nil
		}
		name, err := decodeRecord(rec)
		if err != nil {
			return false, errdefs.InvalidData(opOpen, errors.Wrapf(err, "slot %d", slot))
		}
		idx.names = append(idx.names, name)
		return false, nil
	})
	return errdefs.IO(opOpen, err)
}

// Path returns the location of the index file.
func (idx *Index) Path() string {
	return idx.path
}

// Vaults returns the registered names in slot order for the names found when
// opening, followed by the names added since.
func (idx *Index) Vaults() []string {
	return slices.Clone(idx.names)
}

// Contains reports whether name is registered.
func (idx *Index) Contains(name string) bool {
	return slices.Contains(idx.names, name)
}

// Add registers name. Adding a registered name is a no-op.
//
// The record goes to the first empty slot, or is appended when there is none,
// and is synced to stable storage before Add returns. On an I/O error the
// state of the file is unknown and the index should be reopened.
func (idx *Index) Add(name string) error {
	if err := checkName(name); err != nil {
		return errdefs.InvalidInput(opAdd, err.Error())
	}
	if idx.Contains(name) {
		return nil
	}
	if idx.f == nil {
		return errdefs.IO(opAdd, os.ErrClosed)
	}

	slot, _, err := idx.f.scan(func(_ int64, rec []byte) (bool, error) {
		return isEmptyRecord(rec), nil
	})
	if err != nil {
		return errdefs.IO(opAdd, err)
	}
	if err := idx.f.writeSlot(slot, encodeRecord(name)); err != nil {
		return errdefs.IO(opAdd, err)
	}

	idx.log.WithFields(logrus.Fields{"vault": name, "slot": slot}).Debug("vault added")
	idx.names = append(idx.names, name)
	return nil
}

// Remove unregisters name and reports whether it was registered.
//
// The first slot holding name is zeroed and synced, leaving it free for a
// later Add. A name known in memory but missing from the file is still
// unregistered and reported as removed. When zeroing the slot fails the name
// is already unregistered in memory: Remove reports true with the error, and
// the index should be reopened to learn the state of the file.
func (idx *Index) Remove(name string) (bool, error) {
	pos := slices.Index(idx.names, name)
	if pos == -1 {
		return false, nil
	}
	if idx.f == nil {
		return false, errdefs.IO(opRemove, os.ErrClosed)
	}

	slot, found, err := idx.f.scan(func(slot int64, rec []byte) (bool, error) {
		if isEmptyRecord(rec) {
			return false, nil
		}
		got, err := decodeRecord(rec)
		if err != nil {
			return false, errdefs.InvalidData(opRemove, errors.Wrapf(err, "slot %d", slot))
		}
		return got == name, nil
	})
	if err != nil {
		return false, errdefs.IO(opRemove, err)
	}

	idx.names = slices.Delete(idx.names, pos, pos+1)

	if !found {
		idx.log.WithField("vault", name).Warn("vault missing from index file, removed from memory only")
		return true, nil
	}
	if err := idx.f.writeSlot(slot, make([]byte, RecordSize)); err != nil {
		return true, errdefs.IO(opRemove, err)
	}

	idx.log.WithFields(logrus.Fields{"vault": name, "slot": slot}).Debug("vault removed")
	return true, nil
}

// Close closes the index file. Further Add and Remove calls fail.
func (idx *Index) Close() error {
	if idx.f == nil {
		return nil
	}
	f := idx.f
	idx.f = nil
	if err := f.close(); err != nil {
		return errdefs.IO(opClose, errors.Wrap(err, "cannot close index file"))
	}
	return nil
}
