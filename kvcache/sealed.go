package kvcache

import (
	"crypto/cipher"
	"iter"
	"strings"

	"github.com/pkg/errors"

	"github.com/vuoto/vuoto/errdefs"
)

const opSeal = "kvcache: sealed"

// Keys starting with reservedPrefix belong to Sealed itself.
const reservedPrefix = "\x00vuoto/"

const (
	saltKey  = reservedPrefix + "salt"
	checkKey = reservedPrefix + "check"
)

var checkValue = []byte("vuoto")

// Sealed is a Cache encrypting every value with AES-256-GCM. The key is
// derived from a passphrase with PBKDF2 and a random salt kept in the
// underlying cache, so the same passphrase must be used on every open.
type Sealed struct {
	c   Cache
	gcm cipher.AEAD
}

var _ Cache = (*Sealed)(nil)

// NewSealed wraps c. On first use it generates the salt and stores a check
// value; afterwards a passphrase that does not open the check value is
// rejected with an invalid data error.
func NewSealed(c Cache, passphrase []byte) (*Sealed, error) {
	salt, ok, err := c.Get(saltKey)
	if err != nil {
		return nil, errdefs.IO(opSeal, err)
	}
	fresh := !ok
	if fresh {
		if salt, err = randomBytes(saltSize, "salt"); err != nil {
			return nil, errdefs.IO(opSeal, err)
		}
	}
	gcm, err := passphraseCipher(passphrase, salt)
	if err != nil {
		return nil, errdefs.IO(opSeal, err)
	}
	s := &Sealed{c: c, gcm: gcm}

	if fresh {
		if err := c.Set(saltKey, salt); err != nil {
			return nil, errdefs.IO(opSeal, err)
		}
		if err := s.set(checkKey, checkValue); err != nil {
			return nil, err
		}
		return s, nil
	}

	_, ok, err = s.get(checkKey)
	switch {
	case errdefs.IsInvalidData(err):
		return nil, errdefs.InvalidData(opSeal, errors.New("wrong passphrase"))
	case err != nil:
		return nil, err
	case !ok:
		// An earlier first open stopped between the salt and the check value.
		if err := s.set(checkKey, checkValue); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Sealed) Get(key string) ([]byte, bool, error) {
	if isReserved(key) {
		return nil, false, nil
	}
	return s.get(key)
}

func (s *Sealed) get(key string) ([]byte, bool, error) {
	v, ok, err := s.c.Get(key)
	if err != nil {
		return nil, false, errdefs.IO(opGet, err)
	}
	if !ok {
		return nil, false, nil
	}
	plaintext, err := unseal(s.gcm, key, v)
	if err != nil {
		return nil, false, errdefs.InvalidData(opGet, errors.Wrapf(err, "key %q", key))
	}
	return plaintext, true, nil
}

// Set encrypts and stores value. Keys with the reserved prefix are rejected.
func (s *Sealed) Set(key string, value []byte) error {
	if isReserved(key) {
		return errdefs.InvalidInput(opSet, "key uses a reserved prefix")
	}
	if value == nil {
		return errdefs.InvalidInput(opSet, "value is nil")
	}
	return s.set(key, value)
}

func (s *Sealed) set(key string, value []byte) error {
	v, err := seal(s.gcm, key, value)
	if err != nil {
		return errdefs.IO(opSet, err)
	}
	return errdefs.IO(opSet, s.c.Set(key, v))
}

// All decrypts entries as they are yielded and skips reserved keys.
func (s *Sealed) All() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for e, err := range s.c.All() {
			if err != nil {
				yield(Entry{}, errdefs.IO(opAll, err))
				return
			}
			if isReserved(e.Key) {
				continue
			}
			plaintext, err := unseal(s.gcm, e.Key, e.Value)
			if err != nil {
				yield(Entry{}, errdefs.InvalidData(opAll, errors.Wrapf(err, "key %q", e.Key)))
				return
			}
			if !yield(Entry{Key: e.Key, Value: plaintext}, nil) {
				return
			}
		}
	}
}

// Close closes the underlying cache.
func (s *Sealed) Close() error {
	return s.c.Close()
}

func isReserved(key string) bool {
	return strings.HasPrefix(key, reservedPrefix)
}
