package kvcache

import (
	"bytes"
	"iter"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/vuoto/vuoto/errdefs"
)

const (
	opOpen  = "kvcache: open"
	opGet   = "kvcache: get"
	opSet   = "kvcache: set"
	opAll   = "kvcache: all"
	opClose = "kvcache: close"
)

// entrySizeHint is the number of bytes of mmap reserved per entry of the
// capacity hint.
const entrySizeHint = 4096

var bucketName = []byte("entries")

var errStopIteration = errors.New("iteration stopped")

type boltOptions struct {
	timeout time.Duration
}

// Option configures Open.
type Option func(*boltOptions)

// WithLockTimeout sets how long Open waits for the file lock held by another
// process. Zero waits forever.
func WithLockTimeout(d time.Duration) Option {
	return func(o *boltOptions) {
		o.timeout = d
	}
}

// BoltCache is a Cache persisted in a bbolt database file. It is safe for
// concurrent use.
type BoltCache struct {
	db   *bolt.DB
	path string
}

var _ Cache = (*BoltCache)(nil)

// Open opens the database at path, creating it if it does not exist.
// capacity is the number of entries the caller expects to store; it sizes the
// initial memory map and does not limit the number of entries.
func Open(path string, capacity int, opts ...Option) (*BoltCache, error) {
	o := boltOptions{timeout: 10 * time.Second}
	for _, fn := range opts {
		fn(&o)
	}

	bo := &bolt.Options{Timeout: o.timeout}
	if capacity > 0 {
		bo.InitialMmapSize = capacity * entrySizeHint
	}
	db, err := bolt.Open(path, 0600, bo)
	if err != nil {
		return nil, errdefs.IO(opOpen, errors.Wrapf(err, "cannot open cache %q", path))
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errdefs.IO(opOpen, errors.Wrap(err, "cannot create bucket"))
	}
	return &BoltCache{db: db, path: path}, nil
}

// Path returns the location of the database file.
func (c *BoltCache) Path() string {
	return c.path
}

func (c *BoltCache) Get(key string) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)
	err := c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketName).Get([]byte(key)); v != nil {
			value, found = append([]byte{}, v...), true
		}
		return nil
	})
	if err != nil {
		return nil, false, errdefs.IO(opGet, errors.Wrapf(err, "cannot read key %q", key))
	}
	return value, found, nil
}

// Set stores value for key. The key must not be empty and the value must not
// be nil but can be empty.
func (c *BoltCache) Set(key string, value []byte) error {
	if key == "" {
		return errdefs.InvalidInput(opSet, "key is empty")
	}
	if value == nil {
		return errdefs.InvalidInput(opSet, "value is nil")
	}
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
	if err != nil {
		return errdefs.IO(opSet, errors.Wrapf(err, "cannot write key %q", key))
	}
	return nil
}

// All iterates over the entries inside a read transaction. The loop body must
// not write to the cache.
func (c *BoltCache) All() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		err := c.db.View(func(tx *bolt.Tx) error {
			cur := tx.Bucket(bucketName).Cursor()
			for k, v := cur.First(); k != nil; k, v = cur.Next() {
				if !yield(Entry{Key: string(k), Value: bytes.Clone(v)}, nil) {
					return errStopIteration
				}
			}
			return nil
		})
		if err != nil && err != errStopIteration {
			yield(Entry{}, errdefs.IO(opAll, errors.Wrap(err, "cannot iterate entries")))
		}
	}
}

func (c *BoltCache) Close() error {
	if err := c.db.Close(); err != nil {
		return errdefs.IO(opClose, errors.Wrap(err, "cannot close cache"))
	}
	return nil
}
