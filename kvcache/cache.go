// Package kvcache provides the key/value store holding the contents of the
// vaults registered in the vault index.
//
// A Cache maps string keys to opaque values. BoltCache persists them in a
// bbolt database and Sealed encrypts values on top of any Cache. Every error
// is an errdefs error, so storage failures surface as I/O failures.
package kvcache

import (
	"iter"
)

// An Entry is a key/value pair yielded by Cache.All.
type Entry struct {
	Key   string
	Value []byte
}

// Cache is the capability set the vuoto tools need from a key/value store.
type Cache interface {
	// Get returns the value stored for key and whether it exists.
	Get(key string) ([]byte, bool, error)

	// Set stores value for key, replacing any previous value.
	Set(key string, value []byte) error

	// All returns a lazy iterator over every entry in key order. Each call
	// starts from the first entry. An error is yielded at most once, as the
	// last element.
	All() iter.Seq2[Entry, error]

	Close() error
}
