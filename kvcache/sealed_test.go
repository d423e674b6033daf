package kvcache

import (
	"bytes"
	"iter"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuoto/vuoto/errdefs"
)

func TestSealedRoundTrip(t *testing.T) {
	raw := openBolt(t, filepath.Join(t.TempDir(), "vault"))
	s, err := NewSealed(raw, []byte("passphrase"))
	require.NoError(t, err)

	require.NoError(t, s.Set("work/github", []byte("s3cret")))
	require.NoError(t, s.Set("work/empty", []byte{}))

	v, ok, err := s.Get("work/github")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("s3cret"), v)

	v, ok, err = s.Get("work/empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)

	_, ok, err = s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	// The underlying store never sees the plaintext.
	stored, _, err := raw.Get("work/github")
	require.NoError(t, err)
	assert.False(t, bytes.Contains(stored, []byte("s3cret")))
}

func TestSealedAllHidesReservedKeys(t *testing.T) {
	s, err := NewSealed(openBolt(t, filepath.Join(t.TempDir(), "vault")), []byte("passphrase"))
	require.NoError(t, err)

	require.NoError(t, s.Set("b", []byte("2")))
	require.NoError(t, s.Set("a", []byte("1")))

	assert.Equal(t, []Entry{
		{Key: "a", Value: []byte("1")},
		{Key: "b", Value: []byte("2")},
	}, collect(t, s))

	_, ok, err := s.Get(saltKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, errdefs.IsInvalidInput(s.Set(checkKey, []byte("x"))))
	assert.True(t, errdefs.IsInvalidInput(s.Set("k", nil)))
}

func TestSealedReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault")

	raw, err := Open(path, 16)
	require.NoError(t, err)
	s, err := NewSealed(raw, []byte("passphrase"))
	require.NoError(t, err)
	require.NoError(t, s.Set("k", []byte("v")))
	require.NoError(t, s.Close())

	raw = openBolt(t, path)
	_, err = NewSealed(raw, []byte("wrong"))
	require.Error(t, err)
	assert.True(t, errdefs.IsInvalidData(err))
	assert.Contains(t, err.Error(), "wrong passphrase")

	s, err = NewSealed(raw, []byte("passphrase"))
	require.NoError(t, err)
	v, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}

func TestSealedRejectsMovedCiphertext(t *testing.T) {
	raw := openBolt(t, filepath.Join(t.TempDir(), "vault"))
	s, err := NewSealed(raw, []byte("passphrase"))
	require.NoError(t, err)
	require.NoError(t, s.Set("a", []byte("1")))

	stored, _, err := raw.Get("a")
	require.NoError(t, err)
	require.NoError(t, raw.Set("b", stored))

	_, _, err = s.Get("b")
	require.Error(t, err)
	assert.True(t, errdefs.IsInvalidData(err))

	var iterErr error
	for _, err := range s.All() {
		if err != nil {
			iterErr = err
		}
	}
	assert.True(t, errdefs.IsInvalidData(iterErr))
}

func TestSealedTruncatedValue(t *testing.T) {
	raw := openBolt(t, filepath.Join(t.TempDir(), "vault"))
	s, err := NewSealed(raw, []byte("passphrase"))
	require.NoError(t, err)
	require.NoError(t, raw.Set("short", []byte{1, 2, 3}))

	_, _, err = s.Get("short")
	assert.True(t, errdefs.IsInvalidData(err))
}

var errBroken = errors.New("broken store")

// brokenCache fails every operation with an uncategorized error.
type brokenCache struct{}

func (brokenCache) Get(string) ([]byte, bool, error) { return nil, false, errBroken }
func (brokenCache) Set(string, []byte) error         { return errBroken }
func (brokenCache) Close() error                     { return nil }
func (brokenCache) All() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		yield(Entry{}, errBroken)
	}
}

func TestSealedWrapsCollaboratorFailures(t *testing.T) {
	_, err := NewSealed(brokenCache{}, []byte("passphrase"))
	require.Error(t, err)
	assert.True(t, errdefs.IsIO(err))
	assert.ErrorIs(t, err, errBroken)

	s := &Sealed{c: brokenCache{}}
	_, _, err = s.Get("k")
	assert.True(t, errdefs.IsIO(err))

	var iterErr error
	for _, err := range s.All() {
		iterErr = err
	}
	assert.True(t, errdefs.IsIO(iterErr))
	assert.ErrorIs(t, iterErr, errBroken)
}

func TestSealedValueSplit(t *testing.T) {
	v := newSealedValue([]byte{1, 2}, []byte{3, 4, 5})
	nonce, ct, err := v.split(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, nonce)
	assert.Equal(t, []byte{3, 4, 5}, ct)

	_, _, err = sealedValue{1}.split(2)
	assert.Error(t, err)
}
