package kvcache

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const keySize = 32

const (
	saltSize   = 32
	pbkdf2Iter = 100000
)

// sealedValue is a GCM nonce followed by the ciphertext and its tag.
type sealedValue []byte

func newSealedValue(nonce, ciphertext []byte) sealedValue {
	data := make(sealedValue, len(nonce)+len(ciphertext))
	copy(data[:len(nonce)], nonce)
	copy(data[len(nonce):], ciphertext)
	return data
}

func (v sealedValue) split(nonceSize int) (nonce, ciphertext []byte, err error) {
	if len(v) < nonceSize {
		return nil, nil, errors.Errorf("sealed value is truncated: %d bytes", len(v))
	}
	return v[:nonceSize], v[nonceSize:], nil
}

func randomBytes(n int, what string) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.Wrapf(err, "cannot generate %s", what)
	}
	return b, nil
}

// passphraseCipher derives an AES-256 key from passphrase and salt and
// returns the GCM cipher using it.
func passphraseCipher(passphrase, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(pbkdf2.Key(passphrase, salt, pbkdf2Iter, keySize, sha256.New))
	if err != nil {
		return nil, errors.Wrap(err, "aes")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "gcm")
	}
	return gcm, nil
}

// seal encrypts plaintext, binding it to key so a ciphertext cannot be moved
// to another key unnoticed.
func seal(gcm cipher.AEAD, key string, plaintext []byte) (sealedValue, error) {
	nonce, err := randomBytes(gcm.NonceSize(), "nonce")
	if err != nil {
		return nil, err
	}
	ciphertext := gcm.Seal(nil, nonce, plaintext, []byte(key))
	return newSealedValue(nonce, ciphertext), nil
}

func unseal(gcm cipher.AEAD, key string, v sealedValue) ([]byte, error) {
	nonce, ciphertext, err := v.split(gcm.NonceSize())
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return nil, errors.Wrap(err, "cannot decrypt ciphertext")
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}
