// Package cryptox implements the passphrase key derivation and the
// authenticated cipher protecting analysis records.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/phishguard/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the derived key length in bytes (AES-256).
	KeySize = 32
	// SaltSize is the per-user salt length in bytes.
	SaltSize = 16
	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 12
	// DefaultIterations is the PBKDF2 iteration count used when the caller
	// passes a non-positive value.
	DefaultIterations = 100000
)

// ErrDecryptFailed is returned when a ciphertext/nonce/key combination does
// not authenticate: tampered data or a key derived from a wrong passphrase.
// Callers distinguish wrong-passphrase from other failures with errors.Is.
var ErrDecryptFailed = errors.New("decryption failed")

// GenerateSalt returns a fresh random salt of SaltSize bytes.
func GenerateSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// DeriveKey derives a KeySize-byte symmetric key from the passphrase and salt
// using PBKDF2-SHA256. Same inputs always yield the same key.
//
// A wrong salt length is a programmer error and panics; salts are produced
// only by GenerateSalt and are immutable per user.
func DeriveKey(passphrase, salt []byte, iterations int) []byte {
	if len(salt) != SaltSize {
		panic(fmt.Sprintf("cryptox: salt must be %d bytes, got %d", SaltSize, len(salt)))
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return pbkdf2.Key(passphrase, salt, iterations, KeySize, sha256.New)
}

// Encrypt encrypts plaintext with AES-GCM under key. A new random
// NonceSize-byte nonce is generated on every call; a nonce is never reused
// with the same key.
func Encrypt(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	nonce = common.GenerateRandByteArray(aesgcm.NonceSize())
	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)

	return ciphertext, nonce, nil
}

// Decrypt reverses Encrypt. It returns ErrDecryptFailed (wrapped) when the
// ciphertext does not authenticate under the given nonce and key.
func Decrypt(ciphertext, nonce, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}
	return plaintext, nil
}

// EncryptJSON serializes v to JSON and encrypts the result.
func EncryptJSON(v any, key []byte) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	return Encrypt(plaintext, key)
}

// DecryptJSON decrypts the ciphertext and unmarshals the resulting JSON
// into v.
func DecryptJSON(ciphertext, nonce, key []byte, v any) error {
	plaintext, err := Decrypt(ciphertext, nonce, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, v)
}
