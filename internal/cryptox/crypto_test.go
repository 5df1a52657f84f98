package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	passphrase := []byte("correct-horse-battery")
	salt := []byte("0123456789abcdef")

	key1 := DeriveKey(passphrase, salt, 1000)
	key2 := DeriveKey(passphrase, salt, 1000)

	require.Len(t, key1, KeySize)
	require.Equal(t, key1, key2)
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	passphrase := []byte("correct-horse-battery")

	key1 := DeriveKey(passphrase, []byte("0123456789abcdef"), 1000)
	key2 := DeriveKey(passphrase, []byte("fedcba9876543210"), 1000)

	require.NotEqual(t, key1, key2)
}

func TestDeriveKey_DifferentPassphrases(t *testing.T) {
	salt := []byte("0123456789abcdef")

	key1 := DeriveKey([]byte("one"), salt, 1000)
	key2 := DeriveKey([]byte("two"), salt, 1000)

	require.NotEqual(t, key1, key2)
}

func TestDeriveKey_BadSaltPanics(t *testing.T) {
	require.Panics(t, func() {
		DeriveKey([]byte("p"), []byte("short"), 1000)
	})
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := DeriveKey([]byte("p"), []byte("0123456789abcdef"), 1000)
	plaintext := []byte("suspicious email body")

	ciphertext, nonce, err := Encrypt(plaintext, key)
	require.NoError(t, err)
	require.Len(t, nonce, NonceSize)
	require.NotEqual(t, plaintext, ciphertext)

	got, err := Decrypt(ciphertext, nonce, key)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	key := DeriveKey([]byte("p"), []byte("0123456789abcdef"), 1000)

	_, nonce1, err := Encrypt([]byte("x"), key)
	require.NoError(t, err)
	_, nonce2, err := Encrypt([]byte("x"), key)
	require.NoError(t, err)

	require.NotEqual(t, nonce1, nonce2)
}

func TestDecrypt_WrongKeyFailsAuthentication(t *testing.T) {
	salt := []byte("0123456789abcdef")
	key1 := DeriveKey([]byte("passphrase-one"), salt, 1000)
	key2 := DeriveKey([]byte("passphrase-two"), salt, 1000)

	ciphertext, nonce, err := Encrypt([]byte("secret"), key1)
	require.NoError(t, err)

	_, err = Decrypt(ciphertext, nonce, key2)
	require.ErrorIs(t, err, ErrDecryptFailed)
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	key := DeriveKey([]byte("p"), []byte("0123456789abcdef"), 1000)

	ciphertext, nonce, err := Encrypt([]byte("secret"), key)
	require.NoError(t, err)

	ciphertext[0] ^= 0xff
	_, err = Decrypt(ciphertext, nonce, key)
	require.ErrorIs(t, err, ErrDecryptFailed)
}

func TestEncryptDecryptJSON_RoundTrip(t *testing.T) {
	type payload struct {
		Timestamp int64  `json:"timestamp"`
		UserID    string `json:"userId"`
	}
	key := DeriveKey([]byte("p"), []byte("0123456789abcdef"), 1000)

	ciphertext, nonce, err := EncryptJSON(payload{Timestamp: 42, UserID: "u1"}, key)
	require.NoError(t, err)

	var got payload
	require.NoError(t, DecryptJSON(ciphertext, nonce, key, &got))
	require.Equal(t, payload{Timestamp: 42, UserID: "u1"}, got)
}
