package cryptox

import (
	"encoding/json"
	"fmt"
)

// EncryptedField is the wire form of a single encrypted record field:
// a ciphertext/nonce pair, each base64-encoded by the JSON codec.
// The encoding is opaque to callers; only this package produces and
// parses it.
type EncryptedField struct {
	Ciphertext []byte `json:"ciphertext"`
	Nonce      []byte `json:"nonce"`
}

// EncryptField encrypts plaintext under key and returns the serialized
// encrypted-field string.
func EncryptField(plaintext, key []byte) (string, error) {
	ciphertext, nonce, err := Encrypt(plaintext, key)
	if err != nil {
		return "", err
	}
	return encodeField(EncryptedField{Ciphertext: ciphertext, Nonce: nonce})
}

// DecryptField parses an encrypted-field string and decrypts it under key.
// A malformed field or a wrong key yields an error wrapping ErrDecryptFailed.
func DecryptField(field string, key []byte) ([]byte, error) {
	f, err := decodeField(field)
	if err != nil {
		return nil, err
	}
	return Decrypt(f.Ciphertext, f.Nonce, key)
}

// EncryptJSONField serializes v to JSON, encrypts it and returns the
// serialized encrypted-field string.
func EncryptJSONField(v any, key []byte) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return EncryptField(plaintext, key)
}

// DecryptJSONField decrypts an encrypted-field string and unmarshals the
// plaintext JSON into v.
func DecryptJSONField(field string, key []byte, v any) error {
	plaintext, err := DecryptField(field, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, v)
}

func encodeField(f EncryptedField) (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeField(s string) (*EncryptedField, error) {
	var f EncryptedField
	if err := json.Unmarshal([]byte(s), &f); err != nil {
		return nil, fmt.Errorf("%w: malformed encrypted field: %v", ErrDecryptFailed, err)
	}
	return &f, nil
}
