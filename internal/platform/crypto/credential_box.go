// Package crypto provides at-rest encryption for per-user external-provider
// credentials (messaging account API keys).
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrInvalidCiphertext is returned when a stored value cannot be decrypted,
// either because the key changed or the value was corrupted.
var ErrInvalidCiphertext = errors.New("credential: invalid ciphertext")

// CredentialBox encrypts and decrypts small secrets (API keys) at rest using
// XChaCha20-Poly1305, an AEAD cipher in the same class as the Fernet scheme
// the source used for per-user credential storage.
type CredentialBox struct {
	aead chacha20poly1305.AEAD
}

// NewCredentialBox builds a box from a 32-byte key, typically loaded from
// EncryptionConfig.Key (base64-encoded in the environment).
func NewCredentialBox(key []byte) (*CredentialBox, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("credential box: %w", err)
	}
	return &CredentialBox{aead: aead}, nil
}

// Encrypt returns a base64-encoded nonce||ciphertext string suitable for
// storage in the messaging_accounts.encrypted_api_key column.
func (b *CredentialBox) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("credential box: nonce: %w", err)
	}
	sealed := b.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (b *CredentialBox) Decrypt(stored string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	nonceSize := b.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", ErrInvalidCiphertext
	}
	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plaintext), nil
}
