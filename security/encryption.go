package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// SealedPrefix marks a value sealed by a Cipher.
const SealedPrefix = "enc:"

// ErrNoKey is returned when sealing without a configured key.
var ErrNoKey = errors.New("encryption key not initialized")

// Cipher seals sensitive record fields with AES-GCM.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a cipher from a passphrase. The key is padded or truncated
// to 32 bytes. An empty key yields a cipher that refuses to seal.
func NewCipher(key string) (*Cipher, error) {
	if key == "" {
		return &Cipher{}, nil
	}

	// Pad the key to 32 bytes if needed
	if len(key) < 32 {
		padding := make([]byte, 32-len(key))
		key = key + string(padding)
	}

	block, err := aes.NewCipher([]byte(key[:32]))
	if err != nil {
		return nil, fmt.Errorf("failed to create block cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Cipher{aead: gcm}, nil
}

// Enabled reports whether the cipher has a key.
func (c *Cipher) Enabled() bool {
	return c != nil && c.aead != nil
}

// IsSealed reports whether value was produced by Seal.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, SealedPrefix)
}

// Seal encrypts plaintext and returns it as "enc:<base64>".
func (c *Cipher) Seal(plaintext string) (string, error) {
	if !c.Enabled() {
		return "", ErrNoKey
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return SealedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open decrypts a sealed value. Values without the sealed prefix are returned
// unchanged so plaintext written before a key was configured stays readable.
func (c *Cipher) Open(value string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}
	if !c.Enabled() {
		return "", ErrNoKey
	}

	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, SealedPrefix))
	if err != nil {
		return "", err
	}

	if len(ciphertext) < c.aead.NonceSize() {
		return "", errors.New("ciphertext too short")
	}

	nonce := ciphertext[:c.aead.NonceSize()]
	ciphertext = ciphertext[c.aead.NonceSize():]

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}
