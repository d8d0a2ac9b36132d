// Package cryptoutil seals short secrets (bearer tokens) for storage in client-held session tokens.
package cryptoutil

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

// Sealer encrypts and authenticates a value bound to associated data (e.g. a session id).
// Opening with different associated data fails.
type Sealer interface {
	Seal(plaintext, associated []byte) (string, error)
	Open(sealed string, associated []byte) ([]byte, error)
}

const (
	// Versioned prefix to allow future key/algorithm rotations.
	sealedPrefixV1 = "v1:"
	noopPrefix     = "noop:"
)

// ErrSealedFormat is returned for values not produced by the matching Sealer.
var ErrSealedFormat = errors.New("unrecognized sealed value")

// AESGCMSealer implements Sealer using AES-256-GCM.
type AESGCMSealer struct {
	aead cipher.AEAD
}

// NewAESGCMSealer constructs a new AESGCMSealer. Key must be 32 bytes (AES-256).
func NewAESGCMSealer(key []byte) (*AESGCMSealer, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("aes-gcm key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCMSealer{aead: aead}, nil
}

// Seal encrypts plaintext with a random nonce and returns "v1:" + base64url(nonce||ciphertext).
func (s *AESGCMSealer) Seal(plaintext, associated []byte) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	out := s.aead.Seal(nonce, nonce, plaintext, associated)
	return sealedPrefixV1 + base64.RawURLEncoding.EncodeToString(out), nil
}

// Open reverses Seal. Plain or noop-sealed values are refused.
func (s *AESGCMSealer) Open(sealed string, associated []byte) ([]byte, error) {
	b64, ok := strings.CutPrefix(sealed, sealedPrefixV1)
	if !ok {
		return nil, ErrSealedFormat
	}
	data, err := base64.RawURLEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode sealed value: %w", err)
	}
	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize+s.aead.Overhead() {
		return nil, errors.New("sealed value too short")
	}
	return s.aead.Open(nil, data[:nonceSize], data[nonceSize:], associated)
}

// NoopSealer stores plaintext with a prefix marker. Used when no key is configured and in tests.
type NoopSealer struct{}

func (NoopSealer) Seal(plaintext, _ []byte) (string, error) {
	return noopPrefix + base64.RawURLEncoding.EncodeToString(plaintext), nil
}

func (NoopSealer) Open(sealed string, _ []byte) ([]byte, error) {
	b64, ok := strings.CutPrefix(sealed, noopPrefix)
	if !ok {
		return nil, ErrSealedFormat
	}
	return base64.RawURLEncoding.DecodeString(b64)
}
