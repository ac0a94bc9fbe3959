// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// envelopeSaltSize is the size of the random per-message salt that feeds
	// key derivation.
	envelopeSaltSize = 16

	// envelopeKeySize selects AES-256.
	envelopeKeySize = 32
)

// envelopeInfo domain-separates envelope keys from any other key derived
// from the same secret.
var envelopeInfo = []byte("payload-envelope/v1")

var (
	// ErrCiphertextTooShort is returned when the decoded blob cannot even hold
	// the salt and nonce.
	ErrCiphertextTooShort = errors.New("ciphertext too short")

	// ErrDecryptionFailed wraps authentication failures (wrong key or
	// tampered ciphertext).
	ErrDecryptionFailed = errors.New("decryption failed")
)

// envelopeCodec is the private implementation of [EnvelopeCodec].
//
// Blob layout, base64 (standard encoding):
//
//	salt (16 bytes) ‖ nonce (12 bytes) ‖ AES-256-GCM ciphertext
//
// The AES key is HKDF-SHA256(secret=key, salt=salt, info=envelopeInfo), so
// every message uses a fresh key even when the configured key never changes.
type envelopeCodec struct{}

// NewEnvelopeCodec constructs an [EnvelopeCodec].
func NewEnvelopeCodec() EnvelopeCodec {
	return &envelopeCodec{}
}

// Encrypt implements [EnvelopeCodec].
func (c *envelopeCodec) Encrypt(payload any, key string) (string, error) {
	// 1. Canonical JSON: maps are key-sorted, raw messages compacted
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	// 2. Per-message salt
	salt := make([]byte, envelopeSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	gcm, err := newEnvelopeAEAD(key, salt)
	if err != nil {
		return "", err
	}

	// 3. Random nonce
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	// 4. salt || nonce || ciphertext
	blob := make([]byte, 0, len(salt)+len(nonce)+len(plaintext)+gcm.Overhead())
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = gcm.Seal(blob, nonce, plaintext, nil)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt implements [EnvelopeCodec].
func (c *envelopeCodec) Decrypt(ciphertext, key string) any {
	value, err := c.Open(ciphertext, key)
	if err != nil {
		return nil
	}
	return value
}

// Open implements [EnvelopeCodec].
func (c *envelopeCodec) Open(ciphertext, key string) (any, error) {
	plaintext, err := c.open(ciphertext, key)
	if err != nil {
		return nil, err
	}

	var value any
	if err := json.Unmarshal(plaintext, &value); err != nil {
		return string(plaintext), nil
	}
	return value, nil
}

// OpenInto implements [EnvelopeCodec].
func (c *envelopeCodec) OpenInto(ciphertext, key string, target any) error {
	plaintext, err := c.open(ciphertext, key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(plaintext, target); err != nil {
		return fmt.Errorf("unmarshal plaintext: %w", err)
	}
	return nil
}

func (c *envelopeCodec) open(ciphertext, key string) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}

	if len(blob) < envelopeSaltSize {
		return nil, ErrCiphertextTooShort
	}
	salt, rest := blob[:envelopeSaltSize], blob[envelopeSaltSize:]

	gcm, err := newEnvelopeAEAD(key, salt)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(rest) < nonceSize {
		return nil, ErrCiphertextTooShort
	}
	nonce, sealed := rest[:nonceSize], rest[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

func newEnvelopeAEAD(key string, salt []byte) (cipher.AEAD, error) {
	derived := make([]byte, envelopeKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(key), salt, envelopeInfo), derived); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}
