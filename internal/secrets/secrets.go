// Package secrets seals per-owner credentials (API keys) before they are
// written to the document store.
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

// Prefix marks a sealed value. Values without it are treated as plaintext
// so documents written before sealing was enabled still load.
const Prefix = "sealed:"

const nonceSize = 24

// ErrCorrupt is returned when a sealed value cannot be opened.
var ErrCorrupt = errors.New("sealed value is corrupt or was sealed with a different key")

// Sealer encrypts and decrypts short strings with NaCl secretbox.
type Sealer struct {
	key [32]byte
}

// NewSealer derives the box key from passphrase.
func NewSealer(passphrase string) (*Sealer, error) {
	if strings.TrimSpace(passphrase) == "" {
		return nil, errors.New("secrets key is empty")
	}
	return &Sealer{key: sha256.Sum256([]byte(passphrase))}, nil
}

// Seal encrypts plaintext. Only the empty string passes through: a value
// that merely looks sealed is still user input and is sealed like any other.
func (s *Sealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return plaintext, nil
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Go Pattern: the nonce is the prefix of the sealed output
	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return Prefix + base64.StdEncoding.EncodeToString(box), nil
}

// Open decrypts a value produced by Seal. Plaintext passes through.
func (s *Sealer) Open(value string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}

	box, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, Prefix))
	if err != nil || len(box) < nonceSize+secretbox.Overhead {
		return "", ErrCorrupt
	}

	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])

	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrCorrupt
	}
	return string(plain), nil
}

// IsSealed reports whether value carries the sealed prefix.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, Prefix)
}
