// Package secrets encrypts saved server credentials at rest and
// provides log-safe masking helpers. Sealing uses AES-256-GCM with a
// key derived via scrypt from a machine-local key file, so blobs are
// bound to the device that wrote them.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/scrypt"
)

const (
	keyFileName = "key"
	keyFileSize = 32
	saltSize    = 16

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// ErrCorruptBlob is returned when a sealed blob is too short or fails
// authentication.
var ErrCorruptBlob = errors.New("sealed blob is corrupt or from another machine")

// Keeper seals and opens credential blobs using a key file kept in its
// directory. The key file is created on first use with 0600 perms.
type Keeper struct {
	dir string
}

// NewKeeper returns a Keeper rooted at dir, creating it if needed.
func NewKeeper(dir string) (*Keeper, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create secrets dir: %w", err)
	}
	return &Keeper{dir: dir}, nil
}

func (k *Keeper) keyMaterial() ([]byte, error) {
	path := filepath.Join(k.dir, keyFileName)
	if b, err := os.ReadFile(path); err == nil && len(b) == keyFileSize {
		return b, nil
	}

	b := make([]byte, keyFileSize)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	return b, nil
}

func (k *Keeper) derive(salt []byte) (cipher.AEAD, error) {
	material, err := k.keyMaterial()
	if err != nil {
		return nil, err
	}
	key, err := scrypt.Key(material, salt, scryptN, scryptR, scryptP, 32)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext. The blob layout is salt || nonce || ciphertext.
func (k *Keeper) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	aead, err := k.derive(salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	blob := make([]byte, 0, saltSize+len(nonce)+len(plaintext)+aead.Overhead())
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	return aead.Seal(blob, nonce, plaintext, nil), nil
}

// Open decrypts a blob produced by Seal.
func (k *Keeper) Open(blob []byte) ([]byte, error) {
	if len(blob) < saltSize {
		return nil, ErrCorruptBlob
	}
	salt, rest := blob[:saltSize], blob[saltSize:]

	aead, err := k.derive(salt)
	if err != nil {
		return nil, err
	}
	if len(rest) < aead.NonceSize() {
		return nil, ErrCorruptBlob
	}
	nonce, ciphertext := rest[:aead.NonceSize()], rest[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrCorruptBlob
	}
	return plaintext, nil
}
