// ABOUTME: Encryption key management for the credential store
// ABOUTME: Loads or generates the symmetric key file colocated with the database

package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeyFileName is the name of the key file inside the data directory.
// The file must never be committed to source control.
const KeyFileName = ".encryption_key"

// KeySize is the raw symmetric key length in bytes.
const KeySize = chacha20poly1305.KeySize

// ErrMalformedKey is returned when key material is not a valid
// base64url-encoded 256-bit key.
var ErrMalformedKey = errors.New("malformed encryption key")

// ObtainKey returns the symmetric key for a data directory.
//
// If explicit is non-empty it is decoded and used verbatim, with no
// persistence side effect. Otherwise the key file under dataDir is loaded,
// or a fresh key is generated and persisted there. The data directory tree
// is created if absent.
func ObtainKey(explicit string, dataDir string) ([]byte, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	if explicit != "" {
		return DecodeKey(explicit)
	}

	keyPath := filepath.Join(dataDir, KeyFileName)
	data, err := os.ReadFile(keyPath)
	if err == nil {
		return DecodeKey(strings.TrimSpace(string(data)))
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	if err := os.WriteFile(keyPath, []byte(EncodeKey(key)), 0o600); err != nil {
		return nil, fmt.Errorf("writing key file: %w", err)
	}

	slog.Info("generated new encryption key", "path", keyPath)
	return key, nil
}

// DecodeKey decodes base64url key material into raw key bytes.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedKey, len(key), KeySize)
	}
	return key, nil
}

// EncodeKey encodes raw key bytes into the textual key-file form.
func EncodeKey(key []byte) string {
	return base64.URLEncoding.EncodeToString(key)
}
