// ABOUTME: Tests for encryption key generation, persistence and decoding
// ABOUTME: Covers key file reuse, explicit keys and malformed key material

package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestObtainKeyGeneratesAndPersists(t *testing.T) {
	dir := t.TempDir()

	key, err := ObtainKey("", dir)
	if err != nil {
		t.Fatalf("ObtainKey failed: %v", err)
	}
	if len(key) != KeySize {
		t.Errorf("expected %d-byte key, got %d", KeySize, len(key))
	}

	keyPath := filepath.Join(dir, KeyFileName)
	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("key file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected key file mode 0600, got %o", perm)
	}

	data, err := os.ReadFile(keyPath)
	if err != nil {
		t.Fatalf("reading key file: %v", err)
	}
	if string(data) != EncodeKey(key) {
		t.Error("key file content does not match returned key")
	}
}

func TestObtainKeyStableAcrossCalls(t *testing.T) {
	dir := t.TempDir()

	first, err := ObtainKey("", dir)
	if err != nil {
		t.Fatalf("first ObtainKey failed: %v", err)
	}
	second, err := ObtainKey("", dir)
	if err != nil {
		t.Fatalf("second ObtainKey failed: %v", err)
	}

	if EncodeKey(first) != EncodeKey(second) {
		t.Error("expected the same key on every call for one data dir")
	}
}

func TestObtainKeyCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	if _, err := ObtainKey("", dir); err != nil {
		t.Fatalf("ObtainKey failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("data dir not created: %v", err)
	}
}

func TestObtainKeyExplicitSkipsKeyFile(t *testing.T) {
	dir := t.TempDir()

	raw := make([]byte, KeySize)
	for i := range raw {
		raw[i] = byte(i)
	}
	encoded := EncodeKey(raw)

	key, err := ObtainKey(encoded, dir)
	if err != nil {
		t.Fatalf("ObtainKey with explicit key failed: %v", err)
	}
	if EncodeKey(key) != encoded {
		t.Error("explicit key not used verbatim")
	}

	// An explicit key must not touch the key file.
	if _, err := os.Stat(filepath.Join(dir, KeyFileName)); !os.IsNotExist(err) {
		t.Error("expected no key file when an explicit key is supplied")
	}
}

func TestObtainKeyTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()

	raw := make([]byte, KeySize)
	encoded := EncodeKey(raw)
	keyPath := filepath.Join(dir, KeyFileName)
	if err := os.WriteFile(keyPath, []byte(encoded+"\n"), 0o600); err != nil {
		t.Fatalf("writing key file: %v", err)
	}

	key, err := ObtainKey("", dir)
	if err != nil {
		t.Fatalf("ObtainKey failed on key file with trailing newline: %v", err)
	}
	if EncodeKey(key) != encoded {
		t.Error("key loaded from file does not match written key")
	}
}

func TestObtainKeyMalformedKeyFile(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, KeyFileName)
	if err := os.WriteFile(keyPath, []byte("not a key"), 0o600); err != nil {
		t.Fatalf("writing key file: %v", err)
	}

	_, err := ObtainKey("", dir)
	if !errors.Is(err, ErrMalformedKey) {
		t.Errorf("expected ErrMalformedKey, got %v", err)
	}
}

func TestObtainKeyUnwritableDataDir(t *testing.T) {
	// A regular file as the parent makes MkdirAll fail even when running
	// as root, unlike permission bits.
	parent := t.TempDir()
	blocker := filepath.Join(parent, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("writing blocker file: %v", err)
	}

	if _, err := ObtainKey("", filepath.Join(blocker, "data")); err == nil {
		t.Error("expected error for unwritable data dir")
	}
}

func TestDecodeKeyRejectsWrongLength(t *testing.T) {
	short := EncodeKey(make([]byte, 16))
	if _, err := DecodeKey(short); !errors.Is(err, ErrMalformedKey) {
		t.Errorf("expected ErrMalformedKey for short key, got %v", err)
	}
}

func TestDecodeKeyRejectsBadEncoding(t *testing.T) {
	if _, err := DecodeKey("%%% not base64 %%%"); !errors.Is(err, ErrMalformedKey) {
		t.Errorf("expected ErrMalformedKey for bad encoding, got %v", err)
	}
}
