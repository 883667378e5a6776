// ABOUTME: Tests for authenticated field encryption
// ABOUTME: Covers round-trips, tamper detection and key mismatch

package secrets

import (
	"crypto/rand"
	"errors"
	"testing"
)

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("generating key: %v", err)
	}
	c, err := NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher failed: %v", err)
	}
	return c
}

func TestNewCipherRejectsBadKeySize(t *testing.T) {
	if _, err := NewCipher(make([]byte, 16)); !errors.Is(err, ErrMalformedKey) {
		t.Errorf("expected ErrMalformedKey for 16-byte key, got %v", err)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := newTestCipher(t)

	plaintexts := []string{
		"sk-or-v1-abcdef0123456789",
		"http://localhost:7878",
		"",
		"unicode: héllo wörld 日本語",
	}

	for _, plaintext := range plaintexts {
		sealed, err := c.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q) failed: %v", plaintext, err)
		}
		if sealed == plaintext && plaintext != "" {
			t.Errorf("ciphertext equals plaintext for %q", plaintext)
		}

		opened, err := c.Decrypt(sealed)
		if err != nil {
			t.Fatalf("Decrypt failed for %q: %v", plaintext, err)
		}
		if opened != plaintext {
			t.Errorf("round trip mismatch: got %q, want %q", opened, plaintext)
		}
	}
}

func TestEncryptProducesFreshNonces(t *testing.T) {
	c := newTestCipher(t)

	first, err := c.Encrypt("same input")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	second, err := c.Encrypt("same input")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if first == second {
		t.Error("two encryptions of the same plaintext produced identical ciphertext")
	}
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	c := newTestCipher(t)

	sealed, err := c.Encrypt("secret value")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// Flip a character in the encoded ciphertext.
	tampered := []byte(sealed)
	i := len(tampered) / 2
	if tampered[i] == 'A' {
		tampered[i] = 'B'
	} else {
		tampered[i] = 'A'
	}

	if _, err := c.Decrypt(string(tampered)); !errors.Is(err, ErrDecrypt) {
		t.Errorf("expected ErrDecrypt for tampered ciphertext, got %v", err)
	}
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	sealed, err := newTestCipher(t).Encrypt("secret value")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if _, err := newTestCipher(t).Decrypt(sealed); !errors.Is(err, ErrDecrypt) {
		t.Errorf("expected ErrDecrypt under a different key, got %v", err)
	}
}

func TestDecryptRejectsGarbage(t *testing.T) {
	c := newTestCipher(t)

	cases := []string{
		"not base64 at all %%%",
		"c2hvcnQ=", // valid base64, shorter than a nonce
		"",
	}
	for _, input := range cases {
		if _, err := c.Decrypt(input); !errors.Is(err, ErrDecrypt) {
			t.Errorf("Decrypt(%q): expected ErrDecrypt, got %v", input, err)
		}
	}
}
