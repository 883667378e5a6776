// Package secrets manages the symmetric key and authenticated encryption
// used for credential fields at rest.
//
// Each data directory owns exactly one key for its entire lifetime, stored
// in a ".encryption_key" file next to the database (base64url-encoded
// 256-bit key, mode 0600). Losing the key file makes all encrypted fields
// permanently unrecoverable; there is no escrow and no rotation support.
// The key file must be kept out of source control.
//
// Fields are sealed with XChaCha20-Poly1305, so tampering with stored
// ciphertext surfaces as ErrDecrypt on read rather than wrong plaintext.
package secrets
