package primitives

import (
	"crypto/rand"
	"io"
)

// Bytes returns n cryptographically secure random bytes.
func Bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}

	return b, nil
}

// Salt returns a fresh 16-byte Argon2id salt.
func Salt() ([]byte, error) {
	return Bytes(SaltSize)
}

// Nonce returns a fresh 24-byte XChaCha20-Poly1305 nonce.
func Nonce() ([]byte, error) {
	return Bytes(NonceSize)
}

// SymmetricKey returns a fresh random 32-byte symmetric key, used for
// VaultKey generation (vault keys are random, never password-derived).
func SymmetricKey() ([]byte, error) {
	return Bytes(KeySize)
}
