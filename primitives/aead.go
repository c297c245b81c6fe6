package primitives

import (
	"crypto/cipher"

	"github.com/witflo/fyndo-core/witfloerrors"

	"golang.org/x/crypto/chacha20poly1305"
)

// NonceSize is the length, in bytes, of an XChaCha20-Poly1305 nonce.
const NonceSize = chacha20poly1305.NonceSizeX

// EncryptWithNonce seals plaintext under key using XChaCha20-Poly1305
// with the given 24-byte nonce. The returned ciphertext does not
// include the nonce; callers that need `nonce || ct` framing should use
// [Encrypt] instead.
func EncryptWithNonce(plaintext, key, nonce []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	if len(nonce) != NonceSize {
		return nil, witfloerrors.ErrInvalidParams
	}

	return aead.Seal(nil, nonce, plaintext, nil), nil
}

// DecryptWithNonce opens ciphertext under key using the given nonce.
// Returns [witfloerrors.ErrTagMismatch] on a bad key or tampered input.
func DecryptWithNonce(ciphertext, key, nonce []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	if len(nonce) != NonceSize {
		return nil, witfloerrors.ErrInvalidParams
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, witfloerrors.ErrTagMismatch
	}

	return plaintext, nil
}

// Encrypt generates a fresh random nonce, seals plaintext under key, and
// returns `nonce || ciphertext`, matching the on-disk framing used by
// `vault.vk` and by the encrypted payload field inside each
// `sync/pending/*.op.enc` envelope.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	nonce, err := Nonce()
	if err != nil {
		return nil, err
	}

	ct, err := EncryptWithNonce(plaintext, key, nonce)
	if err != nil {
		return nil, err
	}

	return append(nonce, ct...), nil
}

// Decrypt splits `nonce || ciphertext` and opens it under key.
// Returns [witfloerrors.ErrShortInput] if the input is shorter than a
// single nonce.
func Decrypt(nonceAndCiphertext, key []byte) ([]byte, error) {
	if len(nonceAndCiphertext) < NonceSize {
		return nil, witfloerrors.ErrShortInput
	}

	nonce := nonceAndCiphertext[:NonceSize]
	ct := nonceAndCiphertext[NonceSize:]

	return DecryptWithNonce(ct, key, nonce)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, witfloerrors.ErrInvalidParams
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, witfloerrors.ErrInvalidParams
	}

	return aead, nil
}
