package primitives_test

import (
	"bytes"
	"testing"

	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/witfloerrors"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key, err := primitives.SymmetricKey()
	if err != nil {
		t.Fatal(err)
	}

	plaintext := []byte("hello witflo")

	ct, err := primitives.Encrypt(plaintext, key)
	if err != nil {
		t.Fatal(err)
	}

	got, err := primitives.Decrypt(ct, key)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(got, plaintext) {
		t.Errorf("got = %q, want %q", got, plaintext)
	}
}

func TestDecrypt_BitFlipFailsAuthentication(t *testing.T) {
	key, err := primitives.SymmetricKey()
	if err != nil {
		t.Fatal(err)
	}

	ct, err := primitives.Encrypt([]byte("hello witflo"), key)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		flip int
	}{
		{"flip in nonce", 0},
		{"flip in ciphertext", len(ct) - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tampered := append([]byte(nil), ct...)
			tampered[tt.flip] ^= 0x01

			if _, err := primitives.Decrypt(tampered, key); err != witfloerrors.ErrTagMismatch {
				t.Errorf("got err = %v, want %v", err, witfloerrors.ErrTagMismatch)
			}
		})
	}
}

func TestDecrypt_ShortInput(t *testing.T) {
	key, err := primitives.SymmetricKey()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := primitives.Decrypt([]byte("short"), key); err != witfloerrors.ErrShortInput {
		t.Errorf("got err = %v, want %v", err, witfloerrors.ErrShortInput)
	}
}

func TestEncryptWithNonce_WrongKeyFails(t *testing.T) {
	keyA, _ := primitives.SymmetricKey()
	keyB, _ := primitives.SymmetricKey()
	nonce, _ := primitives.Nonce()

	ct, err := primitives.EncryptWithNonce([]byte("secret"), keyA, nonce)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := primitives.DecryptWithNonce(ct, keyB, nonce); err != witfloerrors.ErrTagMismatch {
		t.Errorf("got err = %v, want %v", err, witfloerrors.ErrTagMismatch)
	}
}
