package keyring_test

import (
	"testing"
	"time"

	"github.com/witflo/fyndo-core/keyring"
	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/witfloerrors"
)

func TestKeyring_EncryptDecryptRoundTrip(t *testing.T) {
	key, _ := primitives.SymmetricKey()
	nonce, _ := primitives.Nonce()

	k := keyring.Empty().Add("vault-1", make([]byte, 32), "Personal", time.Unix(0, 0))

	ct, err := keyring.Encrypt(k, key, nonce)
	if err != nil {
		t.Fatal(err)
	}

	got, err := keyring.Decrypt(ct, key, nonce)
	if err != nil {
		t.Fatal(err)
	}

	if got.Len() != 1 || !got.Has("vault-1") {
		t.Errorf("got %+v, want one entry for vault-1", got)
	}
}

func TestKeyring_DecryptWrongKeyFails(t *testing.T) {
	key, _ := primitives.SymmetricKey()
	wrong, _ := primitives.SymmetricKey()
	nonce, _ := primitives.Nonce()

	ct, err := keyring.Encrypt(keyring.Empty(), key, nonce)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := keyring.Decrypt(ct, wrong, nonce); err != witfloerrors.ErrTagMismatch {
		t.Errorf("got %v, want %v", err, witfloerrors.ErrTagMismatch)
	}
}

func TestKeyring_RemoveLastVaultFails(t *testing.T) {
	k := keyring.Empty().Add("only", make([]byte, 32), "", time.Unix(0, 0))

	if _, err := k.Remove("only"); err != witfloerrors.ErrLastVaultProtected {
		t.Errorf("got %v, want %v", err, witfloerrors.ErrLastVaultProtected)
	}
}

func TestKeyring_RemoveKeepsMutationIsolated(t *testing.T) {
	k := keyring.Empty().
		Add("a", make([]byte, 32), "", time.Unix(0, 0)).
		Add("b", make([]byte, 32), "", time.Unix(0, 0))

	reduced, err := k.Remove("a")
	if err != nil {
		t.Fatal(err)
	}

	if k.Len() != 2 {
		t.Errorf("original keyring mutated: got %d vaults, want 2", k.Len())
	}

	if reduced.Len() != 1 || reduced.Has("a") {
		t.Errorf("got %+v, want only b remaining", reduced)
	}
}

func TestKeyring_VaultKeyRoundTrip(t *testing.T) {
	want := make([]byte, 32)
	want[0] = 0xAB

	k := keyring.Empty().Add("v", want, "", time.Unix(0, 0))

	got, err := k.VaultKey("v")
	if err != nil {
		t.Fatal(err)
	}

	if string(got) != string(want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestKeyring_VaultKeyMissingFails(t *testing.T) {
	if _, err := keyring.Empty().VaultKey("nope"); err != witfloerrors.ErrVaultNotFound {
		t.Errorf("got %v, want %v", err, witfloerrors.ErrVaultNotFound)
	}
}
