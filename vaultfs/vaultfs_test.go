package vaultfs_test

import (
	"testing"

	"github.com/witflo/fyndo-core/storage"
	"github.com/witflo/fyndo-core/vaultfs"
)

func newStore(t *testing.T) (*vaultfs.ObjectStore, vaultfs.Layout) {
	t.Helper()

	p := storage.NewMemoryProvider()
	l := vaultfs.NewLayout("/virtual/" + t.Name())

	if err := vaultfs.Init(p, l); err != nil {
		t.Fatal(err)
	}

	return vaultfs.NewObjectStore(p, l), l
}

func TestObjectStore_PutThenGetRoundTrip(t *testing.T) {
	store, _ := newStore(t)

	hash, err := store.Put([]byte("ciphertext-blob"))
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(hash)
	if err != nil {
		t.Fatal(err)
	}

	if string(got) != "ciphertext-blob" {
		t.Errorf("got %q, want %q", got, "ciphertext-blob")
	}
}

func TestObjectStore_PutIsIdempotent(t *testing.T) {
	store, _ := newStore(t)

	h1, err := store.Put([]byte("same"))
	if err != nil {
		t.Fatal(err)
	}

	h2, err := store.Put([]byte("same"))
	if err != nil {
		t.Fatal(err)
	}

	if h1 != h2 {
		t.Fatalf("hash mismatch across identical puts: %s vs %s", h1, h2)
	}

	refs, err := store.ReferencedHashes()
	if err != nil {
		t.Fatal(err)
	}

	count := 0

	for _, r := range refs {
		if r == h1 {
			count++
		}
	}

	if count != 1 {
		t.Errorf("expected exactly one stored object for duplicate puts, found %d", count)
	}
}

func TestObjectStore_GetMissingFails(t *testing.T) {
	store, _ := newStore(t)

	if _, err := store.Get("00"); err != storage.ErrNotFound {
		t.Errorf("got %v, want %v", err, storage.ErrNotFound)
	}
}

func TestObjectStore_HasReflectsPresence(t *testing.T) {
	store, _ := newStore(t)

	hash, err := store.Put([]byte("x"))
	if err != nil {
		t.Fatal(err)
	}

	if ok, err := store.Has(hash); err != nil || !ok {
		t.Errorf("Has(%s) = %v, %v, want true, nil", hash, ok, err)
	}

	if err := store.Delete(hash); err != nil {
		t.Fatal(err)
	}

	if ok, err := store.Has(hash); err != nil || ok {
		t.Errorf("Has(%s) after delete = %v, %v, want false, nil", hash, ok, err)
	}
}
