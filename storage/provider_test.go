package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/witflo/fyndo-core/storage"
)

// providers runs each test case against both the native and in-memory
// providers, since both must satisfy the same [storage.Provider]
// contract.
func providers(t *testing.T) map[string]storage.Provider {
	t.Helper()

	return map[string]storage.Provider{
		"native": storage.NewNativeProvider(),
		"memory": storage.NewMemoryProvider(),
	}
}

func tempRoot(t *testing.T, name string) string {
	t.Helper()

	if name == "native" {
		return t.TempDir()
	}

	return "/virtual/" + t.Name()
}

func TestProvider_WriteAtomicRoundTrip(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			root := tempRoot(t, name)
			path := filepath.Join(root, "a", "b.txt")

			if err := p.WriteAtomic(path, []byte("hello")); err != nil {
				t.Fatal(err)
			}

			got, err := p.Read(path)
			if err != nil {
				t.Fatal(err)
			}

			if string(got) != "hello" {
				t.Errorf("got %q, want %q", got, "hello")
			}
		})
	}
}

func TestProvider_ReadMissingFails(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			root := tempRoot(t, name)

			if _, err := p.Read(filepath.Join(root, "nope")); err != storage.ErrNotFound {
				t.Errorf("got err = %v, want %v", err, storage.ErrNotFound)
			}
		})
	}
}

func TestProvider_ListDirectory(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			root := tempRoot(t, name)

			if err := p.CreateDirectory(filepath.Join(root, "objects")); err != nil {
				t.Fatal(err)
			}

			if err := p.WriteAtomic(filepath.Join(root, "objects", "x"), []byte("1")); err != nil {
				t.Fatal(err)
			}

			if err := p.WriteAtomic(filepath.Join(root, "objects", "y"), []byte("2")); err != nil {
				t.Fatal(err)
			}

			entries, err := p.List(filepath.Join(root, "objects"))
			if err != nil {
				t.Fatal(err)
			}

			if len(entries) != 2 {
				t.Errorf("got %d entries, want 2: %v", len(entries), entries)
			}
		})
	}
}

func TestProvider_MoveThenOldPathGone(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			root := tempRoot(t, name)
			src := filepath.Join(root, "src")
			dst := filepath.Join(root, "dst")

			if err := p.WriteAtomic(src, []byte("payload")); err != nil {
				t.Fatal(err)
			}

			if err := p.Move(src, dst); err != nil {
				t.Fatal(err)
			}

			if _, err := p.Read(dst); err != nil {
				t.Fatal(err)
			}

			if ok, _ := p.Exists(src); ok {
				t.Error("expected src to no longer exist after move")
			}
		})
	}
}
