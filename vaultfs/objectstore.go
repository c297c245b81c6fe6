package vaultfs

import (
	"encoding/hex"

	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/storage"
)

// ObjectStore is the content-addressed, encrypted blob store each
// vault's notes and notebooks are persisted through (§4.4). A stored
// object's path is derived from the BLAKE3 hash of its ciphertext, so
// writing the same ciphertext twice is a no-op and readers can verify
// integrity independent of the AEAD tag.
type ObjectStore struct {
	p storage.Provider
	l Layout
}

func NewObjectStore(p storage.Provider, l Layout) *ObjectStore {
	return &ObjectStore{p: p, l: l}
}

// Put stores ciphertext under its content hash and returns the hash
// hex string callers should keep as the object's reference. If an
// object with the same hash already exists, Put does not rewrite it.
func (s *ObjectStore) Put(ciphertext []byte) (string, error) {
	sum := primitives.Blake3(ciphertext)
	hexHash := hex.EncodeToString(sum[:])

	path := s.l.ObjectPath(hexHash)

	exists, err := s.p.Exists(path)
	if err != nil {
		return "", err
	}

	if exists {
		return hexHash, nil
	}

	if err := s.p.WriteAtomic(path, ciphertext); err != nil {
		return "", err
	}

	return hexHash, nil
}

// Get reads back the ciphertext stored under hexHash.
func (s *ObjectStore) Get(hexHash string) ([]byte, error) {
	return s.p.Read(s.l.ObjectPath(hexHash))
}

// Has reports whether an object with the given hash exists.
func (s *ObjectStore) Has(hexHash string) (bool, error) {
	return s.p.Exists(s.l.ObjectPath(hexHash))
}

// Delete removes the object stored under hexHash. Callers are
// responsible for confirming no surviving reference points at it
// first (§4.4 notes garbage collection of unreferenced objects is out
// of scope for this core; see [ReferencedHashes]).
func (s *ObjectStore) Delete(hexHash string) error {
	return s.p.DeleteFile(s.l.ObjectPath(hexHash))
}

// ReferencedHashes walks every fan-out directory under objects/ and
// returns the hex hashes of every object currently stored. It exists
// so a caller building an external garbage-collection pass (not
// implemented by this core, see SPEC_FULL.md Open Question 3) can
// diff this set against the hashes actually reachable from refs/.
func (s *ObjectStore) ReferencedHashes() ([]string, error) {
	var out []string

	for i := 0; i < fanoutWidth; i++ {
		prefix := hex.EncodeToString([]byte{byte(i)})

		entries, err := s.p.List(s.l.ObjectsDir() + "/" + prefix)
		if err != nil {
			if err == storage.ErrNotFound {
				continue
			}

			return nil, err
		}

		for _, e := range entries {
			out = append(out, prefix+baseName(e))
		}
	}

	return out, nil
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}

	return path
}
