// Package repository implements per-entity save/load/delete on top of
// an unlocked vault, backed by an in-memory metadata cache that is
// authoritative for listing queries (§4.10).
package repository

import (
	"bufio"
	"bytes"
	"encoding/json"
	"sort"
	"sync"

	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/storage"
	"github.com/witflo/fyndo-core/vault"
	"github.com/witflo/fyndo-core/witfloerrors"
)

// index is a generic encrypted JSONL cache backing one `refs/*.jsonl.enc`
// file. One record per line, encrypted as a whole file under a key
// derived from the vault with the index's name as HKDF context.
type index[T any] struct {
	mu sync.Mutex

	vlt     *vault.Vault
	name    string
	path    string
	keyOf   func(T) string
	entries map[string]T
	loaded  bool
}

func newIndex[T any](vlt *vault.Vault, name, path string, keyOf func(T) string) *index[T] {
	return &index[T]{vlt: vlt, name: name, path: path, keyOf: keyOf, entries: map[string]T{}}
}

// load reads and decrypts the index file if it hasn't been loaded
// yet. A missing file is treated as an empty index (first use).
func (idx *index[T]) load() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	return idx.loadLocked()
}

func (idx *index[T]) loadLocked() error {
	if idx.loaded {
		return nil
	}

	raw, err := idx.vlt.Provider().Read(idx.path)
	if err != nil {
		if err == storage.ErrNotFound {
			idx.loaded = true
			return nil
		}

		return err
	}

	key, err := idx.vlt.DeriveIndexKey(idx.name)
	if err != nil {
		return err
	}

	plaintext, err := primitives.Decrypt(raw, key)
	if err != nil {
		return witfloerrors.ErrIndexCorrupt
	}

	entries := map[string]T{}

	scanner := bufio.NewScanner(bytes.NewReader(plaintext))
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var rec T
		if err := json.Unmarshal(line, &rec); err != nil {
			return witfloerrors.ErrIndexCorrupt
		}

		entries[idx.keyOf(rec)] = rec
	}

	if err := scanner.Err(); err != nil {
		return witfloerrors.ErrIndexCorrupt
	}

	idx.entries = entries
	idx.loaded = true

	return nil
}

// invalidate drops the cached entries and marks the index unloaded, so
// the next load re-reads and re-decrypts the index file from disk
// instead of serving stale in-memory state (§4.11, reacting to an
// external rewrite of refs/*.jsonl.enc).
func (idx *index[T]) invalidate() {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.entries = map[string]T{}
	idx.loaded = false
}

// put inserts or replaces the record keyed by its own id.
func (idx *index[T]) put(rec T) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.entries[idx.keyOf(rec)] = rec
}

// delete removes the record for id, if present.
func (idx *index[T]) delete(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.entries, id)
}

// get returns the record for id.
func (idx *index[T]) get(id string) (T, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	rec, ok := idx.entries[id]

	return rec, ok
}

// all returns every record, ordered by id for reproducible listings.
func (idx *index[T]) all() []T {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	ids := make([]string, 0, len(idx.entries))
	for id := range idx.entries {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, idx.entries[id])
	}

	return out
}

// save re-encrypts and atomically rewrites the whole index file.
func (idx *index[T]) save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	ids := make([]string, 0, len(idx.entries))
	for id := range idx.entries {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	var buf bytes.Buffer

	for _, id := range ids {
		line, err := json.Marshal(idx.entries[id])
		if err != nil {
			return err
		}

		buf.Write(line)
		buf.WriteByte('\n')
	}

	key, err := idx.vlt.DeriveIndexKey(idx.name)
	if err != nil {
		return err
	}

	ciphertext, err := primitives.Encrypt(buf.Bytes(), key)
	if err != nil {
		return err
	}

	return idx.vlt.Provider().WriteAtomic(idx.path, ciphertext)
}
