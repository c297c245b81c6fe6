// Package vaultfs implements the on-disk directory layout of a single
// vault (§4.4) and the content-addressed encrypted object store built
// on top of it.
package vaultfs

import (
	"fmt"
	"path/filepath"

	"github.com/witflo/fyndo-core/storage"
)

// fanoutWidth is the number of hex prefix directories created under
// objects/ to bound fan-out (00..ff).
const fanoutWidth = 256

// Layout resolves every well-known path inside a vault rooted at Root.
type Layout struct {
	Root string
}

func NewLayout(root string) Layout { return Layout{Root: root} }

func (l Layout) Header() string       { return filepath.Join(l.Root, "vault.header") }
func (l Layout) VaultKeyFile() string { return filepath.Join(l.Root, "vault.vk") }
func (l Layout) DeviceKeyFile() string { return filepath.Join(l.Root, "device.key") }
func (l Layout) ObjectsDir() string   { return filepath.Join(l.Root, "objects") }
func (l Layout) RefsDir() string      { return filepath.Join(l.Root, "refs") }
func (l Layout) SyncDir() string      { return filepath.Join(l.Root, "sync") }
func (l Layout) SyncPendingDir() string { return filepath.Join(l.SyncDir(), "pending") }
func (l Layout) SyncCursorFile() string { return filepath.Join(l.SyncDir(), "cursor.enc") }

func (l Layout) NotesIndex() string     { return filepath.Join(l.RefsDir(), "notes.jsonl.enc") }
func (l Layout) NotebooksIndex() string { return filepath.Join(l.RefsDir(), "notebooks.jsonl.enc") }
func (l Layout) TagsIndex() string      { return filepath.Join(l.RefsDir(), "tags.jsonl.enc") }
func (l Layout) SearchIndex() string    { return filepath.Join(l.RefsDir(), "search.db.enc") }

// ObjectPath returns the path for an object whose ciphertext hash
// (hex-lowercased BLAKE3) is hash: `objects/<first 2 hex chars>/<rest>`.
func (l Layout) ObjectPath(hexHash string) string {
	return filepath.Join(l.ObjectsDir(), hexHash[:2], hexHash[2:])
}

// PendingOpFile returns the path for a pending sync operation file.
func (l Layout) PendingOpFile(opID string) string {
	return filepath.Join(l.SyncPendingDir(), fmt.Sprintf("%s.op.enc", opID))
}

// Init creates the vault's directory skeleton, eagerly creating the
// 00..ff fan-out directories under objects/ to bound directory size
// (§4.4: "directories 00..ff under objects/ are created eagerly").
func Init(p storage.Provider, l Layout) error {
	if err := p.CreateDirectory(l.ObjectsDir()); err != nil {
		return err
	}

	for i := 0; i < fanoutWidth; i++ {
		dir := filepath.Join(l.ObjectsDir(), fmt.Sprintf("%02x", i))
		if err := p.CreateDirectory(dir); err != nil {
			return err
		}
	}

	if err := p.CreateDirectory(l.RefsDir()); err != nil {
		return err
	}

	if err := p.CreateDirectory(l.SyncPendingDir()); err != nil {
		return err
	}

	return nil
}
