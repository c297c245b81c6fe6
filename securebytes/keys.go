package securebytes

import "github.com/witflo/fyndo-core/primitives"

// MUK, VaultKey, ContentKey, NotebookKey, and SearchKey are newtypes
// around [SecureBytes]. They carry no extra state; the only purpose of
// the distinct types is to make accidental substitution a compile
// error — a function that needs a ContentKey cannot be handed a
// VaultKey without an explicit, named conversion.

type MUK struct{ sb *SecureBytes }

type VaultKey struct{ sb *SecureBytes }

type ContentKey struct{ sb *SecureBytes }

type NotebookKey struct{ sb *SecureBytes }

type SearchKey struct{ sb *SecureBytes }

// NewMUK wraps raw key bytes as a MUK, taking ownership of the slice.
func NewMUK(b []byte) MUK { return MUK{sb: New(b)} }

// Bytes returns the raw key material; see [SecureBytes.Bytes] for the
// aliasing caveat.
func (k MUK) Bytes() ([]byte, error) { return k.sb.Bytes() }

// Dispose zeroizes the underlying buffer.
func (k MUK) Dispose() { k.sb.Dispose() }

// Disposed reports whether Dispose has been called.
func (k MUK) Disposed() bool { return k.sb.Disposed() }

// NewVaultKey wraps raw key bytes as a VaultKey, taking ownership of
// the slice.
func NewVaultKey(b []byte) VaultKey { return VaultKey{sb: New(b)} }

func (k VaultKey) Bytes() ([]byte, error) { return k.sb.Bytes() }
func (k VaultKey) Dispose()               { k.sb.Dispose() }
func (k VaultKey) Disposed() bool         { return k.sb.Disposed() }

// Clone returns an independently owned copy of the vault key.
func (k VaultKey) Clone() (VaultKey, error) {
	c, err := k.sb.Clone()
	if err != nil {
		return VaultKey{}, err
	}

	return VaultKey{sb: c}, nil
}

// DeriveContentKey expands the vault key into the ContentKey scoped to
// noteID via HKDF-SHA256 with the canonical `witflo.content.{id}.v1`
// context (§4.1, §4.3 derive_content_key).
func (k VaultKey) DeriveContentKey(noteID string) (ContentKey, error) {
	raw, err := k.expand(primitives.ContentContext(noteID))
	if err != nil {
		return ContentKey{}, err
	}

	return NewContentKey(raw), nil
}

// DeriveNotebookKey expands the vault key into the NotebookKey scoped
// to notebookID via the canonical `witflo.notebook.{id}.v1` context.
func (k VaultKey) DeriveNotebookKey(notebookID string) (NotebookKey, error) {
	raw, err := k.expand(primitives.NotebookContext(notebookID))
	if err != nil {
		return NotebookKey{}, err
	}

	return NewNotebookKey(raw), nil
}

// DeriveSearchKey expands the vault key into the SearchKey used for
// the blind-token search index, via the canonical
// `witflo.search.index.v1` context.
func (k VaultKey) DeriveSearchKey() (SearchKey, error) {
	raw, err := k.expand(primitives.SearchIndexV1)
	if err != nil {
		return SearchKey{}, err
	}

	return NewSearchKey(raw), nil
}

// DeriveSyncKey expands the vault key into the raw 32-byte key used to
// AEAD-encrypt sync operation payloads, via the canonical
// `witflo.sync.v1` context.
func (k VaultKey) DeriveSyncKey() ([]byte, error) {
	return k.expand(primitives.ContextSyncV1)
}

// DeriveIndexKey expands the vault key into the raw key used to
// AEAD-encrypt the named `refs/*.jsonl.enc` index file.
func (k VaultKey) DeriveIndexKey(name string) ([]byte, error) {
	return k.expand(primitives.IndexContext(name))
}

// DeriveVaultKeyFileKey expands the vault key into the raw key used to
// wrap `vault.vk`, the on-disk confirmation copy of the key itself.
func (k VaultKey) DeriveVaultKeyFileKey() ([]byte, error) {
	return k.expand(primitives.VaultKeyFileV1)
}

func (k VaultKey) expand(context string) ([]byte, error) {
	raw, err := k.Bytes()
	if err != nil {
		return nil, err
	}

	return primitives.Expand(raw, context, primitives.KeySize)
}

// NewContentKey wraps raw key bytes as a ContentKey, taking ownership
// of the slice. Use [VaultKey.DeriveContentKey] rather than calling
// this directly when the key should be bound to a specific note.
func NewContentKey(b []byte) ContentKey { return ContentKey{sb: New(b)} }

func (k ContentKey) Bytes() ([]byte, error) { return k.sb.Bytes() }
func (k ContentKey) Dispose()               { k.sb.Dispose() }
func (k ContentKey) Disposed() bool         { return k.sb.Disposed() }

// NewNotebookKey wraps raw key bytes as a NotebookKey, taking
// ownership of the slice.
func NewNotebookKey(b []byte) NotebookKey { return NotebookKey{sb: New(b)} }

func (k NotebookKey) Bytes() ([]byte, error) { return k.sb.Bytes() }
func (k NotebookKey) Dispose()               { k.sb.Dispose() }
func (k NotebookKey) Disposed() bool         { return k.sb.Disposed() }

// NewSearchKey wraps raw key bytes as a SearchKey, taking ownership of
// the slice.
func NewSearchKey(b []byte) SearchKey { return SearchKey{sb: New(b)} }

func (k SearchKey) Bytes() ([]byte, error) { return k.sb.Bytes() }
func (k SearchKey) Dispose()               { k.sb.Dispose() }
func (k SearchKey) Disposed() bool         { return k.sb.Disposed() }
