package repository

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/vault"
	"github.com/witflo/fyndo-core/witfloerrors"
)

// Note is the full plaintext form of a note, as stored (encrypted)
// under its content-addressed object.
type Note struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	NotebookID string    `json:"notebook_id,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	Pinned     bool      `json:"pinned,omitempty"`
	Archived   bool      `json:"archived,omitempty"`
	Trashed    bool      `json:"trashed,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
}

// NoteMetadata is the subset of a note's fields kept in the index for
// listing without decrypting every object (§3's NoteMetadata row).
type NoteMetadata struct {
	ID         string
	Title      string
	Tags       []string
	NotebookID string
	Pinned     bool
	Archived   bool
	Trashed    bool
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// noteRecord is the JSON shape persisted in refs/notes.jsonl.enc: a
// note's metadata plus the hash of its content object.
type noteRecord struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Tags       []string  `json:"tags,omitempty"`
	NotebookID string    `json:"notebook_id,omitempty"`
	Pinned     bool      `json:"pinned,omitempty"`
	Archived   bool      `json:"archived,omitempty"`
	Trashed    bool      `json:"trashed,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
	ObjectHash string    `json:"object_hash"`
}

func (r noteRecord) metadata() NoteMetadata {
	return NoteMetadata{
		ID: r.ID, Title: r.Title, Tags: r.Tags, NotebookID: r.NotebookID,
		Pinned: r.Pinned, Archived: r.Archived, Trashed: r.Trashed,
		CreatedAt: r.CreatedAt, ModifiedAt: r.ModifiedAt,
	}
}

// NoteRepository saves, loads, deletes, and lists notes in one vault.
type NoteRepository struct {
	vlt *vault.Vault
	idx *index[noteRecord]
}

// NewNoteRepository wraps vlt with a notes repository backed by
// refs/notes.jsonl.enc.
func NewNoteRepository(vlt *vault.Vault) *NoteRepository {
	idx := newIndex(vlt, "notes", vlt.Layout().NotesIndex(), func(r noteRecord) string { return r.ID })
	return &NoteRepository{vlt: vlt, idx: idx}
}

// Save encodes n as canonical JSON, encrypts it under its content key,
// writes it to the content-addressed object store, and updates the
// note index.
func (r *NoteRepository) Save(n Note) error {
	ck, err := r.vlt.DeriveContentKey(n.ID)
	if err != nil {
		return err
	}

	key, err := ck.Bytes()
	if err != nil {
		return err
	}

	plaintext, err := json.Marshal(n)
	if err != nil {
		return err
	}

	ciphertext, err := primitives.Encrypt(plaintext, key)
	if err != nil {
		return err
	}

	hash, err := r.vlt.Objects().Put(ciphertext)
	if err != nil {
		return err
	}

	if err := r.idx.load(); err != nil {
		return err
	}

	r.idx.put(noteRecord{
		ID: n.ID, Title: n.Title, Tags: n.Tags, NotebookID: n.NotebookID,
		Pinned: n.Pinned, Archived: n.Archived, Trashed: n.Trashed,
		CreatedAt: n.CreatedAt, ModifiedAt: n.ModifiedAt, ObjectHash: hash,
	})

	return r.idx.save()
}

// Load looks up id in the index and decrypts the corresponding
// object.
func (r *NoteRepository) Load(id string) (Note, error) {
	if err := r.idx.load(); err != nil {
		return Note{}, err
	}

	rec, ok := r.idx.get(id)
	if !ok {
		return Note{}, witfloerrors.ErrObjectNotFound
	}

	ciphertext, err := r.vlt.Objects().Get(rec.ObjectHash)
	if err != nil {
		return Note{}, err
	}

	ck, err := r.vlt.DeriveContentKey(id)
	if err != nil {
		return Note{}, err
	}

	key, err := ck.Bytes()
	if err != nil {
		return Note{}, err
	}

	plaintext, err := primitives.Decrypt(ciphertext, key)
	if err != nil {
		return Note{}, err
	}

	var n Note
	if err := json.Unmarshal(plaintext, &n); err != nil {
		return Note{}, witfloerrors.ErrIndexCorrupt
	}

	return n, nil
}

// Delete removes id from the index. The underlying object is left in
// place; orphan collection is out of scope (§4.10, SPEC_FULL.md Open
// Question 3).
func (r *NoteRepository) Delete(id string) error {
	if err := r.idx.load(); err != nil {
		return err
	}

	r.idx.delete(id)

	return r.idx.save()
}

// ListAll returns every note's metadata, ordered by id.
func (r *NoteRepository) ListAll() ([]NoteMetadata, error) {
	if err := r.idx.load(); err != nil {
		return nil, err
	}

	recs := r.idx.all()
	out := make([]NoteMetadata, 0, len(recs))

	for _, rec := range recs {
		out = append(out, rec.metadata())
	}

	return out, nil
}

// ListTrashed returns metadata for notes flagged as trashed.
func (r *NoteRepository) ListTrashed() ([]NoteMetadata, error) {
	return r.filter(func(m NoteMetadata) bool { return m.Trashed })
}

// ListByNotebook returns metadata for notes in notebookID. An empty
// notebookID matches notes with no notebook assigned.
func (r *NoteRepository) ListByNotebook(notebookID string) ([]NoteMetadata, error) {
	return r.filter(func(m NoteMetadata) bool { return m.NotebookID == notebookID })
}

// ListByTag returns metadata for notes tagged with tag.
func (r *NoteRepository) ListByTag(tag string) ([]NoteMetadata, error) {
	return r.filter(func(m NoteMetadata) bool {
		for _, t := range m.Tags {
			if t == tag {
				return true
			}
		}

		return false
	})
}

// SearchByTitle returns metadata for notes whose title contains q,
// case-insensitively. This is O(n) in the number of notes, per §4.10;
// callers with large vaults should paginate.
func (r *NoteRepository) SearchByTitle(q string) ([]NoteMetadata, error) {
	q = strings.ToLower(q)

	return r.filter(func(m NoteMetadata) bool {
		return strings.Contains(strings.ToLower(m.Title), q)
	})
}

// Invalidate drops the in-memory note index so the next list or load
// reloads it from disk, for reacting to an external rewrite of
// refs/notes.jsonl.enc (§4.11).
func (r *NoteRepository) Invalidate() {
	r.idx.invalidate()
}

func (r *NoteRepository) filter(keep func(NoteMetadata) bool) ([]NoteMetadata, error) {
	all, err := r.ListAll()
	if err != nil {
		return nil, err
	}

	out := make([]NoteMetadata, 0, len(all))

	for _, m := range all {
		if keep(m) {
			out = append(out, m)
		}
	}

	return out, nil
}
