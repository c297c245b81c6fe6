package repository

import (
	"encoding/json"
	"time"

	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/vault"
	"github.com/witflo/fyndo-core/witfloerrors"
)

// Notebook groups notes under a named container.
type Notebook struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
}

type notebookRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
	ObjectHash string    `json:"object_hash"`
}

// NotebookRepository saves, loads, deletes, and lists notebooks in one
// vault, using the notebook's own derived key (rather than a content
// key) per §4.10.
type NotebookRepository struct {
	vlt *vault.Vault
	idx *index[notebookRecord]
}

func NewNotebookRepository(vlt *vault.Vault) *NotebookRepository {
	idx := newIndex(vlt, "notebooks", vlt.Layout().NotebooksIndex(), func(r notebookRecord) string { return r.ID })
	return &NotebookRepository{vlt: vlt, idx: idx}
}

func (r *NotebookRepository) Save(n Notebook) error {
	nk, err := r.vlt.DeriveNotebookKey(n.ID)
	if err != nil {
		return err
	}

	key, err := nk.Bytes()
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

	r.idx.put(notebookRecord{ID: n.ID, Name: n.Name, CreatedAt: n.CreatedAt, ModifiedAt: n.ModifiedAt, ObjectHash: hash})

	return r.idx.save()
}

func (r *NotebookRepository) Load(id string) (Notebook, error) {
	if err := r.idx.load(); err != nil {
		return Notebook{}, err
	}

	rec, ok := r.idx.get(id)
	if !ok {
		return Notebook{}, witfloerrors.ErrObjectNotFound
	}

	ciphertext, err := r.vlt.Objects().Get(rec.ObjectHash)
	if err != nil {
		return Notebook{}, err
	}

	nk, err := r.vlt.DeriveNotebookKey(id)
	if err != nil {
		return Notebook{}, err
	}

	key, err := nk.Bytes()
	if err != nil {
		return Notebook{}, err
	}

	plaintext, err := primitives.Decrypt(ciphertext, key)
	if err != nil {
		return Notebook{}, err
	}

	var n Notebook
	if err := json.Unmarshal(plaintext, &n); err != nil {
		return Notebook{}, witfloerrors.ErrIndexCorrupt
	}

	return n, nil
}

func (r *NotebookRepository) Delete(id string) error {
	if err := r.idx.load(); err != nil {
		return err
	}

	r.idx.delete(id)

	return r.idx.save()
}

// Invalidate drops the in-memory notebook index so the next list or
// load reloads it from disk, for reacting to an external rewrite of
// refs/notebooks.jsonl.enc (§4.11).
func (r *NotebookRepository) Invalidate() {
	r.idx.invalidate()
}

// ListAll returns every notebook, ordered by id.
func (r *NotebookRepository) ListAll() ([]Notebook, error) {
	if err := r.idx.load(); err != nil {
		return nil, err
	}

	recs := r.idx.all()
	out := make([]Notebook, 0, len(recs))

	for _, rec := range recs {
		out = append(out, Notebook{ID: rec.ID, Name: rec.Name, CreatedAt: rec.CreatedAt, ModifiedAt: rec.ModifiedAt})
	}

	return out, nil
}
