package repository_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/repository"
	"github.com/witflo/fyndo-core/storage"
	"github.com/witflo/fyndo-core/vault"
	"github.com/witflo/fyndo-core/witfloerrors"
)

func newTestVault(t *testing.T) *vault.Vault {
	t.Helper()

	p := storage.NewMemoryProvider()

	key, err := primitives.SymmetricKey()
	if err != nil {
		t.Fatal(err)
	}

	vlt, err := vault.Create(p, "/virtual/"+t.Name(), "vault-under-test", key)
	if err != nil {
		t.Fatal(err)
	}

	return vlt
}

func TestNoteRepository_SaveThenLoadRoundTrips(t *testing.T) {
	vlt := newTestVault(t)
	repo := repository.NewNoteRepository(vlt)

	want := repository.Note{
		ID:        "note-1",
		Title:     "hi",
		Body:      "hello",
		Tags:      []string{"a", "b"},
		CreatedAt: time.Unix(100, 0).UTC(),
	}

	if err := repo.Save(want); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Load("note-1")
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNoteRepository_LoadMissingFails(t *testing.T) {
	vlt := newTestVault(t)
	repo := repository.NewNoteRepository(vlt)

	if _, err := repo.Load("nope"); err != witfloerrors.ErrObjectNotFound {
		t.Errorf("got %v, want %v", err, witfloerrors.ErrObjectNotFound)
	}
}

func TestNoteRepository_DeleteRemovesFromListing(t *testing.T) {
	vlt := newTestVault(t)
	repo := repository.NewNoteRepository(vlt)

	if err := repo.Save(repository.Note{ID: "a", Title: "a"}); err != nil {
		t.Fatal(err)
	}

	if err := repo.Save(repository.Note{ID: "b", Title: "b"}); err != nil {
		t.Fatal(err)
	}

	if err := repo.Delete("a"); err != nil {
		t.Fatal(err)
	}

	all, err := repo.ListAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(all) != 1 || all[0].ID != "b" {
		t.Errorf("got %+v, want only note b", all)
	}
}

func TestNoteRepository_ListByTagAndTrashed(t *testing.T) {
	vlt := newTestVault(t)
	repo := repository.NewNoteRepository(vlt)

	if err := repo.Save(repository.Note{ID: "a", Tags: []string{"work"}}); err != nil {
		t.Fatal(err)
	}

	if err := repo.Save(repository.Note{ID: "b", Tags: []string{"home"}, Trashed: true}); err != nil {
		t.Fatal(err)
	}

	byTag, err := repo.ListByTag("work")
	if err != nil {
		t.Fatal(err)
	}

	if len(byTag) != 1 || byTag[0].ID != "a" {
		t.Errorf("got %+v, want only note a", byTag)
	}

	trashed, err := repo.ListTrashed()
	if err != nil {
		t.Fatal(err)
	}

	if len(trashed) != 1 || trashed[0].ID != "b" {
		t.Errorf("got %+v, want only note b", trashed)
	}
}

func TestNoteRepository_SaveIsContentAddressedOnce(t *testing.T) {
	vlt := newTestVault(t)
	repo := repository.NewNoteRepository(vlt)

	n := repository.Note{ID: "dup", Title: "same", Body: "same body"}

	if err := repo.Save(n); err != nil {
		t.Fatal(err)
	}

	refs, err := vlt.Objects().ReferencedHashes()
	if err != nil {
		t.Fatal(err)
	}

	before := len(refs)

	if err := repo.Save(n); err != nil {
		t.Fatal(err)
	}

	refs, err = vlt.Objects().ReferencedHashes()
	if err != nil {
		t.Fatal(err)
	}

	if len(refs) != before {
		t.Errorf("expected saving identical content twice not to add a new object: before=%d after=%d", before, len(refs))
	}
}

func TestNoteRepository_InvalidateReloadsExternalChange(t *testing.T) {
	vlt := newTestVault(t)

	writer := repository.NewNoteRepository(vlt)
	reader := repository.NewNoteRepository(vlt)

	if err := writer.Save(repository.Note{ID: "a", Title: "a"}); err != nil {
		t.Fatal(err)
	}

	if _, err := reader.ListAll(); err != nil {
		t.Fatal(err)
	}

	if err := writer.Save(repository.Note{ID: "b", Title: "b"}); err != nil {
		t.Fatal(err)
	}

	stale, err := reader.ListAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(stale) != 1 {
		t.Fatalf("got %d notes before invalidate, want 1 (stale cache)", len(stale))
	}

	reader.Invalidate()

	fresh, err := reader.ListAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(fresh) != 2 {
		t.Errorf("got %d notes after invalidate, want 2", len(fresh))
	}
}

func TestNotebookRepository_SaveThenLoadRoundTrips(t *testing.T) {
	vlt := newTestVault(t)
	repo := repository.NewNotebookRepository(vlt)

	want := repository.Notebook{ID: "nb-1", Name: "Work", CreatedAt: time.Unix(5, 0).UTC()}

	if err := repo.Save(want); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Load("nb-1")
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
