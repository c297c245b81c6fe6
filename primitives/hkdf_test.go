package primitives_test

import (
	"bytes"
	"testing"

	"github.com/witflo/fyndo-core/primitives"
)

func TestExpand_KeyIsolationAcrossContexts(t *testing.T) {
	vk, err := primitives.SymmetricKey()
	if err != nil {
		t.Fatal(err)
	}

	a, err := primitives.Expand(vk, primitives.ContentContext("note-a"), 32)
	if err != nil {
		t.Fatal(err)
	}

	b, err := primitives.Expand(vk, primitives.ContentContext("note-b"), 32)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Equal(a, b) {
		t.Error("expected distinct derived keys for distinct note ids")
	}
}

func TestExpand_Deterministic(t *testing.T) {
	vk, _ := primitives.SymmetricKey()

	a, err := primitives.Expand(vk, primitives.ContentContext("note-a"), 32)
	if err != nil {
		t.Fatal(err)
	}

	b, err := primitives.Expand(vk, primitives.ContentContext("note-a"), 32)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(a, b) {
		t.Error("expected the same context to derive the same key")
	}
}
