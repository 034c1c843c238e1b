package objectstore

import (
	"testing"

	"gitlet/internal/object"
)

func TestPutGetBlobRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	b := object.NewBlob("a.txt", []byte("hello world"))
	if _, err := store.PutBlob(b); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetBlob(b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if string(got.Data) != "hello world" {
		t.Fatalf("unexpected content: %q", got.Data)
	}
}

func TestPutIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	b := object.NewBlob("a.txt", []byte("x"))
	if _, err := store.PutBlob(b); err != nil {
		t.Fatal(err)
	}
	if _, err := store.PutBlob(b); err != nil {
		t.Fatalf("writing an existing id must be a no-op, got error: %v", err)
	}
}

func TestPrefixResolution(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	b := object.NewBlob("a.txt", []byte("x"))
	if _, err := store.PutBlob(b); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetBlob(b.ID[:8])
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != b.ID {
		t.Fatalf("prefix resolution returned wrong object")
	}

	if _, err := store.GetBlob("00000000"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := store.GetBlob("bad"); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID for a non-8/40 length id, got %v", err)
	}
}

func TestAmbiguousPrefix(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	// Two distinct blobs whose ids we force to share a prefix by writing
	// directly, since natural collisions in a short prefix are unlikely
	// in a unit test otherwise.
	id1 := "aaaaaaaa11111111111111111111111111111111"
	id2 := "aaaaaaaa22222222222222222222222222222222"
	b := object.NewBlob("x.txt", []byte("x"))
	data, _ := object.EncodeBlob(b)
	if err := store.Put(id1, data); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(id2, data); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Resolve("aaaaaaaa"); err != ErrAmbiguous {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	b := object.NewBlob("a.txt", []byte("x"))
	if store.Exists(b.ID) {
		t.Fatalf("blob should not exist before Put")
	}
	if _, err := store.PutBlob(b); err != nil {
		t.Fatal(err)
	}
	if !store.Exists(b.ID) {
		t.Fatalf("blob should exist after Put")
	}
}
