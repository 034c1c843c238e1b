package ancestry

import (
	"fmt"
	"testing"

	"gitlet/internal/object"
)

type fakeStore map[string]*object.Commit

func (f fakeStore) GetCommit(id string) (*object.Commit, error) {
	c, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("no such commit %s", id)
	}
	return c, nil
}

func commit(id string, parents ...string) *object.Commit {
	return &object.Commit{ID: id, Parents: parents, Tree: map[string]string{}}
}

// root -> a -> b
//      -> c -> b  (b is a merge of a and c)
func TestAncestorsAndSplitOnDiamond(t *testing.T) {
	store := fakeStore{
		"root": commit("root"),
		"a":    commit("a", "root"),
		"c":    commit("c", "root"),
		"b":    commit("b", "a", "c"),
	}

	dist, err := Ancestors(store, "b")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"b": 0, "a": 1, "c": 1, "root": 2}
	for id, d := range want {
		if dist[id] != d {
			t.Fatalf("distance to %s: want %d, got %d", id, d, dist[id])
		}
	}

	split, err := Split(store, "a", "c")
	if err != nil {
		t.Fatal(err)
	}
	if split != "root" {
		t.Fatalf("expected split point root, got %s", split)
	}
}

func TestSplitSelfIsZeroDistance(t *testing.T) {
	store := fakeStore{
		"root": commit("root"),
	}
	dist, err := Ancestors(store, "root")
	if err != nil {
		t.Fatal(err)
	}
	if dist["root"] != 0 {
		t.Fatalf("a commit's distance to itself must be 0")
	}
}

func TestSplitTieBreaksLexicographically(t *testing.T) {
	// Two common ancestors "x" and "y" equidistant from both tips; the
	// split must deterministically pick the lexicographically smaller id.
	store := fakeStore{
		"r":  commit("r"),
		"x":  commit("x", "r"),
		"y":  commit("y", "r"),
		"a1": commit("a1", "x", "y"),
		"b1": commit("b1", "y", "x"),
	}
	split, err := Split(store, "a1", "b1")
	if err != nil {
		t.Fatal(err)
	}
	if split != "x" {
		t.Fatalf("expected lexicographically smaller tied ancestor x, got %s", split)
	}
}

func TestFastForwardDetection(t *testing.T) {
	store := fakeStore{
		"root": commit("root"),
		"a":    commit("a", "root"),
	}
	split, err := Split(store, "root", "a")
	if err != nil {
		t.Fatal(err)
	}
	if split != "root" {
		t.Fatalf("split of an ancestor and its descendant must be the ancestor itself")
	}
}
