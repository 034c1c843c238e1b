// Package stage implements the staging area (§4.6): the mutable write
// buffer between the working directory and the next commit.
package stage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gitlet/internal/object"
)

// Stage holds the name -> blob id mapping that will become the tree of
// the next commit, and is also the snapshot checkout/reset/merge rewrite
// the working directory against.
type Stage struct {
	path string
	Tree map[string]string
}

// Load reads the stage file at path, returning an empty Stage if it
// doesn't exist yet (a freshly initialized repository).
func Load(path string) (*Stage, error) {
	s := &Stage{path: path, Tree: map[string]string{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading stage: %w", err)
	}
	if err := json.Unmarshal(data, &s.Tree); err != nil {
		return nil, fmt.Errorf("decoding stage: %w", err)
	}
	return s, nil
}

// save persists the stage atomically: write to a temp file in the same
// directory, then rename over the target, so a crash mid-write never
// leaves a half-written stage file (§5).
func (s *Stage) save() error {
	data, err := json.Marshal(s.Tree)
	if err != nil {
		return fmt.Errorf("encoding stage: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating stage directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing stage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("finalizing stage: %w", err)
	}
	return nil
}

// Put inserts or replaces name -> blobID, then persists.
func (s *Stage) Put(name, blobID string) error {
	s.Tree[name] = blobID
	return s.save()
}

// Remove deletes name if present, then persists. A no-op if absent,
// matching §9 open question 3 (rm unstages unconditionally, without
// checking whether the stage is already clean for that file).
func (s *Stage) Remove(name string) error {
	delete(s.Tree, name)
	return s.save()
}

// Has reports whether name is staged.
func (s *Stage) Has(name string) bool {
	_, ok := s.Tree[name]
	return ok
}

// BlobID returns the blob id staged under name, or "" if unstaged.
func (s *Stage) BlobID(name string) string {
	return s.Tree[name]
}

// Names returns staged file names in lexicographic order, matching the
// iteration order §4.6 pins for status output.
func (s *Stage) Names() []string {
	names := make([]string, 0, len(s.Tree))
	for name := range s.Tree {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Update replaces the whole staged tree with a commit's tree, then
// persists. Called after commit/checkout/reset/merge so that
// stage.Tree == head.Tree (§3 invariant 4).
func (s *Stage) Update(commit *object.Commit) error {
	tree := make(map[string]string, len(commit.Tree))
	for name, id := range commit.Tree {
		tree[name] = id
	}
	s.Tree = tree
	return s.save()
}

// DiffVs reports whether the stage differs from commit's tree, OR any
// staged file's on-disk content differs from what's staged, OR any
// tracked file is missing from disk — the merge preflight's
// "uncommitted changes" check (§4.6, §4.9 step 3).
func (s *Stage) DiffVs(commit *object.Commit, cwd string) (bool, error) {
	if len(s.Tree) != len(commit.Tree) {
		return true, nil
	}
	for name, id := range s.Tree {
		if commit.Tree[name] != id {
			return true, nil
		}
	}

	for name, blobID := range s.Tree {
		data, err := os.ReadFile(filepath.Join(cwd, name))
		if err != nil {
			if os.IsNotExist(err) {
				return true, nil
			}
			return false, fmt.Errorf("reading working file %s: %w", name, err)
		}
		if object.BlobIDFor(name, data) != blobID {
			return true, nil
		}
	}

	return false, nil
}
