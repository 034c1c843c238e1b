// Package branch implements the branch registry (§4.7): named pointers
// into the commit DAG, plus the single "current" pointer that HEAD
// always tracks.
package branch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ErrExists is returned when creating a branch name that already exists.
var ErrExists = fmt.Errorf("branch already exists")

// ErrNotFound is returned when a named branch is not in the registry.
var ErrNotFound = fmt.Errorf("branch not found")

// ErrRemoveCurrent is returned when asked to remove the checked-out branch.
var ErrRemoveCurrent = fmt.Errorf("cannot remove the current branch")

// ErrAlreadyOnBranch is returned by Switch when asked to switch to the
// branch that is already current.
var ErrAlreadyOnBranch = fmt.Errorf("already on that branch")

// state is the on-disk shape, matching the invariant tips[current] == head.
type state struct {
	Tips    map[string]string `json:"tips"`
	Current string            `json:"current"`
}

// Registry is the persisted collection of branch tips plus the current
// branch pointer, loaded into memory for the lifetime of one command.
type Registry struct {
	path string
	tips map[string]string
	cur  string
}

// Init creates a fresh registry with a single branch (repo.Init uses "master")
// pointing at initialID, and persists it.
func Init(path, branchName, initialID string) (*Registry, error) {
	r := &Registry{
		path: path,
		tips: map[string]string{branchName: initialID},
		cur:  branchName,
	}
	if err := r.save(); err != nil {
		return nil, err
	}
	return r, nil
}

// Load reads the registry from path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading branches: %w", err)
	}
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding branches: %w", err)
	}
	return &Registry{path: path, tips: s.Tips, cur: s.Current}, nil
}

func (r *Registry) save() error {
	s := state{Tips: r.tips, Current: r.cur}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding branches: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("creating branches directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing branches: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("finalizing branches: %w", err)
	}
	return nil
}

// Current returns the name of the checked-out branch.
func (r *Registry) Current() string {
	return r.cur
}

// Head returns the commit id the current branch points at.
func (r *Registry) Head() string {
	return r.tips[r.cur]
}

// Contains reports whether name is a known branch.
func (r *Registry) Contains(name string) bool {
	_, ok := r.tips[name]
	return ok
}

// Tip returns the commit id name points at.
func (r *Registry) Tip(name string) (string, error) {
	id, ok := r.tips[name]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

// Names returns every branch name in sorted order, with the current
// branch identifiable by the caller via Current() (§4.10 status format:
// current branch is marked with a leading "*").
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tips))
	for name := range r.tips {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create adds a new branch pointing at commitID, without switching to it.
func (r *Registry) Create(name, commitID string) error {
	if r.Contains(name) {
		return ErrExists
	}
	r.tips[name] = commitID
	return r.save()
}

// Remove deletes a branch from the registry. Refuses to remove the
// current branch (§4.7).
func (r *Registry) Remove(name string) error {
	if !r.Contains(name) {
		return ErrNotFound
	}
	if name == r.cur {
		return ErrRemoveCurrent
	}
	delete(r.tips, name)
	return r.save()
}

// Switch moves HEAD to point at branch name, without touching its tip.
func (r *Registry) Switch(name string) error {
	if !r.Contains(name) {
		return ErrNotFound
	}
	if name == r.cur {
		return ErrAlreadyOnBranch
	}
	r.cur = name
	return r.save()
}

// Advance moves the current branch's tip to commitID, the effect of a
// commit, fast-forward merge, or reset.
func (r *Registry) Advance(commitID string) error {
	r.tips[r.cur] = commitID
	return r.save()
}

// SetTip moves a named branch's tip to commitID regardless of which
// branch is current. Reset moves the current branch through Advance
// instead.
func (r *Registry) SetTip(name, commitID string) error {
	if !r.Contains(name) {
		return ErrNotFound
	}
	r.tips[name] = commitID
	return r.save()
}
