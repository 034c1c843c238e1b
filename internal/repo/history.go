package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gitlet/internal/ancestry"
	"gitlet/internal/object"
)

// Log implements §4.10: walk from HEAD along first-parent only.
func (r *Repository) Log() Outcome {
	var b strings.Builder
	c, err := r.Head()
	if err != nil {
		return Fatal(fmt.Errorf("reading HEAD: %w", err))
	}
	for {
		b.WriteString(c.String())
		if len(c.Parents) == 0 {
			break
		}
		c, err = r.Store.GetCommit(c.Parents[0])
		if err != nil {
			return Fatal(fmt.Errorf("walking history: %w", err))
		}
	}
	return Ok(b.String())
}

// GlobalLog implements §4.10: every commit in the object store, order
// unspecified.
func (r *Repository) GlobalLog() Outcome {
	commits, err := r.Store.AllCommits()
	if err != nil {
		return Fatal(err)
	}
	var b strings.Builder
	for _, c := range commits {
		b.WriteString(c.String())
	}
	return Ok(b.String())
}

// Find implements §4.10: linear scan for commits with an exact message
// match.
func (r *Repository) Find(message string) Outcome {
	commits, err := r.Store.AllCommits()
	if err != nil {
		return Fatal(err)
	}
	var ids []string
	for _, c := range commits {
		if c.Message == message {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		return UserErr("Found no commit with that message.")
	}
	sort.Strings(ids)
	return Ok(strings.Join(ids, "\n") + "\n")
}

// Split implements the bonus split command (SPEC_FULL.md §13): print
// the split commit between two arbitrary commits.
func (r *Repository) Split(id1, id2 string) Outcome {
	c1, err := r.Store.GetCommit(id1)
	if err != nil {
		return UserErr("No commit with that id exists.")
	}
	c2, err := r.Store.GetCommit(id2)
	if err != nil {
		return UserErr("No commit with that id exists.")
	}
	splitID, err := ancestry.Split(r.Store, c1.ID, c2.ID)
	if err != nil {
		return Fatal(err)
	}
	split, err := r.Store.GetCommit(splitID)
	if err != nil {
		return Fatal(err)
	}
	return Ok(split.String())
}

// Status implements §4.10's five-section status view.
func (r *Repository) Status() Outcome {
	head, err := r.Head()
	if err != nil {
		return Fatal(fmt.Errorf("reading HEAD: %w", err))
	}

	cwdNames, err := r.workingFiles()
	if err != nil {
		return Fatal(err)
	}

	names := map[string]struct{}{}
	for n := range r.Stage.Tree {
		names[n] = struct{}{}
	}
	for _, n := range cwdNames {
		names[n] = struct{}{}
	}
	for n := range head.Tree {
		names[n] = struct{}{}
	}

	var staged, removed, modNotStaged, untracked []string

	for name := range names {
		stagedBlob, err := r.optionalBlob(&object.Commit{Tree: r.Stage.Tree}, name)
		if err != nil {
			return Fatal(err)
		}
		currBlob, err := r.optionalBlob(head, name)
		if err != nil {
			return Fatal(err)
		}
		cwdBlob, err := r.cwdBlob(name)
		if err != nil {
			return Fatal(err)
		}

		eqStagedCurr := object.EqualBlobs(stagedBlob, currBlob)
		eqStagedCwd := object.EqualBlobs(stagedBlob, cwdBlob)

		if !eqStagedCurr && eqStagedCwd && cwdBlob != nil {
			staged = append(staged, name)
		}
		if head.Has(name) && !r.Stage.Has(name) {
			removed = append(removed, name)
		}
		if eqStagedCurr && !eqStagedCwd {
			switch {
			case currBlob != nil && cwdBlob == nil:
				modNotStaged = append(modNotStaged, name+" (deleted)")
			case stagedBlob != nil:
				modNotStaged = append(modNotStaged, name+" (modified)")
			}
		}
		if !head.Has(name) && !r.Stage.Has(name) {
			untracked = append(untracked, name)
		}
	}

	sort.Strings(staged)
	sort.Strings(removed)
	sort.Strings(modNotStaged)
	sort.Strings(untracked)

	var b strings.Builder
	b.WriteString("=== Branches ===\n")
	b.WriteString("*" + r.Branch.Current() + "\n")
	for _, name := range r.Branch.Names() {
		if name != r.Branch.Current() {
			b.WriteString(name + "\n")
		}
	}
	b.WriteString("\n")

	b.WriteString("=== Staged Files ===\n")
	for _, n := range staged {
		b.WriteString(n + "\n")
	}
	b.WriteString("\n")

	b.WriteString("=== Removed Files ===\n")
	for _, n := range removed {
		b.WriteString(n + "\n")
	}
	b.WriteString("\n")

	b.WriteString("=== Modifications Not Staged For Commit ===\n")
	for _, n := range modNotStaged {
		b.WriteString(n + "\n")
	}
	b.WriteString("\n")

	b.WriteString("=== Untracked Files ===\n")
	for _, n := range untracked {
		b.WriteString(n + "\n")
	}

	return Ok(b.String())
}

func (r *Repository) cwdBlob(name string) (*object.Blob, error) {
	data, err := os.ReadFile(filepath.Join(r.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return object.NewBlob(name, data), nil
}
