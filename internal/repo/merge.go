package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"gitlet/internal/ancestry"
	"gitlet/internal/object"
)

// Merge implements §4.9: the preflight checks in order, the eight-case
// per-file classification, conflict materialization, and the merge
// commit finalisation.
func (r *Repository) Merge(branchName string) Outcome {
	if branchName == r.Branch.Current() {
		return UserErr("Cannot merge a branch with itself.")
	}
	if !r.Branch.Contains(branchName) {
		return UserErr("A branch with that name does not exist.")
	}

	head, err := r.Head()
	if err != nil {
		return Fatal(fmt.Errorf("reading HEAD: %w", err))
	}
	diff, err := r.Stage.DiffVs(head, r.root)
	if err != nil {
		return Fatal(err)
	}
	if diff {
		return UserErr("You have uncommitted changes.")
	}

	targetTip, err := r.Branch.Tip(branchName)
	if err != nil {
		return Fatal(err)
	}
	target, err := r.Store.GetCommit(targetTip)
	if err != nil {
		return Fatal(fmt.Errorf("reading target commit: %w", err))
	}

	splitID, err := ancestry.Split(r.Store, head.ID, target.ID)
	if err != nil {
		return Fatal(fmt.Errorf("computing split point: %w", err))
	}
	if splitID == target.ID {
		return UserErr("Given branch is an ancestor of the current branch.")
	}
	if splitID == head.ID {
		if out := r.untrackedOverwriteCheck(head, target); !out.IsOk() {
			return out
		}
		if err := r.materializeTree(target); err != nil {
			return Fatal(err)
		}
		if err := r.Stage.Update(target); err != nil {
			return Fatal(fmt.Errorf("syncing stage: %w", err))
		}
		if err := r.Branch.Advance(target.ID); err != nil {
			return Fatal(fmt.Errorf("advancing branch: %w", err))
		}
		return Ok("Current branch fast-forwarded.")
	}
	split, err := r.Store.GetCommit(splitID)
	if err != nil {
		return Fatal(fmt.Errorf("reading split commit: %w", err))
	}

	if out := r.untrackedOverwriteCheck(head, target); !out.IsOk() {
		return out
	}

	names := mergeFileNames(split, head, target)

	hasChange := false
	hasConflict := false

	for _, name := range names {
		s, err := r.optionalBlob(split, name)
		if err != nil {
			return Fatal(err)
		}
		c, err := r.optionalBlob(head, name)
		if err != nil {
			return Fatal(err)
		}
		t, err := r.optionalBlob(target, name)
		if err != nil {
			return Fatal(err)
		}

		changed, conflicted, err := r.mergeOneFile(name, s, c, t)
		if err != nil {
			return Fatal(err)
		}
		hasChange = hasChange || changed
		hasConflict = hasConflict || conflicted
	}

	if !hasChange {
		return UserErr("No changes to merge.")
	}

	message := fmt.Sprintf("Merged %s into %s.", branchName, r.Branch.Current())
	parents := []string{head.ID, target.ID}
	mergeCommit := object.NewCommit(message, parents, r.Stage.Tree, time.Now())
	if _, err := r.Store.PutCommit(mergeCommit); err != nil {
		return Fatal(fmt.Errorf("storing merge commit: %w", err))
	}
	if err := r.Branch.Advance(mergeCommit.ID); err != nil {
		return Fatal(fmt.Errorf("advancing branch: %w", err))
	}
	if err := r.Stage.Update(mergeCommit); err != nil {
		return Fatal(fmt.Errorf("syncing stage: %w", err))
	}

	r.log.Info("merged", zap.String("branch", branchName), zap.String("commit_id", mergeCommit.ID), zap.Bool("conflict", hasConflict))

	if hasConflict {
		return Ok("Encountered a merge conflict.")
	}
	return Ok("")
}

func (r *Repository) optionalBlob(c *object.Commit, name string) (*object.Blob, error) {
	id, ok := c.Tree[name]
	if !ok {
		return nil, nil
	}
	return r.Store.GetBlob(id)
}

// mergeFileNames returns the union of file names across all three
// commits, in lexicographic order (§4.9 Ordering).
func mergeFileNames(commits ...*object.Commit) []string {
	set := map[string]struct{}{}
	for _, c := range commits {
		for name := range c.Tree {
			set[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// mergeOneFile applies the eight-case table to one file's split/current/
// target blobs, mutating the stage and working directory as needed.
// Returns whether this file produced a staged change and whether it was
// a conflict.
func (r *Repository) mergeOneFile(name string, s, c, t *object.Blob) (changed, conflicted bool, err error) {
	eqCS := object.EqualBlobs(c, s)
	eqTS := object.EqualBlobs(t, s)
	eqCT := object.EqualBlobs(c, t)

	switch {
	case eqCS && !eqTS && s != nil && c != nil && t != nil:
		// 1: modified only in target. The presence guards on s and c
		// (beyond t != nil) matter: without them this condition also
		// matches "added only in target" (s, c both nil), which case 5
		// must own instead.
		if err := r.recoverBlob(t); err != nil {
			return false, false, err
		}
		if err := r.Stage.Put(name, t.ID); err != nil {
			return false, false, err
		}
		return true, false, nil

	case !eqCS && eqTS && s != nil && c != nil && t != nil:
		// 2: modified only in current; already on disk, just stage it.
		if err := r.Stage.Put(name, c.ID); err != nil {
			return false, false, err
		}
		return false, false, nil

	case !eqCS && !eqTS && eqCT && s != nil && c != nil && t != nil:
		// 3: same change on both sides.
		if err := r.Stage.Put(name, c.ID); err != nil {
			return false, false, err
		}
		return false, false, nil

	case s == nil && c != nil && t == nil:
		// 4: added only in current.
		if err := r.Stage.Put(name, c.ID); err != nil {
			return false, false, err
		}
		return false, false, nil

	case s == nil && c == nil && t != nil:
		// 5: added only in target.
		if err := r.recoverBlob(t); err != nil {
			return false, false, err
		}
		if err := r.Stage.Put(name, t.ID); err != nil {
			return false, false, err
		}
		return true, false, nil

	case s != nil && eqCS && t == nil:
		// 6: removed only in target.
		path := filepath.Join(r.root, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return false, false, fmt.Errorf("deleting %s: %w", name, err)
		}
		if err := r.Stage.Remove(name); err != nil {
			return false, false, err
		}
		return true, false, nil

	case s != nil && eqTS && c == nil:
		// 7: removed only in current; stays absent.
		if err := r.Stage.Remove(name); err != nil {
			return false, false, err
		}
		return false, false, nil

	case !eqCT:
		// 8: divergent change, materialize a conflict artifact.
		var curBytes, tgtBytes []byte
		if c != nil {
			curBytes = c.Data
		}
		if t != nil {
			tgtBytes = t.Data
		}
		content := fmt.Sprintf("<<<<<<< HEAD\n%s=======\n%s>>>>>>>\n", curBytes, tgtBytes)

		path := filepath.Join(r.root, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return false, false, fmt.Errorf("writing conflict file %s: %w", name, err)
		}
		conflictBlob := object.NewBlob(name, []byte(content))
		if _, err := r.Store.PutBlob(conflictBlob); err != nil {
			return false, false, err
		}
		if err := r.Stage.Put(name, conflictBlob.ID); err != nil {
			return false, false, err
		}
		return true, true, nil
	}

	return false, false, nil
}
