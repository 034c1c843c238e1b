package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"gitlet/internal/object"
)

// CheckoutFile implements §4.8 variant 1: restore name from HEAD.
func (r *Repository) CheckoutFile(name string) Outcome {
	head, err := r.Head()
	if err != nil {
		return Fatal(fmt.Errorf("reading HEAD: %w", err))
	}
	return r.checkoutFileFromCommit(head, name)
}

// CheckoutFileFromCommit implements §4.8 variant 2: restore name from an
// arbitrary commit, resolved by exact id or 8-hex prefix.
func (r *Repository) CheckoutFileFromCommit(commitID, name string) Outcome {
	c, err := r.Store.GetCommit(commitID)
	if err != nil {
		return UserErr("No commit with that id exists.")
	}
	return r.checkoutFileFromCommit(c, name)
}

func (r *Repository) checkoutFileFromCommit(c *object.Commit, name string) Outcome {
	blobID, ok := c.Tree[name]
	if !ok {
		return UserErr("File does not exist in that commit.")
	}
	blob, err := r.Store.GetBlob(blobID)
	if err != nil {
		return Fatal(fmt.Errorf("reading blob %s: %w", blobID, err))
	}
	if err := r.recoverBlob(blob); err != nil {
		return Fatal(err)
	}
	return Ok("")
}

// recoverBlob writes a blob's bytes to its named working-tree file,
// overwriting unconditionally (§4.3 Blob.recover()).
func (r *Repository) recoverBlob(b *object.Blob) error {
	path := filepath.Join(r.root, b.Name)
	if err := os.WriteFile(path, b.Data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", b.Name, err)
	}
	return nil
}

// untrackedOverwriteCheck implements §4.8's check: for every file
// present on disk that is untracked by head but tracked by target, fail
// before any mutation happens.
func (r *Repository) untrackedOverwriteCheck(head, target *object.Commit) Outcome {
	names, err := r.workingFiles()
	if err != nil {
		return Fatal(err)
	}
	for _, name := range names {
		if !head.Has(name) && target.Has(name) {
			return UserErr("There is an untracked file in the way; delete it, or add and commit it first.")
		}
	}
	return Ok("")
}

// deleteAllWorkingFiles removes every plain file directly under root,
// the working-tree wipe that precedes materializing a target snapshot.
func (r *Repository) deleteAllWorkingFiles() error {
	names, err := r.workingFiles()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := os.Remove(filepath.Join(r.root, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("deleting %s: %w", name, err)
		}
	}
	return nil
}

// materializeTree wipes the working directory and writes every blob in
// target's tree to disk.
func (r *Repository) materializeTree(target *object.Commit) error {
	if err := r.deleteAllWorkingFiles(); err != nil {
		return err
	}
	for name, blobID := range target.Tree {
		blob, err := r.Store.GetBlob(blobID)
		if err != nil {
			return fmt.Errorf("reading blob %s for %s: %w", blobID, name, err)
		}
		if err := r.recoverBlob(blob); err != nil {
			return err
		}
	}
	return nil
}

// CheckoutBranch implements §4.8 variant 3.
func (r *Repository) CheckoutBranch(name string) Outcome {
	if !r.Branch.Contains(name) {
		return UserErr("No such branch exists.")
	}
	if name == r.Branch.Current() {
		return UserErr("No need to checkout the current branch.")
	}

	head, err := r.Head()
	if err != nil {
		return Fatal(fmt.Errorf("reading HEAD: %w", err))
	}
	targetTip, err := r.Branch.Tip(name)
	if err != nil {
		return Fatal(err)
	}
	target, err := r.Store.GetCommit(targetTip)
	if err != nil {
		return Fatal(fmt.Errorf("reading target commit: %w", err))
	}

	if out := r.untrackedOverwriteCheck(head, target); !out.IsOk() {
		return out
	}

	if err := r.materializeTree(target); err != nil {
		return Fatal(err)
	}
	if err := r.Stage.Update(target); err != nil {
		return Fatal(fmt.Errorf("syncing stage: %w", err))
	}
	if err := r.Branch.Switch(name); err != nil {
		return Fatal(fmt.Errorf("switching branch: %w", err))
	}

	r.log.Info("checked out branch", zap.String("branch", name), zap.String("commit_id", target.ID))
	return Ok("")
}

// Reset implements §4.8's reset: as branch-checkout but targets an
// arbitrary commit and moves the CURRENT branch's tip, not HEAD alone.
func (r *Repository) Reset(commitID string) Outcome {
	target, err := r.Store.GetCommit(commitID)
	if err != nil {
		return UserErr("No commit with that id exists.")
	}

	head, err := r.Head()
	if err != nil {
		return Fatal(fmt.Errorf("reading HEAD: %w", err))
	}

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

	r.log.Info("reset", zap.String("commit_id", target.ID))
	return Ok("")
}
