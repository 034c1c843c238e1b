package repo

import (
	"errors"
	"fmt"

	"gitlet/internal/branch"
)

// BranchCreate implements §4.7's branch command: a new branch pointing
// at current HEAD.
func (r *Repository) BranchCreate(name string) Outcome {
	err := r.Branch.Create(name, r.Branch.Head())
	switch {
	case err == nil:
		return Ok("")
	case errors.Is(err, branch.ErrExists):
		return UserErr("A branch with that name already exists.")
	default:
		return Fatal(fmt.Errorf("creating branch: %w", err))
	}
}

// BranchRemove implements §4.7's rm-branch command.
func (r *Repository) BranchRemove(name string) Outcome {
	err := r.Branch.Remove(name)
	switch {
	case err == nil:
		return Ok("")
	case errors.Is(err, branch.ErrRemoveCurrent):
		return UserErr("Cannot remove the current branch.")
	case errors.Is(err, branch.ErrNotFound):
		return UserErr("A branch with that name does not exist.")
	default:
		return Fatal(fmt.Errorf("removing branch: %w", err))
	}
}
