// Package repo wires the object store, stage, and branch registry into
// one Repository value per command (Design Note §9), and implements the
// working-tree operations, merge engine, and history views that sit on
// top of them.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"gitlet/internal/branch"
	"gitlet/internal/object"
	"gitlet/internal/objectstore"
	"gitlet/internal/stage"
	"gitlet/internal/vcslog"
)

// DirName is the reserved repository directory name (§6).
const DirName = ".gitlet"

// MasterBranch is the branch init() creates.
const MasterBranch = "master"

// Repository owns one command's view of an on-disk gitlet repository:
// the object store, the branch registry, and the staging area. It holds
// no process-wide state; every command constructs its own (Design Note
// §9, "Process-wide mutable state").
type Repository struct {
	root    string
	Store   *objectstore.Store
	Branch  *branch.Registry
	Stage   *stage.Stage
	log     *vcslog.Logger
}

func gitletDir(root string) string    { return filepath.Join(root, DirName) }
func objectsDir(root string) string   { return filepath.Join(gitletDir(root), "objects") }
func branchesPath(root string) string { return filepath.Join(gitletDir(root), "branches") }
func stagePath(root string) string    { return filepath.Join(gitletDir(root), "stage") }

// Exists reports whether root already holds an initialized repository.
func Exists(root string) bool {
	info, err := os.Stat(gitletDir(root))
	return err == nil && info.IsDir()
}

// Init creates a new repository at root: the initial commit and the
// master branch pointing at it. Fails as a UserError if root already
// holds a repository.
func Init(root string, log *vcslog.Logger) (*Repository, Outcome) {
	if Exists(root) {
		return nil, UserErr("A Gitlet version-control system already exists in the current directory.")
	}

	store, err := objectstore.New(objectsDir(root))
	if err != nil {
		return nil, Fatal(fmt.Errorf("creating object store: %w", err))
	}

	initial := object.NewInitialCommit()
	if _, err := store.PutCommit(initial); err != nil {
		return nil, Fatal(fmt.Errorf("storing initial commit: %w", err))
	}

	branches, err := branch.Init(branchesPath(root), MasterBranch, initial.ID)
	if err != nil {
		return nil, Fatal(fmt.Errorf("creating branch registry: %w", err))
	}

	st, err := stage.Load(stagePath(root))
	if err != nil {
		return nil, Fatal(fmt.Errorf("creating stage: %w", err))
	}
	if err := st.Update(initial); err != nil {
		return nil, Fatal(fmt.Errorf("initializing stage: %w", err))
	}

	log.Info("initialized repository", zap.String("root", root), zap.String("initial_commit", initial.ID))

	return &Repository{root: root, Store: store, Branch: branches, Stage: st, log: log}, Ok("Initialized empty Gitlet repository in " + root)
}

// Open loads an existing repository rooted at root. Open checks
// Exists(root) itself; on a missing repository it returns the exact
// "Not in an initialized Gitlet directory." diagnostic as a UserError.
func Open(root string, log *vcslog.Logger) (*Repository, Outcome) {
	if !Exists(root) {
		return nil, UserErr("Not in an initialized Gitlet directory.")
	}

	store, err := objectstore.New(objectsDir(root))
	if err != nil {
		return nil, Fatal(fmt.Errorf("opening object store: %w", err))
	}
	branches, err := branch.Load(branchesPath(root))
	if err != nil {
		return nil, Fatal(fmt.Errorf("loading branches: %w", err))
	}
	st, err := stage.Load(stagePath(root))
	if err != nil {
		return nil, Fatal(fmt.Errorf("loading stage: %w", err))
	}

	return &Repository{root: root, Store: store, Branch: branches, Stage: st, log: log}, Ok("")
}

// Head returns the commit currently checked out.
func (r *Repository) Head() (*object.Commit, error) {
	return r.Store.GetCommit(r.Branch.Head())
}

// workingFiles lists the plain file names directly under root (the
// working tree is flat, per Non-goals: no sub-directory tracking).
func (r *Repository) workingFiles() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("listing working directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (r *Repository) readWorkingFile(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(r.root, name))
}

// Add implements §4.8 add: create (or reuse) a blob for the file's
// current bytes and stage name -> blob id.
func (r *Repository) Add(name string) Outcome {
	data, err := r.readWorkingFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return UserErr("File does not exist.")
		}
		return Fatal(fmt.Errorf("reading %s: %w", name, err))
	}

	b := object.NewBlob(name, data)
	if _, err := r.Store.PutBlob(b); err != nil {
		return Fatal(fmt.Errorf("storing blob for %s: %w", name, err))
	}
	if err := r.Stage.Put(name, b.ID); err != nil {
		return Fatal(fmt.Errorf("staging %s: %w", name, err))
	}

	r.log.Debug("staged file", zap.String("name", name), zap.String("blob_id", b.ID))
	return Ok("")
}

// Rm implements §4.8 rm: unstage unconditionally (§9 open question 3),
// and delete the working file if HEAD tracks it.
func (r *Repository) Rm(name string) Outcome {
	head, err := r.Head()
	if err != nil {
		return Fatal(fmt.Errorf("reading HEAD: %w", err))
	}

	staged := r.Stage.Has(name)
	tracked := head.Has(name)
	if !staged && !tracked {
		return UserErr("No reason to remove the file.")
	}

	if err := r.Stage.Remove(name); err != nil {
		return Fatal(fmt.Errorf("unstaging %s: %w", name, err))
	}

	if tracked {
		path := filepath.Join(r.root, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return Fatal(fmt.Errorf("deleting %s: %w", name, err))
		}
	}

	r.log.Debug("removed file", zap.String("name", name))
	return Ok("")
}

// Commit implements §4.4's child-commit constructor plus §4.7's delegate
// from the branch registry: refuse an empty message, refuse a no-op
// commit (stage.tree == parent.tree), otherwise create the commit,
// store it, and advance the current branch.
func (r *Repository) Commit(message string) Outcome {
	return r.commitWithParents(message, nil)
}

func (r *Repository) commitWithParents(message string, extraParents []string) Outcome {
	if message == "" {
		return UserErr("Please enter a commit message.")
	}

	head, err := r.Head()
	if err != nil {
		return Fatal(fmt.Errorf("reading HEAD: %w", err))
	}

	if len(extraParents) == 0 && treesEqual(r.Stage.Tree, head.Tree) {
		return UserErr("No changes added to the commit.")
	}

	parents := append([]string{head.ID}, extraParents...)
	c := object.NewCommit(message, parents, r.Stage.Tree, time.Now())
	if _, err := r.Store.PutCommit(c); err != nil {
		return Fatal(fmt.Errorf("storing commit: %w", err))
	}
	if err := r.Branch.Advance(c.ID); err != nil {
		return Fatal(fmt.Errorf("advancing branch: %w", err))
	}
	if err := r.Stage.Update(c); err != nil {
		return Fatal(fmt.Errorf("syncing stage to new head: %w", err))
	}

	r.log.Info("committed", zap.String("commit_id", c.ID), zap.Int("parents", len(parents)))
	return Ok("")
}

func treesEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
