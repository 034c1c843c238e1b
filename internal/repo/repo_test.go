package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitlet/internal/vcslog"
)

func newTestRepo(t *testing.T) (*Repository, string) {
	t.Helper()
	dir := t.TempDir()
	r, out := Init(dir, vcslog.Noop())
	if !out.IsOk() {
		t.Fatalf("init failed: %+v", out)
	}
	return r, dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// Scenario 1: init+commit.
func TestScenarioInitAndCommit(t *testing.T) {
	r, dir := newTestRepo(t)

	head, err := r.Head()
	if err != nil {
		t.Fatal(err)
	}
	if len(head.Tree) != 0 {
		t.Fatalf("initial commit must have an empty tree")
	}

	writeFile(t, dir, "a.txt", "hi")
	if out := r.Add("a.txt"); !out.IsOk() {
		t.Fatalf("add failed: %+v", out)
	}
	if out := r.Commit("one"); !out.IsOk() {
		t.Fatalf("commit failed: %+v", out)
	}

	head, err = r.Head()
	if err != nil {
		t.Fatal(err)
	}
	if len(head.Tree) != 1 {
		t.Fatalf("expected one tracked file, got %v", head.Tree)
	}

	out := r.Log()
	if !out.IsOk() {
		t.Fatalf("log failed: %+v", out)
	}
	if strings.Count(out.Message, "===") != 2 {
		t.Fatalf("expected two commits in log, got:\n%s", out.Message)
	}
}

// Scenario 2: remove restores.
func TestScenarioRemoveRestores(t *testing.T) {
	r, dir := newTestRepo(t)
	writeFile(t, dir, "a.txt", "hi")
	r.Add("a.txt")
	r.Commit("one")

	if out := r.Rm("a.txt"); !out.IsOk() {
		t.Fatalf("rm failed: %+v", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.txt")); !os.IsNotExist(err) {
		t.Fatalf("expected a.txt to be deleted from the working tree")
	}

	out := r.Status()
	if !out.IsOk() {
		t.Fatalf("status failed: %+v", out)
	}
	if !strings.Contains(out.Message, "=== Removed Files ===\na.txt\n") {
		t.Fatalf("expected a.txt under Removed Files, got:\n%s", out.Message)
	}
}

// Scenario 3: branch & switch.
func TestScenarioBranchAndSwitch(t *testing.T) {
	r, dir := newTestRepo(t)
	writeFile(t, dir, "a.txt", "hi")
	r.Add("a.txt")
	r.Commit("one")

	if out := r.BranchCreate("dev"); !out.IsOk() {
		t.Fatalf("branch failed: %+v", out)
	}
	writeFile(t, dir, "b.txt", "world")
	r.Add("b.txt")
	if out := r.Commit("two"); !out.IsOk() {
		t.Fatalf("commit two failed: %+v", out)
	}

	if out := r.CheckoutBranch("dev"); !out.IsOk() {
		t.Fatalf("checkout dev failed: %+v", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "b.txt")); !os.IsNotExist(err) {
		t.Fatalf("b.txt should not exist on dev")
	}
	if _, err := os.Stat(filepath.Join(dir, "a.txt")); err != nil {
		t.Fatalf("a.txt should exist on dev: %v", err)
	}
}

// Scenario 4: fast-forward merge. dev is a strict descendant of
// master's tip, so merging dev into master just moves master's pointer.
func TestScenarioFastForwardMerge(t *testing.T) {
	r, dir := newTestRepo(t)
	writeFile(t, dir, "a.txt", "hi")
	r.Add("a.txt")
	r.Commit("one")
	r.BranchCreate("dev")

	r.CheckoutBranch("dev")
	writeFile(t, dir, "c.txt", "more")
	r.Add("c.txt")
	if out := r.Commit("three"); !out.IsOk() {
		t.Fatalf("commit three failed: %+v", out)
	}

	r.CheckoutBranch("master")
	out := r.Merge("dev")
	if !out.IsOk() {
		t.Fatalf("merge failed: %+v", out)
	}
	if out.Message != "Current branch fast-forwarded." {
		t.Fatalf("expected fast-forward message, got %q", out.Message)
	}

	masterTip, _ := r.Branch.Tip("master")
	devTip, _ := r.Branch.Tip("dev")
	if masterTip != devTip {
		t.Fatalf("expected master tip to equal dev tip after fast-forward")
	}
}

// Scenario 5: conflict merge.
func TestScenarioConflictMerge(t *testing.T) {
	r, dir := newTestRepo(t)
	writeFile(t, dir, "a.txt", "A")
	r.Add("a.txt")
	r.Commit("base")

	r.BranchCreate("dev")
	r.CheckoutBranch("dev")
	writeFile(t, dir, "a.txt", "B")
	r.Add("a.txt")
	r.Commit("B")

	r.CheckoutBranch("master")
	writeFile(t, dir, "a.txt", "C")
	r.Add("a.txt")
	r.Commit("C")

	out := r.Merge("dev")
	if !out.IsOk() {
		t.Fatalf("merge failed: %+v", out)
	}
	if out.Message != "Encountered a merge conflict." {
		t.Fatalf("expected conflict message, got %q", out.Message)
	}

	content := readFile(t, dir, "a.txt")
	want := "<<<<<<< HEAD\nC=======\nB>>>>>>>\n"
	if content != want {
		t.Fatalf("expected conflict markers %q, got %q", want, content)
	}

	head, err := r.Head()
	if err != nil {
		t.Fatal(err)
	}
	if len(head.Parents) != 2 {
		t.Fatalf("expected a merge commit with 2 parents, got %d", len(head.Parents))
	}
}

// Scenario 6: untracked blocks checkout.
func TestScenarioUntrackedBlocksCheckout(t *testing.T) {
	r, dir := newTestRepo(t)
	r.BranchCreate("dev")
	r.CheckoutBranch("dev")
	writeFile(t, dir, "x.txt", "1")
	r.Add("x.txt")
	r.Commit("add x")
	r.CheckoutBranch("master")

	writeFile(t, dir, "x.txt", "U")

	out := r.CheckoutBranch("dev")
	if out.Kind != KindUserError {
		t.Fatalf("expected a UserError, got %+v", out)
	}
	if !strings.Contains(out.Message, "untracked file in the way") {
		t.Fatalf("unexpected message: %q", out.Message)
	}

	content := readFile(t, dir, "x.txt")
	if content != "U" {
		t.Fatalf("working tree must be untouched on abort, got %q", content)
	}
}

func TestCommitWithNoChangesErrors(t *testing.T) {
	r, _ := newTestRepo(t)
	out := r.Commit("nothing changed")
	if out.Kind != KindUserError {
		t.Fatalf("expected UserError, got %+v", out)
	}
}

func TestCommitEmptyMessageErrors(t *testing.T) {
	r, dir := newTestRepo(t)
	writeFile(t, dir, "a.txt", "hi")
	r.Add("a.txt")
	out := r.Commit("")
	if out.Kind != KindUserError {
		t.Fatalf("expected UserError, got %+v", out)
	}
}

func TestAddMissingFileErrors(t *testing.T) {
	r, _ := newTestRepo(t)
	out := r.Add("nope.txt")
	if out.Kind != KindUserError {
		t.Fatalf("expected UserError, got %+v", out)
	}
}

func TestRmWithNoReasonErrors(t *testing.T) {
	r, _ := newTestRepo(t)
	out := r.Rm("never-existed.txt")
	if out.Kind != KindUserError {
		t.Fatalf("expected UserError, got %+v", out)
	}
}
