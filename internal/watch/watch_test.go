package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestWatcherFiresOnFileWrite(t *testing.T) {
	dir := t.TempDir()

	calls := make(chan struct{}, 8)
	w, err := New(dir, zap.NewNop(), func() { calls <- struct{}{} })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	go w.Run()

	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("expected the initial onChange call")
	}

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatal("expected onChange after a file write")
	}
}

func TestShouldIgnoreGitletDir(t *testing.T) {
	w := &Watcher{root: "/repo"}
	if !w.shouldIgnore(".gitlet") {
		t.Fatalf(".gitlet must be ignored")
	}
	if !w.shouldIgnore(filepath.Join(".gitlet", "stage")) {
		t.Fatalf("files under .gitlet must be ignored")
	}
	if w.shouldIgnore("a.txt") {
		t.Fatalf("ordinary files must not be ignored")
	}
}
