// Package objectstore persists Blob and Commit objects as one file per
// object under a directory, keyed by their content-addressed id, and
// resolves both exact 40-hex ids and unambiguous 8-hex prefixes.
package objectstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"gitlet/internal/hashutil"
	"gitlet/internal/object"
)

var (
	// ErrNotFound is returned when no object matches the given id or prefix.
	ErrNotFound = errors.New("object not found")
	// ErrAmbiguous is returned when a prefix matches two or more objects.
	ErrAmbiguous = errors.New("ambiguous object id")
	// ErrInvalidID is returned for ids that are neither 40 nor 8 hex characters.
	ErrInvalidID = errors.New("invalid object id")
)

// Store is a content-addressed, single-writer object store rooted at one
// directory (§6: "objects/ — one file per blob or commit, filename =
// object id"). It keeps an in-process LRU cache of decoded object bytes so
// that the ancestor engine and merge engine, which re-read the same
// commits repeatedly within one process, don't pay repeated disk+zstd
// round trips.
type Store struct {
	root       string
	compressor *object.Compressor
	mu         sync.RWMutex
	cache      *lru.Cache[string, []byte]
}

// New opens (creating if necessary) an object store rooted at dir.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating object store directory: %w", err)
	}
	comp, err := object.NewCompressor(object.DefaultCompressionOptions())
	if err != nil {
		return nil, fmt.Errorf("initializing compressor: %w", err)
	}
	cache, err := lru.New[string, []byte](256)
	if err != nil {
		return nil, fmt.Errorf("creating object cache: %w", err)
	}
	return &Store{root: dir, compressor: comp, cache: cache}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.root, id)
}

// Put writes raw envelope bytes under id. Writing an existing id is a
// no-op (§4.2 idempotence).
func (s *Store) Put(id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(id)
	if _, err := os.Stat(path); err == nil {
		s.cache.Add(id, data)
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking object %s: %w", id, err)
	}

	compressed := s.compressor.Compress(data)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0644); err != nil {
		return fmt.Errorf("writing object %s: %w", id, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("finalizing object %s: %w", id, err)
	}

	s.cache.Add(id, data)
	return nil
}

// Get resolves id (exact 40-hex or unambiguous 8-hex prefix) and returns
// its decoded envelope bytes.
func (s *Store) Get(id string) ([]byte, error) {
	resolved, err := s.Resolve(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	if cached, ok := s.cache.Get(resolved); ok {
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	raw, err := os.ReadFile(s.path(resolved))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading object %s: %w", resolved, err)
	}
	data, err := s.compressor.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding object %s: %w", resolved, err)
	}

	s.mu.Lock()
	s.cache.Add(resolved, data)
	s.mu.Unlock()

	return data, nil
}

// Exists reports whether id resolves to a stored object. A prefix that
// doesn't resolve uniquely (not found, or ambiguous) is reported absent.
func (s *Store) Exists(id string) bool {
	_, err := s.Resolve(id)
	return err == nil
}

// Resolve turns an exact id or an 8-hex prefix into the one full id it
// names, matching MyUtils.readSerializable's scan-and-disambiguate rule.
func (s *Store) Resolve(id string) (string, error) {
	switch len(id) {
	case hashutil.IDLen:
		if _, err := hex40(id); err != nil {
			return "", ErrInvalidID
		}
		if _, err := os.Stat(s.path(id)); err != nil {
			if os.IsNotExist(err) {
				return "", ErrNotFound
			}
			return "", fmt.Errorf("statting object %s: %w", id, err)
		}
		return id, nil
	case hashutil.ShortIDLen:
		return s.resolvePrefix(id)
	default:
		return "", ErrInvalidID
	}
}

func (s *Store) resolvePrefix(prefix string) (string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return "", fmt.Errorf("scanning object store: %w", err)
	}

	var matches []string
	for _, e := range entries {
		name := e.Name()
		if len(name) == hashutil.IDLen && len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			matches = append(matches, name)
		}
	}

	switch len(matches) {
	case 0:
		return "", ErrNotFound
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", ErrAmbiguous
	}
}

func hex40(s string) (string, error) {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return "", fmt.Errorf("not hex")
		}
	}
	return s, nil
}

// PutBlob encodes and stores b, returning its id.
func (s *Store) PutBlob(b *object.Blob) (string, error) {
	data, err := object.EncodeBlob(b)
	if err != nil {
		return "", err
	}
	if err := s.Put(b.ID, data); err != nil {
		return "", err
	}
	return b.ID, nil
}

// PutCommit encodes and stores c, returning its id.
func (s *Store) PutCommit(c *object.Commit) (string, error) {
	data, err := object.EncodeCommit(c)
	if err != nil {
		return "", err
	}
	if err := s.Put(c.ID, data); err != nil {
		return "", err
	}
	return c.ID, nil
}

// GetBlob resolves and decodes a blob.
func (s *Store) GetBlob(id string) (*object.Blob, error) {
	data, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return object.DecodeBlob(data)
}

// GetCommit resolves and decodes a commit.
func (s *Store) GetCommit(id string) (*object.Commit, error) {
	data, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return object.DecodeCommit(data)
}

// AllCommits decodes every commit object present in the store, used by
// global-log (§4.10). Order is unspecified, matching the original
// "enumerate every commit... (unordered)" contract.
func (s *Store) AllCommits() ([]*object.Commit, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("scanning object store: %w", err)
	}
	var commits []*object.Commit
	for _, e := range entries {
		name := e.Name()
		if len(name) != hashutil.IDLen {
			continue
		}
		data, err := s.Get(name)
		if err != nil {
			continue
		}
		kind, _, c, err := object.Decode(data)
		if err != nil || kind != object.KindCommit {
			continue
		}
		commits = append(commits, c)
	}
	return commits, nil
}
