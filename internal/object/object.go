// Package object defines the two object kinds gitlet persists — Blob and
// Commit — and the tagged envelope codec that lets both share one object
// store without relying on structural decoding to tell them apart
// (Design Note §9, "Polymorphic persistence").
package object

import (
	"encoding/json"
	"fmt"
	"time"

	"gitlet/internal/hashutil"
)

// Kind discriminates the payload carried by an Envelope.
type Kind string

const (
	KindBlob   Kind = "Blob"
	KindCommit Kind = "Commit"
)

// Blob is an immutable snapshot of one file's bytes under a given name.
// Its identity is a function of both the name and the bytes, so the same
// bytes filed under two different names are two distinct blobs.
type Blob struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// NewBlob builds a Blob and computes its content-addressed id.
func NewBlob(name string, data []byte) *Blob {
	if data == nil {
		data = []byte{}
	}
	return &Blob{
		ID:   BlobIDFor(name, data),
		Name: name,
		Data: data,
	}
}

// BlobIDFor computes the id a blob with this name and content would have,
// without constructing the Blob value. Used by the staging area to check
// working-tree content against a staged id without pulling in the full
// object type.
func BlobIDFor(name string, data []byte) string {
	if data == nil {
		data = []byte{}
	}
	return hashutil.Hash([]byte(name), data, []byte(KindBlob))
}

// EqualBlobs reports whether two optional blobs (either may be nil,
// meaning "absent") are the same according to §4.3: both absent is
// equal, one absent is unequal, both present compares by id.
func EqualBlobs(a, b *Blob) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.ID == b.ID
}

// Commit is an immutable DAG node: a named snapshot of a tree, a message,
// and 0, 1, or 2 parents. Per §3, the timestamp and tree are intentionally
// excluded from the identity hash — two commits with identical parents and
// message collide on id by design (SPEC_FULL.md §13, decision 2).
type Commit struct {
	ID        string            `json:"id"`
	Message   string            `json:"message"`
	Parents   []string          `json:"parents"`
	Tree      map[string]string `json:"tree"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewInitialCommit builds the root commit: empty tree, no parents, the
// epoch timestamp, and the fixed message "initial commit".
func NewInitialCommit() *Commit {
	return newCommit("initial commit", nil, map[string]string{}, time.Unix(0, 0).UTC())
}

// NewCommit builds a commit with the given message, ordered parents, and
// tree, stamped with now. Callers enforce the "no changes
// added" rule (§4.4) before calling this.
func NewCommit(message string, parents []string, tree map[string]string, now time.Time) *Commit {
	return newCommit(message, parents, tree, now)
}

func newCommit(message string, parents []string, tree map[string]string, when time.Time) *Commit {
	if tree == nil {
		tree = map[string]string{}
	}
	parts := make([][]byte, 0, len(parents)+2)
	for _, p := range parents {
		parts = append(parts, []byte(p))
	}
	parts = append(parts, []byte(message), []byte(KindCommit))
	return &Commit{
		ID:        hashutil.Hash(parts...),
		Message:   message,
		Parents:   append([]string(nil), parents...),
		Tree:      tree,
		Timestamp: when,
	}
}

// BlobID looks up the blob id tracked under name, returning "" if untracked.
func (c *Commit) BlobID(name string) string {
	return c.Tree[name]
}

// Has reports whether name is tracked in this commit's tree.
func (c *Commit) Has(name string) bool {
	_, ok := c.Tree[name]
	return ok
}

// EqualCommits compares two commits by id.
func EqualCommits(a, b *Commit) bool {
	if a == nil || b == nil {
		return false
	}
	return a.ID == b.ID
}

// DateFormat matches the original gitlet's "EEE MMM d HH:mm:ss yyyy Z" in
// the US locale: unpadded day-of-month, US month/weekday names (Go's time
// package already renders English names), numeric zone offset.
const DateFormat = "Mon Jan 2 15:04:05 2006 -0700"

// String renders a commit the way §6 pins: three header lines, the
// message, then a trailing blank line.
func (c *Commit) String() string {
	return fmt.Sprintf("===\ncommit %s\nDate: %s\n%s\n\n", c.ID, c.Timestamp.Format(DateFormat), c.Message)
}

// envelope is the on-disk tagged union: every object file starts life as
// one of these, so Get() can discriminate kind without guessing from the
// payload shape.
type envelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeBlob serializes b into an envelope.
func EncodeBlob(b *Blob) ([]byte, error) {
	return encode(KindBlob, b)
}

// EncodeCommit serializes c into an envelope.
func EncodeCommit(c *Commit) ([]byte, error) {
	return encode(KindCommit, c)
}

func encode(kind Kind, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s payload: %w", kind, err)
	}
	env := envelope{Kind: kind, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshaling envelope: %w", err)
	}
	return data, nil
}

// ErrKindMismatch is returned when a caller asks for one kind of object
// but the stored envelope holds the other.
var ErrKindMismatch = fmt.Errorf("object kind mismatch")

// Decode parses an envelope and reports its kind alongside the decoded
// payload (exactly one of blob/commit is non-nil).
func Decode(data []byte) (kind Kind, blob *Blob, commit *Commit, err error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, nil, fmt.Errorf("decoding envelope: %w", err)
	}
	switch env.Kind {
	case KindBlob:
		var b Blob
		if err := json.Unmarshal(env.Payload, &b); err != nil {
			return "", nil, nil, fmt.Errorf("decoding blob payload: %w", err)
		}
		return KindBlob, &b, nil, nil
	case KindCommit:
		var c Commit
		if err := json.Unmarshal(env.Payload, &c); err != nil {
			return "", nil, nil, fmt.Errorf("decoding commit payload: %w", err)
		}
		return KindCommit, nil, &c, nil
	default:
		return "", nil, nil, fmt.Errorf("unknown object kind %q", env.Kind)
	}
}

// DecodeBlob decodes data, failing with ErrKindMismatch if it is a Commit.
func DecodeBlob(data []byte) (*Blob, error) {
	kind, b, _, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if kind != KindBlob {
		return nil, ErrKindMismatch
	}
	return b, nil
}

// DecodeCommit decodes data, failing with ErrKindMismatch if it is a Blob.
func DecodeCommit(data []byte) (*Commit, error) {
	kind, _, c, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if kind != KindCommit {
		return nil, ErrKindMismatch
	}
	return c, nil
}
