package object

import (
	"testing"
	"time"
)

func TestBlobIdentityIsNameAndContent(t *testing.T) {
	b1 := NewBlob("a.txt", []byte("hi"))
	b2 := NewBlob("a.txt", []byte("hi"))
	if b1.ID != b2.ID {
		t.Fatalf("identical name+bytes must hash identically")
	}

	b3 := NewBlob("b.txt", []byte("hi"))
	if b1.ID == b3.ID {
		t.Fatalf("same bytes under a different name must hash differently")
	}
}

func TestEqualBlobs(t *testing.T) {
	if !EqualBlobs(nil, nil) {
		t.Fatalf("two absent blobs must be equal")
	}
	b := NewBlob("a.txt", []byte("x"))
	if EqualBlobs(nil, b) || EqualBlobs(b, nil) {
		t.Fatalf("one absent blob must be unequal to a present one")
	}
	if !EqualBlobs(b, NewBlob("a.txt", []byte("x"))) {
		t.Fatalf("two present blobs with equal ids must be equal")
	}
}

func TestCommitIdentityOmitsTimestampAndTree(t *testing.T) {
	c1 := NewCommit("msg", []string{"p1"}, map[string]string{"a": "1"}, time.Unix(10, 0))
	c2 := NewCommit("msg", []string{"p1"}, map[string]string{"b": "2"}, time.Unix(20, 0))
	if c1.ID != c2.ID {
		t.Fatalf("commits with identical parents+message must collide on id regardless of tree/timestamp")
	}
}

func TestInitialCommit(t *testing.T) {
	c := NewInitialCommit()
	if len(c.Parents) != 0 {
		t.Fatalf("initial commit must have no parents")
	}
	if c.Message != "initial commit" {
		t.Fatalf("unexpected message %q", c.Message)
	}
	if !c.Timestamp.Equal(time.Unix(0, 0).UTC()) {
		t.Fatalf("initial commit must be stamped at the epoch")
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	b := NewBlob("a.txt", []byte("payload"))
	data, err := EncodeBlob(b)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeBlob(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != b.ID || string(got.Data) != "payload" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if _, err := DecodeCommit(data); err != ErrKindMismatch {
		t.Fatalf("expected kind mismatch decoding a blob as a commit, got %v", err)
	}
}

func TestCompressorRoundTrip(t *testing.T) {
	c, err := NewCompressor(CompressionOptions{MinSize: 4, Level: 2})
	if err != nil {
		t.Fatal(err)
	}
	big := make([]byte, 4096)
	for i := range big {
		big[i] = byte(i % 251)
	}
	compressed := c.Compress(big)
	if len(compressed) >= len(big) {
		t.Fatalf("expected compression to shrink a repetitive 4KB buffer")
	}
	back, err := c.Decompress(compressed)
	if err != nil {
		t.Fatal(err)
	}
	if string(back) != string(big) {
		t.Fatalf("decompressed output does not match original")
	}

	small := []byte("hi")
	if string(c.Compress(small)) != "hi" {
		t.Fatalf("content under MinSize must pass through unchanged")
	}
	passthrough, err := c.Decompress(small)
	if err != nil || string(passthrough) != "hi" {
		t.Fatalf("uncompressed content must decompress to itself")
	}
}
