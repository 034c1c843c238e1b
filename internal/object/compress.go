package object

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic is the four-byte frame magic number zstd prefixes every
// compressed stream with; used to tell compressed objects from plain ones
// on read without a side-channel flag.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// CompressionOptions sets a minimum size below which compression isn't
// worth the framing overhead, and a level trading speed for ratio.
type CompressionOptions struct {
	MinSize int
	Level   int
}

// DefaultCompressionOptions returns sane defaults for object envelopes.
func DefaultCompressionOptions() CompressionOptions {
	return CompressionOptions{MinSize: 1024, Level: 2}
}

// Compressor compresses and decompresses object envelopes at the store
// boundary. Held by the object store, not by individual objects.
type Compressor struct {
	opts     CompressionOptions
	encoders sync.Pool
	decoders sync.Pool
}

// NewCompressor builds a Compressor, validating the encoder/decoder can be
// constructed with the given options before handing pooled instances out.
func NewCompressor(opts CompressionOptions) (*Compressor, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(opts.Level)))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	enc.Close()

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	dec.Close()

	return &Compressor{
		opts: opts,
		encoders: sync.Pool{
			New: func() any {
				e, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(opts.Level)))
				return e
			},
		},
		decoders: sync.Pool{
			New: func() any {
				d, _ := zstd.NewReader(nil)
				return d
			},
		},
	}, nil
}

// Compress returns data unchanged if it's under the configured minimum
// size; otherwise it returns the zstd-compressed form.
func (c *Compressor) Compress(data []byte) []byte {
	if len(data) < c.opts.MinSize {
		return data
	}
	enc := c.encoders.Get().(*zstd.Encoder)
	defer c.encoders.Put(enc)

	var buf bytes.Buffer
	enc.Reset(&buf)
	return enc.EncodeAll(data, buf.Bytes())
}

// Decompress sniffs the zstd magic number and decompresses if present,
// returning data as-is otherwise.
func (c *Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) < 4 || !bytes.Equal(data[:4], zstdMagic) {
		return data, nil
	}
	dec := c.decoders.Get().(*zstd.Decoder)
	defer c.decoders.Put(dec)

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing object: %w", err)
	}
	return out, nil
}
