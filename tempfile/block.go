package tempfile

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// Block frame layout:
//   [method (1)] [stored size including header (4 LE)] [raw size (4 LE)] [payload...]

// HeaderSize is the size of a block frame header.
const HeaderSize = 9

// Compression selects how block payloads are stored.
type Compression int

const (
	// CompressionNone stores blocks as written
	CompressionNone Compression = iota
	// CompressionLZ4 stores blocks LZ4 block compressed, or as written when
	// they do not compress
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

const (
	methodNone byte = 0x02
	methodLZ4  byte = 0x82
)

// encodeBlock returns the framed form of raw.
func encodeBlock(c Compression, raw []byte) ([]byte, error) {
	method := methodNone
	payload := raw
	if c == CompressionLZ4 && len(raw) > 0 {
		dst := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, dst, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		// n == 0 means incompressible
		if n > 0 && n < len(raw) {
			method = methodLZ4
			payload = dst[:n]
		}
	}

	frame := make([]byte, HeaderSize+len(payload))
	frame[0] = method
	binary.LittleEndian.PutUint32(frame[1:5], uint32(len(frame)))
	binary.LittleEndian.PutUint32(frame[5:9], uint32(len(raw)))
	copy(frame[HeaderSize:], payload)
	return frame, nil
}

// decodeBlock returns the raw bytes of a frame payload.
func decodeBlock(method byte, payload []byte, rawSize int) ([]byte, error) {
	switch method {
	case methodNone:
		if len(payload) != rawSize {
			return nil, fmt.Errorf("block size mismatch: header says %d, have %d", rawSize, len(payload))
		}
		return payload, nil
	case methodLZ4:
		dst := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(payload, dst)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if n != rawSize {
			return nil, fmt.Errorf("lz4 decompress: expected %d bytes, got %d", rawSize, n)
		}
		return dst, nil
	default:
		return nil, fmt.Errorf("unknown block method: 0x%02x", method)
	}
}

// blockWriter collects bytes into blocks of a fixed capacity and appends
// each full block as a frame to w. It keeps the section table.
type blockWriter struct {
	w           io.Writer
	compression Compression
	block       []byte
	offset      int64
	current     Section
	sections    []Section
	stats       Stats
}

func newBlockWriter(w io.Writer, blockSize int, c Compression) *blockWriter {
	return &blockWriter{
		w:           w,
		compression: c,
		block:       make([]byte, 0, blockSize),
		sections:    make([]Section, 0, 10),
	}
}

func (b *blockWriter) Write(p []byte) (int, error) {
	n := 0
	for len(p) > 0 {
		k := min(cap(b.block)-len(b.block), len(p))
		b.block = append(b.block, p[:k]...)
		p = p[k:]
		n += k
		b.current.RawBytes += int64(k)
		if len(b.block) == cap(b.block) {
			if err := b.flushBlock(); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

func (b *blockWriter) flushBlock() error {
	if len(b.block) == 0 {
		return nil
	}
	frame, err := encodeBlock(b.compression, b.block)
	if err != nil {
		return err
	}
	if _, err := b.w.Write(frame); err != nil {
		return err
	}
	b.offset += int64(len(frame))
	b.current.Length += int64(len(frame))
	b.current.Blocks++
	b.block = b.block[:0]
	return nil
}

// dirty reports whether anything was written since the last next.
func (b *blockWriter) dirty() bool {
	return b.current.RawBytes > 0
}

func (b *blockWriter) size() int {
	if b.dirty() {
		return len(b.sections) + 1
	}
	return len(b.sections)
}

func (b *blockWriter) next() (Section, error) {
	if err := b.flushBlock(); err != nil {
		return Section{}, err
	}
	s := b.current
	b.sections = append(b.sections, s)
	b.stats.Sections++
	b.stats.Blocks += s.Blocks
	b.stats.RawBytes += s.RawBytes
	b.stats.StoredBytes += s.Length
	b.current = Section{Offset: b.offset}
	return s, nil
}

// finish finalizes the current section if it holds data and returns the
// section table.
func (b *blockWriter) finish() ([]Section, error) {
	if b.dirty() || len(b.sections) == 0 {
		if _, err := b.next(); err != nil {
			return nil, err
		}
	}
	return b.sections, nil
}

// blockReader yields the raw bytes of consecutive frames read from src.
type blockReader struct {
	src    io.Reader
	header [HeaderSize]byte
	buf    []byte
	pos    int
}

func (r *blockReader) Read(p []byte) (int, error) {
	for r.pos == len(r.buf) {
		if err := r.load(); err != nil {
			return 0, err
		}
	}
	n := copy(p, r.buf[r.pos:])
	r.pos += n
	return n, nil
}

func (r *blockReader) load() error {
	_, err := io.ReadFull(r.src, r.header[:])
	if err == io.EOF {
		return io.EOF
	}
	if err != nil {
		return fmt.Errorf("read block header: %w", err)
	}
	stored := int(binary.LittleEndian.Uint32(r.header[1:5]))
	rawSize := int(binary.LittleEndian.Uint32(r.header[5:9]))
	if stored < HeaderSize {
		return fmt.Errorf("corrupt block header: stored size %d", stored)
	}
	payload := make([]byte, stored-HeaderSize)
	if _, err := io.ReadFull(r.src, payload); err != nil {
		return fmt.Errorf("read block payload: %w", err)
	}
	r.buf, err = decodeBlock(r.header[0], payload, rawSize)
	r.pos = 0
	return err
}
