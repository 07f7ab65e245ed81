// Package tempfile implements a virtual temp files that can be written to (in series)
// and then read back (series/parallel) and then removed from the filesystem when done.
// If multiple "tempfiles" are needed on the application layer, they are mapped to
// sections of the same real file on the filesystem. Every section is a contiguous
// sequence of blocks of at most BlockSize bytes, optionally compressed.
package tempfile

import (
	"bufio"
	"errors"
	"io"
	"os"
)

const (
	// DefaultBlockSize is the block capacity used when Options.BlockSize is not set
	DefaultBlockSize = 15360
	// DefaultPrefix is the file name prefix used when Options.Prefix is not set
	DefaultPrefix = "sort"
)

var (
	// file IO buffer size for each file
	fileBufferSize = 1 << 16 // 64k
)

// Options controls the layout of a temp file.
type Options struct {
	BlockSize   int
	Compression Compression
	Prefix      string
}

func (o Options) withDefaults() Options {
	if o.BlockSize <= 0 {
		o.BlockSize = DefaultBlockSize
	}
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	return o
}

// TempFileWriter is the disk backed TempWriter.
type TempFileWriter struct {
	file      *os.File
	bufWriter *bufio.Writer
	blocks    *blockWriter
	saved     bool
}

// TempFileReader is the disk backed TempReader.
type TempFileReader struct {
	file     *os.File
	sections []Section
	readers  []*bufio.Reader
}

// New creates a temp file in dir. An empty dir selects the OS temp
// directory. dir is not created.
func New(dir string, opts Options) (*TempFileWriter, error) {
	opts = opts.withDefaults()
	if dir == "" {
		dir = GetTempDir("", false)
	}
	var w TempFileWriter
	var err error
	w.file, err = os.CreateTemp(dir, opts.Prefix+"_*")
	if err != nil {
		return nil, err
	}
	w.bufWriter = bufio.NewWriterSize(w.file, fileBufferSize)
	w.blocks = newBlockWriter(w.bufWriter, opts.BlockSize, opts.Compression)
	return &w, nil
}

// Size returns the number of sections.
func (w *TempFileWriter) Size() int {
	return w.blocks.size()
}

// Name returns the path of the temp file.
func (w *TempFileWriter) Name() string {
	return w.file.Name()
}

// Stats returns totals over the finalized sections.
func (w *TempFileWriter) Stats() Stats {
	return w.blocks.stats
}

// Close stops the tempfile from accepting new data,
// closes the file, and removes the temp file from disk
// works like an abort, unrecoverable
func (w *TempFileWriter) Close() error {
	if w.saved {
		return nil
	}
	w.saved = true
	err := w.file.Close()
	// a failed Save may already have closed the file
	if errors.Is(err, os.ErrClosed) {
		err = nil
	}
	return errors.Join(err, os.Remove(w.file.Name()))
}

func (w *TempFileWriter) Write(p []byte) (int, error) {
	return w.blocks.Write(p)
}

// WriteString appends s to the current section.
func (w *TempFileWriter) WriteString(s string) (int, error) {
	return w.blocks.Write([]byte(s))
}

// Next finalizes the current section.
func (w *TempFileWriter) Next() (Section, error) {
	return w.blocks.next()
}

// Save finalizes the last section, closes the file for writing and opens it
// for reading.
func (w *TempFileWriter) Save() (TempReader, error) {
	sections, err := w.blocks.finish()
	if err != nil {
		return nil, err
	}
	err = w.bufWriter.Flush()
	if err != nil {
		return nil, err
	}
	err = w.file.Close()
	if err != nil {
		return nil, err
	}
	w.saved = true
	r, err := newTempReader(w.file.Name(), sections)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func newTempReader(filename string, sections []Section) (*TempFileReader, error) {
	var err error
	var r TempFileReader
	r.file, err = os.Open(filename)
	if err != nil {
		_ = os.Remove(filename)
		return nil, err
	}
	r.sections = sections
	r.readers = sectionReaders(r.file, sections)
	return &r, nil
}

func sectionReaders(ra io.ReaderAt, sections []Section) []*bufio.Reader {
	readers := make([]*bufio.Reader, len(sections))
	for i, s := range sections {
		section := io.NewSectionReader(ra, s.Offset, s.Length)
		readers[i] = bufio.NewReader(&blockReader{src: section})
	}
	return readers
}

// Close closes and removes the temp file.
func (r *TempFileReader) Close() error {
	r.readers = nil
	err := r.file.Close()
	if err != nil {
		return err
	}
	return os.Remove(r.file.Name())
}

// Size returns the number of sections.
func (r *TempFileReader) Size() int {
	return len(r.readers)
}

// Read returns the reader of section i.
func (r *TempFileReader) Read(i int) *bufio.Reader {
	if i < 0 || i >= len(r.readers) {
		panic("tempfile: read request out of range")
	}
	return r.readers[i]
}

// Name returns the path of the temp file.
func (r *TempFileReader) Name() string {
	return r.file.Name()
}
