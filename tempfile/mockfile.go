package tempfile

import (
	"bufio"
	"bytes"
)

// MockFileWriter provides an in-memory implementation of the TempWriter interface.
// It stores the block frames in a bytes.Buffer instead of writing to disk files.
// This is useful for testing and benchmarking without filesystem I/O overhead.
type MockFileWriter struct {
	data   *bytes.Buffer
	blocks *blockWriter
}

// mockFileReader reads the frames written by MockFileWriter, providing
// the same sectioned access pattern as the disk-based implementation.
type mockFileReader struct {
	data    *bytes.Reader
	readers []*bufio.Reader
}

// Mock creates a new in-memory TempWriter with the specified initial capacity.
// The parameter n sets the initial capacity of the underlying buffer to reduce
// memory reallocations during writing.
func Mock(n int, opts Options) *MockFileWriter {
	opts = opts.withDefaults()
	var m MockFileWriter
	m.data = bytes.NewBuffer(make([]byte, 0, n))
	m.blocks = newBlockWriter(m.data, opts.BlockSize, opts.Compression)
	return &m
}

// Size returns the number of sections.
func (w *MockFileWriter) Size() int {
	return w.blocks.size()
}

// Name identifies the writer in log output.
func (w *MockFileWriter) Name() string {
	return "memory"
}

// Stats returns totals over the finalized sections.
func (w *MockFileWriter) Stats() Stats {
	return w.blocks.stats
}

// Close releases all memory.
// This operation is irreversible and prevents transitioning to read mode.
// Use Save() instead to transition from writing to reading.
func (w *MockFileWriter) Close() error {
	w.data = nil
	return nil
}

// Write appends data to the current virtual file section in memory.
func (w *MockFileWriter) Write(p []byte) (int, error) {
	return w.blocks.Write(p)
}

// WriteString appends string data to the current virtual file section in memory.
func (w *MockFileWriter) WriteString(s string) (int, error) {
	return w.blocks.Write([]byte(s))
}

// Next stops writing the current section and prepares the tempWriter for the next one
func (w *MockFileWriter) Next() (Section, error) {
	return w.blocks.next()
}

// Save stops allowing new writes and returns a TempReader for reading the data back
func (w *MockFileWriter) Save() (TempReader, error) {
	sections, err := w.blocks.finish()
	if err != nil {
		return nil, err
	}
	var r mockFileReader
	r.data = bytes.NewReader(w.data.Bytes())
	r.readers = sectionReaders(r.data, sections)
	return &r, nil
}

// Close drops the data.
func (r *mockFileReader) Close() error {
	r.readers = nil
	r.data = nil
	return nil
}

// Size returns the number of sections/files in the reader
func (r *mockFileReader) Size() int {
	return len(r.readers)
}

// Read returns a reader for the provided section
func (r *mockFileReader) Read(i int) *bufio.Reader {
	if i < 0 || i >= len(r.readers) {
		panic("tempfile: read request out of range")
	}
	return r.readers[i]
}
