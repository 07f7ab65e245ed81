package tempfile

import (
	"bufio"
	"io"
)

// TempWriter defines the interface for sequential writing to virtual temporary file sections.
// Written bytes are collected into blocks of a fixed size which are appended to the
// underlying storage when full. Implementations handle the underlying storage mechanism
// (disk or memory).
type TempWriter interface {
	// Close terminates the writer and cleans up resources.
	// This is irreversible and prevents transitioning to read mode.
	io.Closer

	// Size returns the number of virtual file sections created, including the
	// current one if anything has been written to it.
	Size() int

	// Write appends data to the current virtual file section.
	Write(p []byte) (int, error)

	// WriteString appends string data to the current virtual file section.
	WriteString(s string) (int, error)

	// Next flushes the current partial block and finalizes the current section.
	// The returned Section describes where it was stored.
	Next() (Section, error)

	// Save finalizes all sections and returns a TempReader for data access.
	// After calling Save(), the TempWriter cannot be used for further writing.
	Save() (TempReader, error)

	// Name identifies the backing storage.
	Name() string

	// Stats returns totals over everything written so far.
	Stats() Stats
}

// TempReader defines the interface for reading from virtual temporary file sections.
// Each section is read back block by block in the order it was written.
type TempReader interface {
	// Close terminates the reader and removes the backing storage.
	io.Closer

	// Size returns the total number of virtual file sections available for reading.
	Size() int

	// Read returns a buffered reader for the specified virtual file section.
	// The section index i must be in the range [0, Size()-1].
	Read(i int) *bufio.Reader
}

// Section is the in-memory metadata of one finalized section. Only offsets
// and counts are kept, never payload.
type Section struct {
	Offset   int64 // position of the first block frame
	Length   int64 // stored bytes including block headers
	Blocks   int   // number of block frames
	RawBytes int64 // bytes written before compression
}

// Stats are totals over all sections of a writer.
type Stats struct {
	Sections    int
	Blocks      int
	RawBytes    int64
	StoredBytes int64
}
