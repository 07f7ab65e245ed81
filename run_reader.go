package extsort

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"strconv"
)

// errItemLength reports an item length running past the end of its run.
var errItemLength = errors.New("item length exceeds run")

// runReader lazily decodes the items of one spilled run. Each item is
// stored as a uvarint length followed by the serialized bytes. remaining
// is the number of raw bytes of the run not read yet.
type runReader[E any] struct {
	run       int
	reader    *bufio.Reader
	remaining int64
	fromBytes FromBytesGeneric[E]
	cur       E
	err       error
	done      bool
}

func newRunReader[E any](run int, reader *bufio.Reader, size int64, fromBytes FromBytesGeneric[E]) *runReader[E] {
	return &runReader[E]{run: run, reader: reader, remaining: size, fromBytes: fromBytes}
}

func (r *runReader[E]) Next() bool {
	if r.done {
		return false
	}
	n, err := binary.ReadUvarint(r.reader)
	if err == io.EOF {
		r.done = true
		return false
	}
	var raw []byte
	if err == nil {
		r.remaining -= int64(uvarintLen(n))
		if n > uint64(max(r.remaining, 0)) {
			err = errItemLength
		} else {
			r.remaining -= int64(n)
			raw = make([]byte, int(n))
			_, err = io.ReadFull(r.reader, raw)
		}
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return r.fail(NewDiskError(err, "read run "+strconv.Itoa(r.run), ""))
	}

	r.cur, err = r.decode(raw)
	if err != nil {
		return r.fail(err)
	}
	return true
}

// decode turns both errors and panics of fromBytes into a DeserializationError.
func (r *runReader[E]) decode(raw []byte) (v E, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = NewDeserializationError(p, len(raw), "runReader")
		}
	}()
	v, err = r.fromBytes(raw)
	if err != nil {
		return v, NewDeserializationError(err, len(raw), "runReader")
	}
	return v, nil
}

func uvarintLen(n uint64) int {
	var buf [binary.MaxVarintLen64]byte
	return binary.PutUvarint(buf[:], n)
}

func (r *runReader[E]) fail(err error) bool {
	r.err = err
	r.done = true
	return false
}

func (r *runReader[E]) Value() E { return r.cur }

func (r *runReader[E]) Err() error { return r.err }
