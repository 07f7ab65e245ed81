package extsort

import (
	"context"
	"encoding/binary"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ufinke/cubaja-sub001/merge"
	"github.com/ufinke/cubaja-sub001/seq"
	"github.com/ufinke/cubaja-sub001/tempfile"
)

type requestKind int

const (
	requestSortRun requestKind = iota
	requestSwitchState
)

// request is a message from the producer to the worker. The final run
// travels with requestSwitchState.
type request[E any] struct {
	kind requestKind
	run  []E
}

// manager runs the background pipeline of one Sorter. It exists only once
// a second run has been produced.
//
// A single worker takes one request at a time. A full run is sorted and
// spilled to the temp file before the next request is accepted, so the
// worker holds at most one run while the producer fills the next one.
// requestSwitchState carries the final run, which stays in memory and is
// merged with the spilled runs into the results channel.
type manager[E any] struct {
	config    Config
	compare   CompareGeneric[E]
	algorithm Algorithm[E]
	fromBytes FromBytesGeneric[E]
	toBytes   ToBytesGeneric[E]
	newWriter func() (tempfile.TempWriter, error)
	log       *zap.Logger
	progress  *progress

	requests chan request[E]
	results  chan E

	stopped <-chan struct{}
	cancel  context.CancelFunc
	group   *errgroup.Group

	failOnce sync.Once
	failed   chan struct{}
	err      error

	closing   atomic.Bool
	closeOnce sync.Once
	closeErr  error

	// owned by the worker until the group has finished
	writer   tempfile.TempWriter
	reader   tempfile.TempReader
	sections []tempfile.Section
	scratch  [binary.MaxVarintLen64]byte
}

func newManager[E any](parent context.Context, s *Sorter[E]) *manager[E] {
	base, cancel := context.WithCancel(parent)
	group, ctx := errgroup.WithContext(base)
	m := &manager[E]{
		config:    s.config,
		compare:   s.compare,
		algorithm: s.algorithm,
		fromBytes: s.fromBytes,
		toBytes:   s.toBytes,
		newWriter: s.newWriter,
		log:       s.log,
		progress:  newProgress(s.log, s.config.LogInterval),
		requests:  make(chan request[E], s.config.RequestBufferSize),
		results:   make(chan E, s.config.ResultBufferSize),
		stopped:   base.Done(),
		cancel:    cancel,
		group:     group,
		failed:    make(chan struct{}),
	}
	m.log.Debug("sort pipeline started",
		zap.Int("runSize", m.config.RunSize),
		zap.Int("blockSize", m.config.BlockSize),
		zap.Stringer("compression", m.config.Compression),
	)

	group.Go(func() error {
		// results is closed after a failure has been recorded
		defer close(m.results)
		return m.capture(m.work(ctx))
	})
	return m
}

// capture records err as the pipeline failure unless the pipeline is being
// closed on purpose.
func (m *manager[E]) capture(err error) error {
	if err != nil && !m.closing.Load() {
		m.fail(err)
	}
	return err
}

func (m *manager[E]) fail(err error) {
	m.failOnce.Do(func() {
		m.err = &PipelineError{Err: err}
		close(m.failed)
		m.log.Error("sort pipeline failed", zap.Error(err))
	})
}

// failure returns the captured failure, or nil.
func (m *manager[E]) failure() error {
	select {
	case <-m.failed:
		return m.err
	default:
		return nil
	}
}

// submit hands r to the worker. While the queue is full it waits in
// steps of OfferTimeout, checking for a failure before and after each
// attempt.
func (m *manager[E]) submit(r request[E]) error {
	if err := m.failure(); err != nil {
		return err
	}
	timer := time.NewTimer(m.config.OfferTimeout)
	defer timer.Stop()
	for {
		select {
		case m.requests <- r:
			return m.failure()
		case <-m.failed:
			return m.err
		case <-m.stopped:
			if err := m.failure(); err != nil {
				return err
			}
			return usageError(ErrClosed, "submit", stateClosed)
		case <-timer.C:
			m.log.Debug("waiting for sort worker", zap.Duration("timeout", m.config.OfferTimeout))
			if err := m.failure(); err != nil {
				return err
			}
			timer.Reset(m.config.OfferTimeout)
		}
	}
}

// receive returns the next merged item. ok is false once the merge is
// complete or the pipeline stopped; err then holds the failure, or
// ErrClosed if the pipeline was closed before the merge completed.
func (m *manager[E]) receive() (v E, ok bool, err error) {
	v, ok = <-m.results
	if ok {
		return v, true, nil
	}
	if err := m.failure(); err != nil {
		return v, false, err
	}
	if m.closing.Load() {
		return v, false, usageError(ErrClosed, "receive", stateClosed)
	}
	return v, false, nil
}

// work is the worker loop.
func (m *manager[E]) work(ctx context.Context) error {
	for {
		select {
		case r := <-m.requests:
			if err := m.sortRun(r.run); err != nil {
				return err
			}
			if r.kind == requestSwitchState {
				return m.mergeRuns(ctx, r.run)
			}
			if err := m.spill(ctx, r.run); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (m *manager[E]) sortRun(run []E) (err error) {
	if len(run) == 0 {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = NewComparisonError(r, "sortRun")
		}
	}()
	m.algorithm.Sort(run, len(run), m.compare)
	m.progress.runs.Add(1)
	m.progress.tick("sort")
	return nil
}

// spill appends run to the temp file, creating it on first use. It stops
// between two items once ctx is done.
func (m *manager[E]) spill(ctx context.Context, run []E) error {
	if m.writer == nil {
		w, err := m.newWriter()
		if err != nil {
			return NewDiskError(err, "create temp file", m.config.TempFilesDir)
		}
		m.writer = w
		m.log.Debug("spill file created", zap.String("file", w.Name()))
	}

	for _, d := range run {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := m.encode(d)
		if err != nil {
			return err
		}
		n := binary.PutUvarint(m.scratch[:], uint64(len(raw)))
		if _, err := m.writer.Write(m.scratch[:n]); err != nil {
			return NewDiskError(err, "write size header", m.writer.Name())
		}
		if _, err := m.writer.Write(raw); err != nil {
			return NewDiskError(err, "write data", m.writer.Name())
		}
	}
	section, err := m.writer.Next()
	if err != nil {
		return NewDiskError(err, "next run", m.writer.Name())
	}
	m.sections = append(m.sections, section)

	m.progress.spilledRuns.Add(1)
	m.progress.spilledItems.Add(int64(len(run)))
	m.progress.blocks.Add(int64(section.Blocks))
	m.progress.rawBytes.Add(section.RawBytes)
	m.progress.storedBytes.Add(section.Length)
	m.progress.tick("spill")
	return nil
}

// encode turns both errors and panics of toBytes into a SerializationError.
func (m *manager[E]) encode(d E) (raw []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewSerializationError(r, "spill")
		}
	}()
	raw, err = m.toBytes(d)
	if err != nil {
		return nil, NewSerializationError(err, "spill")
	}
	return raw, nil
}

// mergeRuns merges all spilled runs in creation order followed by the
// resident final run into results.
func (m *manager[E]) mergeRuns(ctx context.Context, last []E) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewComparisonError(r, "mergeRuns")
		}
	}()

	var sources []seq.Iterator[E]
	if m.writer != nil {
		reader, err := m.writer.Save()
		if err != nil {
			return NewDiskError(err, "save temp file", m.writer.Name())
		}
		m.reader = reader
		for i, section := range m.sections {
			sources = append(sources, newRunReader(i, reader.Read(i), section.RawBytes, m.fromBytes))
		}
	}
	if len(last) > 0 {
		sources = append(sources, seq.FromSlice(last))
	}
	m.log.Debug("merging runs", zap.Int("sources", len(sources)))

	merged := merge.New[E](m.compare, sources...).Iterator()
	for merged.Next() {
		select {
		case m.results <- merged.Value():
			m.progress.merged.Add(1)
			m.progress.tick("merge")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return merged.Err()
}

// close stops the pipeline, waits for both stages and removes the temp
// file. It is safe to call more than once.
func (m *manager[E]) close() error {
	m.closeOnce.Do(func() {
		m.closing.Store(true)
		m.cancel()
		_ = m.group.Wait()
		m.closeErr = m.release()
		m.log.Debug("sort pipeline stopped", zap.Any("stats", m.progress.stats()))
	})
	return m.closeErr
}

func (m *manager[E]) release() error {
	switch {
	case m.reader != nil:
		if err := m.reader.Close(); err != nil {
			return NewDiskError(err, "remove temp file", "")
		}
	case m.writer != nil:
		if err := m.writer.Close(); err != nil {
			return NewDiskError(err, "remove temp file", m.writer.Name())
		}
	}
	return nil
}
