// Package extsort implements an unstable external sorting library for Go.
// Items are collected in memory in runs of Config.RunSize. Input that fits
// a single run is sorted in memory and never touches the disk. Larger input
// is sorted run by run in the background, every full run is spilled to one
// temp file while the next one is filled, and all runs are merged when
// iteration starts.
package extsort

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/ufinke/cubaja-sub001/seq"
	"github.com/ufinke/cubaja-sub001/tempfile"
)

// ErrNilArgument is returned by the constructors for a missing function.
var ErrNilArgument = errors.New(Namespace + ": nil argument")

type state int

const (
	statePut state = iota
	stateGet
	stateClosed
)

func (s state) String() string {
	switch s {
	case statePut:
		return "put"
	case stateGet:
		return "get"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Sorter sorts items of type E with bounded memory.
//
// A Sorter is used in two phases: Add all items, then Iterate over them in
// ascending order. Add and Iterate belong to one goroutine; Abort and Close
// may be called from any goroutine and unblock a waiting Add.
type Sorter[E any] struct {
	ctx       context.Context
	config    Config
	compare   CompareGeneric[E]
	fromBytes FromBytesGeneric[E]
	toBytes   ToBytesGeneric[E]
	algorithm Algorithm[E]
	newWriter func() (tempfile.TempWriter, error)
	log       *zap.Logger

	mu      sync.Mutex
	state   state
	run     []E
	added   int64
	manager *manager[E]
}

// Generic returns a Sorter for any type. fromBytes and toBytes convert
// items for the temp file, compare orders them. A nil config selects
// DefaultConfig; zero fields of config are replaced by their defaults.
// Cancelling ctx fails the background pipeline.
func Generic[E any](ctx context.Context, fromBytes FromBytesGeneric[E], toBytes ToBytesGeneric[E], compare CompareGeneric[E], config *Config) (*Sorter[E], error) {
	s, err := newSorter(ctx, fromBytes, toBytes, compare, config)
	if err != nil {
		return nil, err
	}
	dir := tempfile.GetTempDir(s.config.TempFilesDir, s.config.PreferDiskBacked)
	opts := s.config.tempOptions()
	s.newWriter = func() (tempfile.TempWriter, error) {
		w, err := tempfile.New(dir, opts)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	return s, nil
}

// MockGeneric is like Generic but spills to memory instead of a file.
// n is the initial capacity of the in-memory buffer.
func MockGeneric[E any](ctx context.Context, fromBytes FromBytesGeneric[E], toBytes ToBytesGeneric[E], compare CompareGeneric[E], config *Config, n int) (*Sorter[E], error) {
	s, err := newSorter(ctx, fromBytes, toBytes, compare, config)
	if err != nil {
		return nil, err
	}
	opts := s.config.tempOptions()
	s.newWriter = func() (tempfile.TempWriter, error) {
		return tempfile.Mock(n, opts), nil
	}
	return s, nil
}

func newSorter[E any](ctx context.Context, fromBytes FromBytesGeneric[E], toBytes ToBytesGeneric[E], compare CompareGeneric[E], config *Config) (*Sorter[E], error) {
	if fromBytes == nil || toBytes == nil || compare == nil {
		return nil, ErrNilArgument
	}
	if ctx == nil {
		ctx = context.Background()
	}
	c := mergeConfig(config)
	if err := validateConfig(&c); err != nil {
		return nil, err
	}
	return &Sorter[E]{
		ctx:       ctx,
		config:    c,
		compare:   compare,
		fromBytes: fromBytes,
		toBytes:   toBytes,
		algorithm: QuickSort[E]{},
		log:       c.logger().With(zap.String("component", Namespace)),
	}, nil
}

// WithAlgorithm replaces the in-memory sort algorithm. It has to be called
// before the first Add, later calls fail with ErrIllegalState.
func (s *Sorter[E]) WithAlgorithm(a Algorithm[E]) error {
	if a == nil {
		return ErrNilArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkPut("WithAlgorithm"); err != nil {
		return err
	}
	if s.added > 0 {
		return usageError(ErrIllegalState, "WithAlgorithm", s.state)
	}
	s.algorithm = a
	return nil
}

// failure returns the captured pipeline failure, or nil. The caller holds mu.
func (s *Sorter[E]) failure() error {
	if s.manager == nil {
		return nil
	}
	return s.manager.failure()
}

// checkPut returns the error for operation unless items may be added.
// The caller holds mu.
func (s *Sorter[E]) checkPut(operation string) error {
	if err := s.failure(); err != nil {
		return err
	}
	switch s.state {
	case statePut:
		return nil
	case stateClosed:
		return usageError(ErrClosed, operation, s.state)
	default:
		return usageError(ErrIllegalState, operation, s.state)
	}
}

// Add appends item. When the current run is full it is handed to the
// background pipeline before item starts the next run. The handoff blocks
// while the worker is still spilling the previous run, so no more than two
// runs are held in memory. A pipeline failure is returned by every
// following Add.
func (s *Sorter[E]) Add(item E) error {
	s.mu.Lock()
	if err := s.checkPut("Add"); err != nil {
		s.mu.Unlock()
		return err
	}
	if len(s.run) < s.config.RunSize {
		s.run = append(s.run, item)
		s.added++
		s.mu.Unlock()
		return nil
	}
	if s.manager == nil {
		s.manager = newManager(s.ctx, s)
	}
	full := s.run
	s.run = nil
	m := s.manager
	s.mu.Unlock()

	if err := m.submit(request[E]{kind: requestSortRun, run: full}); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkPut("Add"); err != nil {
		return err
	}
	s.run = make([]E, 1, s.config.RunSize)
	s.run[0] = item
	s.added++
	return nil
}

// Iterate ends the input phase and returns the items in ascending order.
// It may be called once. The Sorter is closed when the Iterator is
// exhausted or closed.
func (s *Sorter[E]) Iterate() (*Iterator[E], error) {
	s.mu.Lock()
	if err := s.checkPut("Iterate"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.state = stateGet

	if s.manager == nil {
		run := s.run
		err := s.sortResident(run)
		s.mu.Unlock()
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.log.Debug("sorted in memory", zap.Int("items", len(run)))
		return newIterator(s, seq.FromSlice(run)), nil
	}

	last := s.run
	s.run = nil
	m := s.manager
	s.mu.Unlock()

	if err := m.submit(request[E]{kind: requestSwitchState, run: last}); err != nil {
		return nil, err
	}
	return newIterator[E](s, &resultIterator[E]{m: m}), nil
}

func (s *Sorter[E]) sortResident(run []E) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewComparisonError(r, "sortResident")
		}
	}()
	s.algorithm.Sort(run, len(run), s.compare)
	return nil
}

// Abort stops the Sorter without delivering further items. It is Close
// under a name that states the intent.
func (s *Sorter[E]) Abort() error {
	return s.Close()
}

// Close stops the background pipeline, waits for it and removes the temp
// file. Calling Close more than once is a no-op.
func (s *Sorter[E]) Close() error {
	s.mu.Lock()
	if s.state == stateClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = stateClosed
	s.run = nil
	m := s.manager
	added := s.added
	s.mu.Unlock()

	if m == nil {
		return nil
	}
	err := m.close()
	s.log.Debug("sorter closed", zap.Int64("added", added), zap.Error(err))
	return err
}

func (s *Sorter[E]) closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateClosed
}

// Stats returns the work done so far. Background counters are only
// present once the input exceeded one run.
func (s *Sorter[E]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st Stats
	if s.manager != nil {
		st = s.manager.progress.stats()
	}
	st.Added = s.added
	return st
}

// resultIterator reads the merge output of a manager.
type resultIterator[E any] struct {
	m   *manager[E]
	cur E
	err error
}

func (r *resultIterator[E]) Next() bool {
	v, ok, err := r.m.receive()
	if !ok {
		r.err = err
		return false
	}
	r.cur = v
	return true
}

func (r *resultIterator[E]) Value() E { return r.cur }

func (r *resultIterator[E]) Err() error { return r.err }

// Iterator delivers the sorted items of a Sorter.
//
//	it, err := sorter.Iterate()
//	if err != nil {
//		return err
//	}
//	for it.Next() {
//		use(it.Value())
//	}
//	return it.Err()
type Iterator[E any] struct {
	sorter *Sorter[E]
	src    seq.Iterator[E]
	cur    E
	err    error
	done   bool
}

func newIterator[E any](s *Sorter[E], src seq.Iterator[E]) *Iterator[E] {
	return &Iterator[E]{sorter: s, src: src}
}

// Next advances to the next item. It returns false when all items were
// delivered, on failure, or after the Sorter was closed. In the last case
// Err reports ErrClosed, telling truncated output from exhaustion.
func (it *Iterator[E]) Next() bool {
	if it.done {
		return false
	}
	if it.sorter.closed() {
		it.done = true
		it.err = usageError(ErrClosed, "Next", stateClosed)
		return false
	}
	if it.src.Next() {
		it.cur = it.src.Value()
		return true
	}
	it.done = true
	it.err = it.src.Err()
	if err := it.sorter.Close(); it.err == nil {
		it.err = err
	}
	return false
}

// Value returns the current item.
func (it *Iterator[E]) Value() E {
	return it.cur
}

// Err returns the failure that ended the iteration, if any.
func (it *Iterator[E]) Err() error {
	return it.err
}

// Close ends the iteration early and closes the Sorter.
func (it *Iterator[E]) Close() error {
	it.done = true
	return it.sorter.Close()
}
