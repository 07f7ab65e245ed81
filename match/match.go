// Package match synchronizes several independently sorted sequences by
// key, in the manner of a merge join.
//
// A Matcher yields the distinct keys of all its sources in ascending
// order. For each key, every Source tells whether it holds items with that
// key and hands them out. Items the caller does not consume are skipped
// when the Matcher advances.
//
// Every source must be sorted by the ordering the Matcher was created with.
// This is not verified; wrap a source with check.New to have it verified.
package match

import (
	"errors"

	"github.com/ufinke/cubaja-sub001/seq"
)

var (
	// ErrNoMatch is returned by Source.Get when the source has no item
	// for the current key.
	ErrNoMatch = errors.New("match: no matching item for current key")
	// ErrSourceAfterStart is the panic value when a source is added to a
	// Matcher that is already iterating.
	ErrSourceAfterStart = errors.New("match: source added after iteration started")
)

// Keyed is implemented by items which know their own match key.
type Keyed[K any] interface {
	MatchKey() K
}

// cursor is the key side of a Source, independent of the item type.
type cursor[K any] interface {
	// skip discards items aligned to the current matcher key
	skip()
	// head returns the key of the lookahead item
	head() (K, bool)
	// align flags the source as matching if its head equals key
	align(key K)
}

// Matcher yields the ascending distinct keys of its sources.
type Matcher[K any] struct {
	compare func(a, b K) int
	cursors []cursor[K]
	key     K
	started bool
	done    bool
	err     error
}

// New returns a Matcher ordering keys with compare.
func New[K any](compare func(a, b K) int) *Matcher[K] {
	return &Matcher[K]{compare: compare}
}

// Next advances to the next distinct key. It returns false when all
// sources are exhausted or one of them failed; see Err.
func (m *Matcher[K]) Next() bool {
	if m.done {
		return false
	}
	if !m.started {
		m.started = true
	} else {
		for _, c := range m.cursors {
			c.skip()
		}
	}
	if m.err != nil {
		m.done = true
		return false
	}

	found := false
	var least K
	for _, c := range m.cursors {
		k, ok := c.head()
		if !ok {
			continue
		}
		if !found || m.compare(k, least) < 0 {
			least = k
			found = true
		}
	}
	if !found {
		m.done = true
		return false
	}
	m.key = least
	for _, c := range m.cursors {
		c.align(least)
	}
	return true
}

// Key returns the current key.
func (m *Matcher[K]) Key() K { return m.key }

// Err returns the first error reported by any source.
func (m *Matcher[K]) Err() error { return m.err }

// Source is one input of a Matcher.
type Source[T, K any] struct {
	m        *Matcher[K]
	it       seq.Iterator[T]
	key      func(T) K
	item     T
	itemKey  K
	has      bool
	matching bool
}

// AddSource adds a source whose keys are extracted with key. It panics with
// ErrSourceAfterStart if m has already been advanced.
func AddSource[T, K any](m *Matcher[K], it seq.Iterator[T], key func(T) K) *Source[T, K] {
	if m.started {
		panic(ErrSourceAfterStart)
	}
	s := &Source[T, K]{m: m, it: it, key: key}
	s.advance()
	m.cursors = append(m.cursors, s)
	return s
}

// AddIdentity adds a source whose items are their own keys.
func AddIdentity[K any](m *Matcher[K], it seq.Iterator[K]) *Source[K, K] {
	return AddSource(m, it, func(k K) K { return k })
}

// AddKeyed adds a source of items implementing Keyed.
func AddKeyed[T Keyed[K], K any](m *Matcher[K], it seq.Iterator[T]) *Source[T, K] {
	return AddSource(m, it, func(v T) K { return v.MatchKey() })
}

func (s *Source[T, K]) advance() {
	s.has = s.it.Next()
	if s.has {
		s.item = s.it.Value()
		s.itemKey = s.key(s.item)
		return
	}
	if err := s.it.Err(); err != nil && s.m.err == nil {
		s.m.err = err
	}
}

func (s *Source[T, K]) skip() {
	for s.matching {
		s.advance()
		s.align(s.m.key)
	}
}

func (s *Source[T, K]) head() (K, bool) {
	return s.itemKey, s.has
}

func (s *Source[T, K]) align(key K) {
	s.matching = s.has && s.m.compare(s.itemKey, key) == 0
}

// Matches reports whether the source has an unconsumed item for the
// current key.
func (s *Source[T, K]) Matches() bool {
	return s.matching
}

// Get consumes and returns the next item for the current key.
func (s *Source[T, K]) Get() (T, error) {
	if !s.matching {
		var zero T
		return zero, ErrNoMatch
	}
	v := s.item
	s.advance()
	s.align(s.m.key)
	return v, nil
}

// All returns an Iterator over the unconsumed items for the current key.
// Reading it consumes them.
func (s *Source[T, K]) All() seq.Iterator[T] {
	return &matchIterator[T, K]{s: s}
}

// List consumes the items for the current key and returns them.
func (s *Source[T, K]) List() ([]T, error) {
	out := make([]T, 0, 1)
	for s.matching {
		v, _ := s.Get()
		out = append(out, v)
	}
	return out, s.m.err
}

type matchIterator[T, K any] struct {
	s   *Source[T, K]
	cur T
}

func (it *matchIterator[T, K]) Next() bool {
	v, err := it.s.Get()
	if err != nil {
		return false
	}
	it.cur = v
	return true
}

func (it *matchIterator[T, K]) Value() T { return it.cur }

func (it *matchIterator[T, K]) Err() error { return it.s.m.err }
