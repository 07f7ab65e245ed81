// Package merge combines already sorted sequences into one sorted sequence
// using a balanced binary merge tree.
package merge

import (
	"github.com/ufinke/cubaja-sub001/seq"
)

// Merger collects sorted sources and merges them.
type Merger[T any] struct {
	compare func(a, b T) int
	sources []seq.Iterator[T]
}

// New returns a Merger for sources, each sorted ascending by compare.
func New[T any](compare func(a, b T) int, sources ...seq.Iterator[T]) *Merger[T] {
	return &Merger[T]{compare: compare, sources: sources}
}

// ByKey returns a Merger for sources sorted ascending by the key
// extracted with key.
func ByKey[T, K any](compare func(a, b K) int, key func(T) K, sources ...seq.Iterator[T]) *Merger[T] {
	return New(func(a, b T) int {
		return compare(key(a), key(b))
	}, sources...)
}

// Add appends a source. Sources added earlier win ties.
func (m *Merger[T]) Add(src seq.Iterator[T]) *Merger[T] {
	m.sources = append(m.sources, src)
	return m
}

// Len returns the number of sources.
func (m *Merger[T]) Len() int { return len(m.sources) }

// Iterator builds the merge tree and returns the merged sequence.
// Each source must only be consumed through the returned Iterator.
func (m *Merger[T]) Iterator() seq.Iterator[T] {
	return build(m.compare, m.sources)
}

// build halves sources recursively, giving a tree of depth ceil(log2(n)).
func build[T any](compare func(a, b T) int, sources []seq.Iterator[T]) seq.Iterator[T] {
	switch len(sources) {
	case 0:
		return seq.Empty[T]()
	case 1:
		return sources[0]
	case 2:
		return newPair(compare, sources[0], sources[1])
	}
	mid := len(sources) / 2
	return newPair(compare, build(compare, sources[:mid]), build(compare, sources[mid:]))
}

// pair is a two-pointer merge of two sorted sequences.
type pair[T any] struct {
	compare     func(a, b T) int
	left, right seq.Iterator[T]
	lv, rv      T
	lok, rok    bool
	started     bool
	cur         T
	err         error
}

func newPair[T any](compare func(a, b T) int, left, right seq.Iterator[T]) *pair[T] {
	return &pair[T]{compare: compare, left: left, right: right}
}

func (p *pair[T]) advanceLeft() {
	p.lok = p.left.Next()
	if p.lok {
		p.lv = p.left.Value()
	} else if err := p.left.Err(); err != nil {
		p.err = err
	}
}

func (p *pair[T]) advanceRight() {
	p.rok = p.right.Next()
	if p.rok {
		p.rv = p.right.Value()
	} else if err := p.right.Err(); err != nil {
		p.err = err
	}
}

func (p *pair[T]) Next() bool {
	if !p.started {
		p.started = true
		p.advanceLeft()
		if p.err == nil {
			p.advanceRight()
		}
	}
	if p.err != nil {
		return false
	}
	switch {
	case p.lok && (!p.rok || p.compare(p.lv, p.rv) <= 0):
		p.cur = p.lv
		p.advanceLeft()
	case p.rok:
		p.cur = p.rv
		p.advanceRight()
	default:
		return false
	}
	// an error while reading ahead is reported on the following call
	return true
}

func (p *pair[T]) Value() T { return p.cur }

func (p *pair[T]) Err() error { return p.err }
