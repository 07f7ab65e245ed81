// Package check validates that a sequence is in ascending order.
package check

import (
	"fmt"

	"github.com/ufinke/cubaja-sub001/seq"
)

// OutOfSequenceError is returned when an item compares less than the item
// before it.
type OutOfSequenceError struct {
	// Name identifies the checked sequence, may be empty
	Name string
	// Position is the 1-based position of the offending item
	Position int64
}

func (e *OutOfSequenceError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("check: %s out of sequence at position %d", e.Name, e.Position)
	}
	return fmt.Sprintf("check: out of sequence at position %d", e.Position)
}

// Checker passes through the items of a source and stops with an
// *OutOfSequenceError at the first descending pair.
type Checker[T any] struct {
	src      seq.Iterator[T]
	compare  func(a, b T) int
	name     string
	previous T
	position int64
	err      error
}

// New wraps src. name is only used in error messages.
func New[T any](compare func(a, b T) int, src seq.Iterator[T], name string) *Checker[T] {
	return &Checker[T]{src: src, compare: compare, name: name}
}

// Next implements seq.Iterator.
func (c *Checker[T]) Next() bool {
	if c.err != nil || !c.src.Next() {
		return false
	}
	current := c.src.Value()
	c.position++
	if c.position > 1 && c.compare(current, c.previous) < 0 {
		c.err = &OutOfSequenceError{Name: c.name, Position: c.position}
		return false
	}
	c.previous = current
	return true
}

// Value implements seq.Iterator.
func (c *Checker[T]) Value() T { return c.previous }

// Err implements seq.Iterator.
func (c *Checker[T]) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.src.Err()
}

// Position returns the number of items read from the source so far.
func (c *Checker[T]) Position() int64 { return c.position }
