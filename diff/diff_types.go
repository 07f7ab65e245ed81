package diff

import "fmt"

// Delta represents the type of difference found when comparing two sorted streams.
// It indicates whether an item is unique to the first stream (OLD) or second stream (NEW).
type Delta int

const (
	// NEW indicates an item that exists only in the second stream (B).
	NEW Delta = iota // +

	// OLD indicates an item that exists only in the first stream (A).
	OLD // -
)

func (d Delta) String() string {
	switch d {
	case NEW:
		return ">"
	case OLD:
		return "<"
	default:
		return "?"
	}
}

// ResultFunc is called once for each item that appears in only one of the
// two streams. Returning an error terminates the diff.
type ResultFunc[T any] func(Delta, T) error

// CompareFunc orders two items like cmp.Compare.
type CompareFunc[T any] func(a, b T) int

// Result contains statistical information about the differences between two sorted streams.
type Result struct {
	// ExtraA is the count of items that exist only in stream A (OLD items)
	ExtraA uint64

	// ExtraB is the count of items that exist only in stream B (NEW items)
	ExtraB uint64

	// TotalA is the total count of items processed from stream A
	TotalA uint64

	// TotalB is the total count of items processed from stream B
	TotalB uint64

	// Common is the count of items that exist in both streams
	Common uint64
}

func (r *Result) String() string {
	return fmt.Sprintf("A: %d/%d\tB: %d/%d\tC: %d", r.ExtraA, r.TotalA, r.ExtraB, r.TotalB, r.Common)
}
