// Package diff compares two sorted sequences and reports the items present
// in only one of them. Equal items are paired one to one, so an item
// occurring three times in A and once in B is reported twice as OLD.
package diff

import (
	"context"
	"errors"
	"fmt"

	"github.com/ufinke/cubaja-sub001/check"
	"github.com/ufinke/cubaja-sub001/match"
	"github.com/ufinke/cubaja-sub001/seq"
)

// ErrNilArgument is returned for a missing argument.
var ErrNilArgument = errors.New("diff: arguments must not be nil")

// Generic compares the sorted sequences a and b and calls resultFunc for
// every item found in only one of them, in ascending order. A sequence
// that is not sorted by compare ends the diff with a
// check.OutOfSequenceError naming "A" or "B".
func Generic[T any](ctx context.Context, a, b seq.Iterator[T], compareFunc CompareFunc[T], resultFunc ResultFunc[T]) (r Result, err error) {
	if ctx == nil || a == nil || b == nil || compareFunc == nil || resultFunc == nil {
		return Result{}, ErrNilArgument
	}

	compare := (func(x, y T) int)(compareFunc)
	m := match.New(compare)
	srcA := match.AddIdentity(m, seq.Iterator[T](check.New(compare, a, "A")))
	srcB := match.AddIdentity(m, seq.Iterator[T](check.New(compare, b, "B")))

	var listA, listB []T
	for m.Next() {
		if err = ctx.Err(); err != nil {
			return r, err
		}
		if listA, err = srcA.List(); err != nil {
			return r, err
		}
		if listB, err = srcB.List(); err != nil {
			return r, err
		}

		common := min(len(listA), len(listB))
		r.Common += uint64(common)
		r.TotalA += uint64(len(listA))
		r.TotalB += uint64(len(listB))
		r.ExtraA += uint64(len(listA) - common)
		r.ExtraB += uint64(len(listB) - common)
		for _, d := range listA[common:] {
			if err = resultFunc(OLD, d); err != nil {
				return r, err
			}
		}
		for _, d := range listB[common:] {
			if err = resultFunc(NEW, d); err != nil {
				return r, err
			}
		}
	}
	return r, m.Err()
}

// Chans is Generic for sorted channels. Each error channel is read once
// its data channel is closed; a nil error or a closed error channel means
// the stream ended cleanly.
func Chans[T any](ctx context.Context, aChan, bChan <-chan T, aErrChan, bErrChan <-chan error, compareFunc CompareFunc[T], resultFunc ResultFunc[T]) (Result, error) {
	if aChan == nil || bChan == nil || aErrChan == nil || bErrChan == nil {
		return Result{}, ErrNilArgument
	}
	return Generic(ctx, seq.FromChan(aChan, aErrChan), seq.FromChan(bChan, bErrChan), compareFunc, resultFunc)
}

// PrintDiff is a ResultFunc printing each difference to stdout, prefixed
// by the Delta symbol.
func PrintDiff[T any](d Delta, s T) error {
	_, err := fmt.Printf("%s %v\n", d, s)
	return err
}
