// Package seq defines the forward-only sequence used by the sorter, merger,
// matcher and checker, together with a few adapters.
package seq

import "context"

// Iterator is a finite, forward-only, non-restartable sequence.
//
// Next advances to the next item and reports whether there is one. Value
// returns the current item and is only valid after Next returned true.
// Once Next returns false, Err reports the reason iteration stopped
// early, or nil when the sequence was simply exhausted.
type Iterator[T any] interface {
	Next() bool
	Value() T
	Err() error
}

type sliceIterator[T any] struct {
	data []T
	pos  int
}

// FromSlice returns an Iterator over data. The slice is not copied.
func FromSlice[T any](data []T) Iterator[T] {
	return &sliceIterator[T]{data: data, pos: -1}
}

func (it *sliceIterator[T]) Next() bool {
	if it.pos+1 >= len(it.data) {
		it.pos = len(it.data)
		return false
	}
	it.pos++
	return true
}

func (it *sliceIterator[T]) Value() T {
	return it.data[it.pos]
}

func (it *sliceIterator[T]) Err() error { return nil }

// Empty returns an Iterator without items.
func Empty[T any]() Iterator[T] {
	return FromSlice[T](nil)
}

type chanIterator[T any] struct {
	ch    <-chan T
	errCh <-chan error
	cur   T
	err   error
}

// FromChan adapts a data channel and its error channel, in the style
// returned by channel based sorters, to an Iterator. errCh may be nil.
// The first error received after ch is closed is reported by Err.
func FromChan[T any](ch <-chan T, errCh <-chan error) Iterator[T] {
	return &chanIterator[T]{ch: ch, errCh: errCh}
}

func (it *chanIterator[T]) Next() bool {
	v, ok := <-it.ch
	if !ok {
		if it.errCh != nil {
			it.err = <-it.errCh
			it.errCh = nil
		}
		return false
	}
	it.cur = v
	return true
}

func (it *chanIterator[T]) Value() T { return it.cur }

func (it *chanIterator[T]) Err() error { return it.err }

// ToChan drains it into a channel from a new goroutine. The data channel
// is closed when the iterator is exhausted or ctx is done; afterwards at
// most one error is delivered on the error channel, which is then closed.
func ToChan[T any](ctx context.Context, it Iterator[T], buffer int) (<-chan T, <-chan error) {
	out := make(chan T, buffer)
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		defer close(out)
		for it.Next() {
			select {
			case out <- it.Value():
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		if err := it.Err(); err != nil {
			errCh <- err
		}
	}()
	return out, errCh
}

// Collect reads the remainder of it into a slice.
func Collect[T any](it Iterator[T]) ([]T, error) {
	var out []T
	for it.Next() {
		out = append(out, it.Value())
	}
	return out, it.Err()
}
