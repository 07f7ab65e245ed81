package extsort

import (
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// QuickSort is the default Algorithm, an in-place pattern-defeating
// quicksort. It is not stable.
type QuickSort[E any] struct{}

// Sort implements Algorithm.
func (QuickSort[E]) Sort(data []E, size int, compare CompareGeneric[E]) {
	slices.SortFunc(data[:size], compare)
}

// minParallelSize is the segment size below which ParallelSort sorts in the
// calling goroutine.
const minParallelSize = 8192

// ParallelSort splits a segment into one part per worker, sorts the parts
// concurrently and merges them pairwise, preferring the left part on ties.
// It allocates a scratch slice of the segment's size per call.
type ParallelSort[E any] struct {
	// Workers is the number of parts, runtime.NumCPU() when not positive
	Workers int
}

// Sort implements Algorithm. A panic of compare in any goroutine is
// re-raised in the calling goroutine.
func (p ParallelSort[E]) Sort(data []E, size int, compare CompareGeneric[E]) {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 2 || size < minParallelSize {
		slices.SortFunc(data[:size], compare)
		return
	}
	partSize := (size + workers - 1) / workers

	var g errgroup.Group
	for lo := 0; lo < size; lo += partSize {
		part := data[lo:min(lo+partSize, size)]
		g.Go(func() (err error) {
			defer recoverInto(&err)
			slices.SortFunc(part, compare)
			return nil
		})
	}
	rethrow(g.Wait())

	src := data[:size]
	dst := make([]E, size)
	for width := partSize; width < size; width *= 2 {
		var mg errgroup.Group
		for lo := 0; lo < size; lo += 2 * width {
			mid := min(lo+width, size)
			hi := min(lo+2*width, size)
			out, left, right := dst[lo:hi], src[lo:mid], src[mid:hi]
			mg.Go(func() (err error) {
				defer recoverInto(&err)
				mergeInto(out, left, right, compare)
				return nil
			})
		}
		rethrow(mg.Wait())
		src, dst = dst, src
	}
	if &src[0] != &data[0] {
		copy(data[:size], src)
	}
}

// mergeInto merges the sorted slices left and right into out, which has
// room for both.
func mergeInto[E any](out, left, right []E, compare CompareGeneric[E]) {
	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		if compare(left[i], right[j]) <= 0 {
			out[k] = left[i]
			i++
		} else {
			out[k] = right[j]
			j++
		}
		k++
	}
	k += copy(out[k:], left[i:])
	copy(out[k:], right[j:])
}

type panicError struct {
	value interface{}
}

func (p *panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = &panicError{value: r}
	}
}

func rethrow(err error) {
	if p, ok := err.(*panicError); ok {
		panic(p.value)
	}
}
