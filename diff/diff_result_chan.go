package diff

// ChanResult holds a single diff result.
type ChanResult[T any] struct {
	// D indicates whether the item is NEW (only in stream B) or OLD (only in stream A)
	D Delta
	// S is the item
	S T
}

// ResultChan returns a ResultFunc publishing every result on the returned
// channel, so results can be processed in another goroutine while the diff
// runs. The caller closes the channel once the diff returned.
func ResultChan[T any]() (ResultFunc[T], chan *ChanResult[T]) {
	c := make(chan *ChanResult[T], 1)
	f := func(d Delta, s T) error {
		c <- &ChanResult[T]{D: d, S: s}
		return nil
	}
	return f, c
}
