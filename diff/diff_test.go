package diff_test

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	extsort "github.com/ufinke/cubaja-sub001"
	"github.com/ufinke/cubaja-sub001/check"
	"github.com/ufinke/cubaja-sub001/diff"
	"github.com/ufinke/cubaja-sub001/seq"
)

type recorder[T any] struct {
	lines []string
}

func (r *recorder[T]) record(d diff.Delta, v T) error {
	r.lines = append(r.lines, fmt.Sprintf("%s %v", d, v))
	return nil
}

func TestNil(t *testing.T) {
	r, err := diff.Ordered[string](context.Background(), nil, nil, nil)
	assert.ErrorIs(t, err, diff.ErrNilArgument)
	assert.Zero(t, r)

	_, err = diff.Chans[int](context.Background(), nil, nil, nil, nil, cmp.Compare[int], nil)
	assert.ErrorIs(t, err, diff.ErrNilArgument)
}

func TestOneSided(t *testing.T) {
	var rec recorder[string]
	r, err := diff.Ordered(context.Background(), seq.FromSlice([]string{"Hello A"}), seq.Empty[string](), rec.record)
	require.NoError(t, err)
	assert.Equal(t, diff.Result{ExtraA: 1, TotalA: 1}, r)
	assert.Equal(t, []string{"< Hello A"}, rec.lines)

	rec.lines = nil
	r, err = diff.Ordered(context.Background(), seq.Empty[string](), seq.FromSlice([]string{"Hello B"}), rec.record)
	require.NoError(t, err)
	assert.Equal(t, diff.Result{ExtraB: 1, TotalB: 1}, r)
	assert.Equal(t, []string{"> Hello B"}, rec.lines)
}

func TestEmpty(t *testing.T) {
	var rec recorder[int]
	r, err := diff.Ordered(context.Background(), seq.Empty[int](), seq.Empty[int](), rec.record)
	require.NoError(t, err)
	assert.Zero(t, r)
	assert.Empty(t, rec.lines)
}

func TestCommon(t *testing.T) {
	var a []int
	for i := 0; i < 30; i++ {
		a = append(a, i)
	}
	resultF := func(d diff.Delta, v int) error {
		t.Fatalf("common resultF called for %s %d", d, v)
		return nil
	}
	r, err := diff.Ordered(context.Background(), seq.FromSlice(a), seq.FromSlice(a), resultF)
	require.NoError(t, err)
	assert.Equal(t, diff.Result{TotalA: 30, TotalB: 30, Common: 30}, r)
}

func mixed() (a, b []int) {
	for i := 0; i < 30; i++ {
		a = append(a, i)
		b = append(b, i)
	}
	for i := 30; i < 60; i++ {
		if i%2 == 0 {
			a = append(a, i)
		} else {
			b = append(b, i)
		}
	}
	for i := 60; i < 90; i++ {
		a = append(a, i)
		b = append(b, i)
	}
	return a, b
}

func TestMix(t *testing.T) {
	a, b := mixed()
	var rec recorder[int]
	r, err := diff.Ordered(context.Background(), seq.FromSlice(a), seq.FromSlice(b), rec.record)
	require.NoError(t, err)
	assert.Equal(t, diff.Result{ExtraA: 15, ExtraB: 15, TotalA: 75, TotalB: 75, Common: 60}, r)
	assert.Equal(t, "< 30", rec.lines[0])
	assert.Equal(t, "> 31", rec.lines[1])
	assert.Len(t, rec.lines, 30)
}

func TestGenericInts(t *testing.T) {
	var rec recorder[int]
	r, err := diff.Generic(context.Background(), seq.FromSlice([]int{1, 3, 5}), seq.FromSlice([]int{2, 3, 4}), cmp.Compare[int], rec.record)
	require.NoError(t, err)
	assert.Equal(t, diff.Result{ExtraA: 2, ExtraB: 2, TotalA: 3, TotalB: 3, Common: 1}, r)
	assert.Equal(t, []string{"< 1", "> 2", "> 4", "< 5"}, rec.lines)
}

func TestDuplicates(t *testing.T) {
	var rec recorder[int]
	r, err := diff.Ordered(context.Background(), seq.FromSlice([]int{1, 1, 1, 2}), seq.FromSlice([]int{1, 2, 2}), rec.record)
	require.NoError(t, err)
	assert.Equal(t, diff.Result{ExtraA: 2, ExtraB: 1, TotalA: 4, TotalB: 3, Common: 2}, r)
	assert.Equal(t, []string{"< 1", "< 1", "> 2"}, rec.lines)
}

func TestUnsortedInput(t *testing.T) {
	var rec recorder[int]
	_, err := diff.Ordered(context.Background(), seq.FromSlice([]int{1, 3, 2}), seq.FromSlice([]int{1, 2, 3}), rec.record)
	var seqErr *check.OutOfSequenceError
	require.ErrorAs(t, err, &seqErr)
	assert.Equal(t, "A", seqErr.Name)
	assert.Equal(t, int64(3), seqErr.Position)
}

func TestResultFuncError(t *testing.T) {
	testErr := errors.New("result function error")
	resultF := func(d diff.Delta, s string) error {
		if s == "error" {
			return testErr
		}
		return nil
	}
	_, err := diff.Ordered(context.Background(), seq.FromSlice([]string{"error"}), seq.Empty[string](), resultF)
	assert.ErrorIs(t, err, testErr)
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var rec recorder[int]
	_, err := diff.Ordered(ctx, seq.FromSlice([]int{1}), seq.FromSlice([]int{2}), rec.record)
	assert.ErrorIs(t, err, context.Canceled)
}

func feed[T any](data []T, err error) (<-chan T, <-chan error) {
	ch := make(chan T)
	errCh := make(chan error, 1)
	go func() {
		for _, d := range data {
			ch <- d
		}
		if err != nil {
			errCh <- err
		}
		close(ch)
		close(errCh)
	}()
	return ch, errCh
}

func TestChans(t *testing.T) {
	a, b := mixed()
	aChan, aErrChan := feed(a, nil)
	bChan, bErrChan := feed(b, nil)
	r, err := diff.Chans(context.Background(), aChan, bChan, aErrChan, bErrChan, cmp.Compare[int], diff.ResultFunc[int](func(diff.Delta, int) error { return nil }))
	require.NoError(t, err)
	assert.Equal(t, uint64(60), r.Common)
}

func TestChansError(t *testing.T) {
	testErr := errors.New("random error")
	a, b := mixed()
	aChan, aErrChan := feed(a, nil)
	bChan, bErrChan := feed(b[:45], testErr)
	_, err := diff.Chans(context.Background(), aChan, bChan, aErrChan, bErrChan, cmp.Compare[int], diff.ResultFunc[int](func(diff.Delta, int) error { return nil }))
	assert.ErrorIs(t, err, testErr)
}

func TestResultChan(t *testing.T) {
	resultF, results := diff.ResultChan[int]()
	done := make(chan []string)
	go func() {
		var lines []string
		for r := range results {
			lines = append(lines, fmt.Sprintf("%s %d", r.D, r.S))
		}
		done <- lines
	}()

	r, err := diff.Ordered(context.Background(), seq.FromSlice([]int{1, 3, 5}), seq.FromSlice([]int{2, 3, 4}), resultF)
	close(results)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.Common)
	assert.Equal(t, []string{"< 1", "> 2", "> 4", "< 5"}, <-done)
}

func sortedInts(t *testing.T, data []int) *extsort.Iterator[int] {
	t.Helper()
	config := extsort.DefaultConfig()
	config.RunSize = 16
	config.TempFilesDir = t.TempDir()
	s, err := extsort.Ordered[int](context.Background(), config)
	require.NoError(t, err)
	for _, d := range data {
		require.NoError(t, s.Add(d))
	}
	it, err := s.Iterate()
	require.NoError(t, err)
	return it
}

func TestSortDiff(t *testing.T) {
	a, b := mixed()
	// reverse both inputs so the sorters have work to do
	for i, j := 0, len(a)-1; i < j; i, j = i+1, j-1 {
		a[i], a[j] = a[j], a[i]
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}

	var rec recorder[int]
	r, err := diff.Ordered[int](context.Background(), sortedInts(t, a), sortedInts(t, b), rec.record)
	require.NoError(t, err)
	assert.Equal(t, diff.Result{ExtraA: 15, ExtraB: 15, TotalA: 75, TotalB: 75, Common: 60}, r)
}

func ExamplePrintDiff() {
	_, err := diff.Ordered(context.Background(), seq.FromSlice([]int{1, 2}), seq.FromSlice([]int{2, 3}), diff.PrintDiff[int])
	if err != nil {
		panic(err)
	}
	// Output:
	// < 1
	// > 3
}
