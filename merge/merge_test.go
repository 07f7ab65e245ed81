package merge_test

import (
	"cmp"
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ufinke/cubaja-sub001/merge"
	"github.com/ufinke/cubaja-sub001/seq"
)

func sortedInput(r *rand.Rand, n int) []int {
	a := make([]int, n)
	for i := range a {
		a[i] = r.Intn(50)
	}
	slices.Sort(a)
	return a
}

func TestMergeSourceCounts(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for _, k := range []int{0, 1, 2, 3, 7} {
		var all []int
		var sources []seq.Iterator[int]
		for i := 0; i < k; i++ {
			in := sortedInput(r, r.Intn(40))
			all = append(all, in...)
			sources = append(sources, seq.FromSlice(in))
		}
		slices.Sort(all)

		got, err := seq.Collect(merge.New(cmp.Compare[int], sources...).Iterator())
		require.NoError(t, err)
		assert.Equal(t, len(all), len(got), "k=%d", k)
		if len(all) > 0 {
			assert.Equal(t, all, got, "k=%d", k)
		}
	}
}

func TestMergeIndependentOfGrouping(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	inputs := make([][]int, 7)
	for i := range inputs {
		inputs[i] = sortedInput(r, 25)
	}
	iters := func(in ...[]int) []seq.Iterator[int] {
		var out []seq.Iterator[int]
		for _, a := range in {
			out = append(out, seq.FromSlice(a))
		}
		return out
	}

	flat, err := seq.Collect(merge.New(cmp.Compare[int], iters(inputs...)...).Iterator())
	require.NoError(t, err)

	// merge the first three and the last four separately, then merge those
	first := merge.New(cmp.Compare[int], iters(inputs[:3]...)...).Iterator()
	second := merge.New(cmp.Compare[int], iters(inputs[3:]...)...).Iterator()
	nested, err := seq.Collect(merge.New(cmp.Compare[int], first, second).Iterator())
	require.NoError(t, err)

	assert.Equal(t, flat, nested)
}

func TestMergeWithItself(t *testing.T) {
	in := []int{1, 2, 2, 5, 9}
	got, err := seq.Collect(merge.New(cmp.Compare[int], seq.FromSlice(in), seq.FromSlice(in)).Iterator())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 2, 2, 2, 2, 5, 5, 9, 9}, got)
}

type tagged struct {
	key    int
	source int
}

func TestMergeTiesFavourEarlierSource(t *testing.T) {
	m := merge.ByKey(cmp.Compare[int], func(v tagged) int { return v.key })
	for s := 0; s < 5; s++ {
		m.Add(seq.FromSlice([]tagged{{1, s}, {2, s}}))
	}
	require.Equal(t, 5, m.Len())

	got, err := seq.Collect(m.Iterator())
	require.NoError(t, err)
	require.Len(t, got, 10)
	for i, v := range got {
		assert.Equal(t, i/5+1, v.key)
		assert.Equal(t, i%5, v.source)
	}
}

func TestMergeSourceError(t *testing.T) {
	ch := make(chan int, 2)
	errCh := make(chan error, 1)
	ch <- 1
	ch <- 4
	close(ch)
	errCh <- errors.New("broken source")

	it := merge.New(cmp.Compare[int], seq.FromSlice([]int{2, 3, 5}), seq.FromChan(ch, errCh), seq.FromSlice([]int{0})).Iterator()
	_, err := seq.Collect(it)
	assert.EqualError(t, err, "broken source")
	assert.False(t, it.Next())
}
