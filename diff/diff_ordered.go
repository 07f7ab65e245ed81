package diff

import (
	"cmp"
	"context"

	"github.com/ufinke/cubaja-sub001/seq"
)

// Ordered is Generic for cmp.Ordered types using cmp.Compare.
func Ordered[T cmp.Ordered](ctx context.Context, a, b seq.Iterator[T], resultFunc ResultFunc[T]) (Result, error) {
	return Generic(ctx, a, b, cmp.Compare[T], resultFunc)
}
