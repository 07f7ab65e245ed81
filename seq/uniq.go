package seq

// Uniq returns an Iterator that drops items comparing equal to the item
// yielded just before them. On sorted input this yields each distinct
// item once, keeping its first occurrence.
func Uniq[T any](it Iterator[T], compare func(a, b T) int) Iterator[T] {
	return &uniqIterator[T]{src: it, compare: compare}
}

type uniqIterator[T any] struct {
	src      Iterator[T]
	compare  func(a, b T) int
	prior    T
	priorSet bool
}

func (u *uniqIterator[T]) Next() bool {
	for u.src.Next() {
		d := u.src.Value()
		if u.priorSet && u.compare(d, u.prior) == 0 {
			continue
		}
		u.prior = d
		u.priorSet = true
		return true
	}
	return false
}

func (u *uniqIterator[T]) Value() T { return u.prior }

func (u *uniqIterator[T]) Err() error { return u.src.Err() }
