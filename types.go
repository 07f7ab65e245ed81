package extsort

// FromBytesGeneric is a function type for deserializing bytes back to type E.
// It's used during the merge phase to reconstruct items from temporary storage.
// The function should be the inverse of the corresponding ToBytesGeneric function.
// It returns an error for any deserialization failures, which will be wrapped
// in a DeserializationError by the external sorter.
type FromBytesGeneric[E any] func([]byte) (E, error)

// ToBytesGeneric is a function type for serializing type E to bytes.
// It's used while spilling runs to the temporary file.
// The function should produce output that can be read back by the
// corresponding FromBytesGeneric function. It returns an error for any
// serialization failures, which will be wrapped in a SerializationError by the external sorter.
type ToBytesGeneric[E any] func(E) ([]byte, error)

// CompareGeneric is a function type for comparing two items of type E.
// It must implement a strict weak ordering: reflexivity, antisymmetry, and transitivity.
// Returns a negative integer if a should be ordered before b, zero if they are equal,
// and a positive integer if a should be ordered after b in the final sorted output.
// This follows the same semantics as cmp.Compare and can be implemented using cmp.Compare[T] for ordered types.
type CompareGeneric[E any] func(a, b E) int

// Algorithm sorts runs in memory.
//
// Sort orders data[:size] ascending by compare, in place. Implementations
// must not keep or touch any state besides their arguments: one Algorithm
// value is shared by the sort workers of independent Sorters and may be
// called concurrently on different slices.
type Algorithm[E any] interface {
	Sort(data []E, size int, compare CompareGeneric[E])
}
