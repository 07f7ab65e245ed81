package extsort

import (
	"bytes"
	"cmp"
	"context"
	"encoding/gob"
	"strings"
	"sync"
)

// gobCodec converts values for the temp file using gob encoding. Buffers
// are pooled to reduce allocations.
type gobCodec[T any] struct {
	bufferPool sync.Pool
}

func newGobCodec[T any]() *gobCodec[T] {
	return &gobCodec[T]{
		bufferPool: sync.Pool{
			New: func() any {
				return &bytes.Buffer{}
			},
		},
	}
}

func (c *gobCodec[T]) fromBytes(d []byte) (T, error) {
	var v T
	buf := c.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	buf.Write(d)
	defer c.bufferPool.Put(buf)

	err := gob.NewDecoder(buf).Decode(&v)
	return v, err
}

func (c *gobCodec[T]) toBytes(d T) ([]byte, error) {
	buf := c.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer c.bufferPool.Put(buf)

	if err := gob.NewEncoder(buf).Encode(d); err != nil {
		return nil, err
	}
	// the buffer goes back to the pool
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// Ordered returns a Sorter for cmp.Ordered types using cmp.Compare and gob
// encoding.
func Ordered[T cmp.Ordered](ctx context.Context, config *Config) (*Sorter[T], error) {
	codec := newGobCodec[T]()
	return Generic[T](ctx, codec.fromBytes, codec.toBytes, cmp.Compare[T], config)
}

// OrderedMock is Ordered spilling to memory, see MockGeneric.
func OrderedMock[T cmp.Ordered](ctx context.Context, config *Config, n int) (*Sorter[T], error) {
	codec := newGobCodec[T]()
	return MockGeneric[T](ctx, codec.fromBytes, codec.toBytes, cmp.Compare[T], config, n)
}

func stringFromBytes(d []byte) (string, error) {
	return string(d), nil
}

func stringToBytes(s string) ([]byte, error) {
	return []byte(s), nil
}

// Strings returns a Sorter for strings. Strings are stored as their raw
// bytes, which is cheaper than Ordered[string].
func Strings(ctx context.Context, config *Config) (*Sorter[string], error) {
	return Generic[string](ctx, stringFromBytes, stringToBytes, strings.Compare, config)
}

// StringsMock is Strings spilling to memory, see MockGeneric.
func StringsMock(ctx context.Context, config *Config, n int) (*Sorter[string], error) {
	return MockGeneric[string](ctx, stringFromBytes, stringToBytes, strings.Compare, config, n)
}
