package treemap

import (
	"bytes"
	"cmp"
)

// A Key has a total sort order against other keys of its type.
type Key[T any] interface {
	// Order returns a negative number if this key sorts before the argument,
	// a positive number if after, and 0 if they are equal.
	Order(T) int
}

// New returns an empty Map ordered by K's natural ordering.
func New[K cmp.Ordered, V any]() Map[K, V] {
	return NewFunc[K, V](cmp.Compare[K])
}

// NewFunc returns an empty Map ordered by the given comparison, which
// must be a total order: negative for a < b, zero for equal keys,
// positive for a > b.
func NewFunc[K, V any](compare func(a, b K) int) Map[K, V] {
	if compare == nil {
		panic("treemap: nil comparison")
	}
	return Map[K, V]{cmp: compare}
}

// NewKeyed returns an empty Map ordered by the keys' own Order method.
func NewKeyed[K Key[K], V any]() Map[K, V] {
	return NewFunc[K, V](func(a, b K) int {
		return a.Order(b)
	})
}

// NewBytes returns an empty Map with []byte keys in lexicographic order.
// Keys are retained, not copied; callers must not modify them afterwards.
func NewBytes[V any]() Map[[]byte, V] {
	return NewFunc[[]byte, V](bytes.Compare)
}
