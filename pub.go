package treemap

import (
	"cmp"
	"fmt"
	"iter"
)

// Entry is a key and value in the map.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Of returns a Map of the given entries in K's natural ordering. Later
// entries replace earlier ones with an equal key.
func Of[K cmp.Ordered, V any](entries ...Entry[K, V]) Map[K, V] {
	return FromEntries(cmp.Compare[K], entries)
}

// FromEntries returns a Map of the given entries ordered by compare.
// Later entries replace earlier ones with an equal key.
func FromEntries[K, V any](compare func(a, b K) int, entries []Entry[K, V]) Map[K, V] {
	m := NewFunc[K, V](compare)
	for _, e := range entries {
		m.root = m.insert(m.root, e.Key, e.Value, true)
	}
	return m
}

// FromMaps returns a Map holding the entries of all the given maps.
// Where sources share a key, the later source wins.
func FromMaps[V any](sources ...map[string]V) Map[string, V] {
	m := New[string, V]()
	for _, source := range sources {
		for k, v := range source {
			m.root = m.insert(m.root, k, v, true)
		}
	}
	return m
}

// IsMap reports whether v is a Map of any key and value type.
func IsMap(v interface{}) bool {
	_, ok := v.(interface{ isTreemap() })
	return ok
}

func (m Map[K, V]) isTreemap() {}

// WithDebug returns the same version with insert tracing turned on or off.
func (m Map[K, V]) WithDebug(debug bool) Map[K, V] {
	m.debug = debug
	return m
}

// Set returns a version of the map with key bound to value.
func (m Map[K, V]) Set(key K, value V) Map[K, V] {
	if m.debug {
		fmt.Printf("setting %v...\n", key)
	}
	m.root = m.insert(m.root, key, value, true)
	return m
}

// Update returns a version of the map with key bound to the result of
// f, which is given the current value and whether there was one.
func (m Map[K, V]) Update(key K, f func(current V, ok bool) V) Map[K, V] {
	current, ok := m.Get(key)
	return m.Set(key, f(current, ok))
}

// Delete returns a version of the map without key. The key's node stays
// in the tree as a tombstone until the key is set again.
func (m Map[K, V]) Delete(key K) Map[K, V] {
	if m.debug {
		fmt.Printf("deleting %v...\n", key)
	}
	var zero V
	m.root = m.insert(m.root, key, zero, false)
	return m
}

// Get returns the value for key, and false if the map has no live entry
// for it.
func (m Map[K, V]) Get(key K) (V, bool) {
	n := m.lookup(key)
	if !n.exists() {
		var zero V
		return zero, false
	}
	return n.value, true
}

// Has reports whether Get would find a value for key.
func (m Map[K, V]) Has(key K) bool {
	return m.lookup(key).exists()
}

// Size returns the number of live entries. It walks the whole tree.
func (m Map[K, V]) Size() int {
	return m.Count(func(K, V) bool { return true })
}

// IsEmpty reports whether the map has no live entries.
func (m Map[K, V]) IsEmpty() bool {
	_, _, ok := m.Iterator().Next()
	return !ok
}

// ForEach invokes f for every entry in ascending key order.
func (m Map[K, V]) ForEach(f func(key K, value V)) {
	m.root.forEach(f)
}

// Reduce folds the entries of m in ascending key order.
func Reduce[K, V, U any](m Map[K, V], f func(acc U, key K, value V) U, initial U) U {
	return fold(m.root, f, initial)
}

// ReduceLeft is Reduce.
func ReduceLeft[K, V, U any](m Map[K, V], f func(acc U, key K, value V) U, initial U) U {
	return Reduce(m, f, initial)
}

// ReduceRight folds the entries of m in descending key order.
func ReduceRight[K, V, U any](m Map[K, V], f func(acc U, key K, value V) U, initial U) U {
	return foldRight(m.root, f, initial)
}

// Map returns a version of the map with every value replaced by f's
// result. The tree shape is reused, so this costs one allocation per node.
func (m Map[K, V]) Map(f func(key K, value V) V) Map[K, V] {
	return Transform(m, f)
}

// Transform is Map for functions that change the value type.
func Transform[K, V, U any](m Map[K, V], f func(key K, value V) U) Map[K, U] {
	return Map[K, U]{
		root:  mapNodes(m.root, f),
		cmp:   m.cmp,
		debug: m.debug,
	}
}

// Filter returns a new map holding the entries for which keep is true.
// The result is built by insertion and carries no tombstones.
func (m Map[K, V]) Filter(keep func(key K, value V) bool) Map[K, V] {
	out := Map[K, V]{cmp: m.cmp, debug: m.debug}
	m.root.forEach(func(k K, v V) {
		if keep(k, v) {
			out.root = out.insert(out.root, k, v, true)
		}
	})
	return out
}

// Count returns the number of entries for which f is true.
func (m Map[K, V]) Count(f func(key K, value V) bool) int {
	return fold(m.root, func(n int, k K, v V) int {
		if f(k, v) {
			n++
		}
		return n
	}, 0)
}

// Keys returns the keys in ascending order.
func (m Map[K, V]) Keys() []K {
	return fold(m.root, func(acc []K, k K, _ V) []K {
		return append(acc, k)
	}, []K{})
}

// Values returns the values in ascending key order.
func (m Map[K, V]) Values() []V {
	return fold(m.root, func(acc []V, _ K, v V) []V {
		return append(acc, v)
	}, []V{})
}

// Entries returns the entries in ascending key order.
func (m Map[K, V]) Entries() []Entry[K, V] {
	return fold(m.root, func(acc []Entry[K, V], k K, v V) []Entry[K, V] {
		return append(acc, Entry[K, V]{k, v})
	}, []Entry[K, V]{})
}

// All returns a sequence of the entries in ascending key order. Each
// range over it starts a fresh walk of this version.
func (m Map[K, V]) All() iter.Seq2[K, V] {
	return m.seq(false)
}

// Backward returns a sequence of the entries in descending key order.
func (m Map[K, V]) Backward() iter.Seq2[K, V] {
	return m.seq(true)
}

func (m Map[K, V]) seq(reverse bool) iter.Seq2[K, V] {
	root := m.root
	return func(yield func(K, V) bool) {
		w := newWalker(root, reverse)
		for n := w.next(); n != nil; n = w.next() {
			if !yield(n.key, n.value) {
				return
			}
		}
	}
}

// Iterator returns a cursor positioned before the smallest key.
func (m Map[K, V]) Iterator() *Iterator[K, V] {
	return &Iterator[K, V]{newWalker(m.root, false)}
}

// ToMap returns a builtin map keyed by the textual form of each key, as
// formatted by fmt.Sprint. Distinct keys with the same text collapse to
// the entry that comes last in ascending order.
func (m Map[K, V]) ToMap() map[string]V {
	out := make(map[string]V)
	m.root.forEach(func(k K, v V) {
		out[fmt.Sprint(k)] = v
	})
	return out
}

// String renders the entries in ascending order.
func (m Map[K, V]) String() string {
	return fmt.Sprintf("treemap%v", m.Entries())
}
