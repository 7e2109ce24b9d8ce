package treemap

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNoMoreDiffs is returned by DiffCursor.NextEntry after the last difference.
var ErrNoMoreDiffs = errors.New("no more differences")

// DiffType classifies a Diff.
type DiffType int

const (
	// DiffType_Add is an entry present only in the newer version.
	DiffType_Add DiffType = iota
	// DiffType_Remove is an entry present only in the older version.
	DiffType_Remove
	// DiffType_Change is a key whose value differs between versions.
	DiffType_Change
)

func (t DiffType) String() string {
	switch t {
	case DiffType_Add:
		return "add"
	case DiffType_Remove:
		return "remove"
	case DiffType_Change:
		return "change"
	}
	return fmt.Sprintf("DiffType(%d)", int(t))
}

// Diff is one difference between two versions of a map.
type Diff[K, V any] struct {
	Type     DiffType
	Key      K
	OldValue V
	NewValue V
}

// diffItem is either a subtree still to be expanded or a node whose own
// entry is next in order.
type diffItem[K, V any] struct {
	subtree *node[K, V]
	entry   *node[K, V]
}

type diffStack[K, V any] struct {
	things []diffItem[K, V]
}

func (stack *diffStack[K, V]) peek() *diffItem[K, V] {
	if len(stack.things) == 0 {
		return nil
	}
	return &stack.things[len(stack.things)-1]
}

func (stack *diffStack[K, V]) pop() {
	stack.things = stack.things[:len(stack.things)-1]
}

func (stack *diffStack[K, V]) pushSubtree(n *node[K, V]) {
	if n != nil {
		stack.things = append(stack.things, diffItem[K, V]{subtree: n})
	}
}

// expand replaces the subtree on top with its left subtree, its own
// entry and its right subtree, smallest on top.
func (stack *diffStack[K, V]) expand() {
	n := stack.peek().subtree
	stack.pop()
	stack.pushSubtree(n.right)
	stack.things = append(stack.things, diffItem[K, V]{entry: n})
	stack.pushSubtree(n.left)
}

// DiffCursor produces the differences between two versions one at a
// time, in ascending key order.
type DiffCursor[K, V any] struct {
	cmp      func(K, K) int
	eq       func(V, V) bool
	oldStack diffStack[K, V]
	newStack diffStack[K, V]
	debug    bool
}

// StartDiff returns a cursor over the differences from old to m, with
// values compared by reflect.DeepEqual. Both versions must use the same
// key ordering.
func (m Map[K, V]) StartDiff(old Map[K, V]) *DiffCursor[K, V] {
	return m.StartDiffFunc(old, func(a, b V) bool {
		return reflect.DeepEqual(a, b)
	})
}

// StartDiffFunc is StartDiff with a caller-supplied value equality.
func (m Map[K, V]) StartDiffFunc(old Map[K, V], eq func(a, b V) bool) *DiffCursor[K, V] {
	dc := &DiffCursor[K, V]{
		cmp:   m.cmp,
		eq:    eq,
		debug: m.debug,
	}
	dc.oldStack.pushSubtree(old.root)
	dc.newStack.pushSubtree(m.root)
	return dc
}

// NextEntry returns the next difference, or ErrNoMoreDiffs. Subtrees
// that both versions share are skipped without being visited.
func (dc *DiffCursor[K, V]) NextEntry() (Diff[K, V], error) {
	for {
		o := dc.oldStack.peek()
		n := dc.newStack.peek()
		switch {
		case o == nil && n == nil:
			return Diff[K, V]{}, ErrNoMoreDiffs
		case o != nil && n != nil && o.subtree != nil && o.subtree == n.subtree:
			if dc.debug {
				fmt.Printf("  skipping shared subtree at %v\n", o.subtree.key)
			}
			dc.oldStack.pop()
			dc.newStack.pop()
		case o != nil && o.subtree != nil && (n == nil || n.subtree == nil || o.subtree.level >= n.subtree.level):
			dc.oldStack.expand()
		case n != nil && n.subtree != nil:
			dc.newStack.expand()
		case o != nil && n != nil && o.entry == n.entry:
			dc.oldStack.pop()
			dc.newStack.pop()
		case o != nil && !o.entry.live:
			dc.oldStack.pop()
		case n != nil && !n.entry.live:
			dc.newStack.pop()
		case n == nil:
			dc.oldStack.pop()
			return dc.removed(o.entry), nil
		case o == nil:
			dc.newStack.pop()
			return dc.added(n.entry), nil
		default:
			oe, ne := o.entry, n.entry
			c := dc.cmp(oe.key, ne.key)
			if c < 0 {
				dc.oldStack.pop()
				return dc.removed(oe), nil
			}
			if c > 0 {
				dc.newStack.pop()
				return dc.added(ne), nil
			}
			dc.oldStack.pop()
			dc.newStack.pop()
			if !dc.eq(oe.value, ne.value) {
				return Diff[K, V]{
					Type:     DiffType_Change,
					Key:      ne.key,
					OldValue: oe.value,
					NewValue: ne.value,
				}, nil
			}
		}
	}
}

func (dc *DiffCursor[K, V]) added(n *node[K, V]) Diff[K, V] {
	return Diff[K, V]{Type: DiffType_Add, Key: n.key, NewValue: n.value}
}

func (dc *DiffCursor[K, V]) removed(n *node[K, V]) Diff[K, V] {
	return Diff[K, V]{Type: DiffType_Remove, Key: n.key, OldValue: n.value}
}

// DiffIter invokes the given callback for every entry that is different
// from the given older version. The iteration stops if the callback
// returns keepGoing == false or an error. Callback invocation with
// added == removed == false signifies entries whose values have changed.
func (m Map[K, V]) DiffIter(
	old Map[K, V],
	f func(added, removed bool, key K, addedValue, removedValue V) (keepGoing bool, err error),
) error {
	return diffIter(m.StartDiff(old), f)
}

// DiffIterFunc is DiffIter with a caller-supplied value equality.
func (m Map[K, V]) DiffIterFunc(
	old Map[K, V],
	eq func(a, b V) bool,
	f func(added, removed bool, key K, addedValue, removedValue V) (keepGoing bool, err error),
) error {
	return diffIter(m.StartDiffFunc(old, eq), f)
}

func diffIter[K, V any](
	dc *DiffCursor[K, V],
	f func(added, removed bool, key K, addedValue, removedValue V) (bool, error),
) error {
	for {
		d, err := dc.NextEntry()
		if errors.Is(err, ErrNoMoreDiffs) {
			return nil
		}
		if err != nil {
			return err
		}
		keepGoing, err := f(d.Type == DiffType_Add, d.Type == DiffType_Remove, d.Key, d.NewValue, d.OldValue)
		if err != nil {
			return fmt.Errorf("callback: %w", err)
		}
		if !keepGoing {
			return nil
		}
	}
}
