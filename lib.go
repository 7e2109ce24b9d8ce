package treemap

import (
	"fmt"
	"strings"
)

// Map is an immutable, ordered map. A Map value is one version of the
// tree; every method that changes contents returns a new version and
// leaves the receiver, and every node reachable from it, untouched.
//
// Keys must form a total order under the Map's comparison function:
// cmp(a, b) < 0, == 0 and > 0 must agree with each other and be
// transitive. Keys that violate this produce a well-formed but wrongly
// ordered tree; Check reports such trees.
//
// The zero Map has no ordering and is not usable: create maps with New,
// NewFunc, NewKeyed, NewBytes, Of or FromEntries. Reading or writing a
// zero Map panics.
type Map[K, V any] struct {
	root  *node[K, V]
	cmp   func(K, K) int
	debug bool
}

// node is an occupied cell of an AA-tree. The nil *node is the empty
// tree and has level 0. Nodes are never modified after construction,
// so any number of versions may share them.
type node[K, V any] struct {
	key   K
	value V
	// live is false for a tombstone: a deleted entry still occupying its slot.
	live  bool
	left  *node[K, V]
	right *node[K, V]
	level int
}

func (n *node[K, V]) lvl() int {
	if n == nil {
		return 0
	}
	return n.level
}

// exists is true when n is occupied and carries a live payload.
func (n *node[K, V]) exists() bool {
	return n != nil && n.live
}

func (n *node[K, V]) withChildren(left, right *node[K, V]) *node[K, V] {
	return &node[K, V]{
		key:   n.key,
		value: n.value,
		live:  n.live,
		left:  left,
		right: right,
		level: n.level,
	}
}

const errNoOrdering = "treemap: Map not created with New or NewFunc"

// lookup returns the node holding key, live or tombstoned, or nil.
func (m *Map[K, V]) lookup(key K) *node[K, V] {
	if m.cmp == nil {
		panic(errNoOrdering)
	}
	n := m.root
	for n != nil {
		c := m.cmp(key, n.key)
		switch {
		case c == 0:
			return n
		case c < 0:
			n = n.left
		default:
			n = n.right
		}
	}
	return nil
}

// insert returns a copy of the tree rooted at n with key bound to value,
// or to a tombstone when live is false. Only the path to key, plus nodes
// touched by rotations, is rebuilt; everything else is shared with n.
func (m *Map[K, V]) insert(n *node[K, V], key K, value V, live bool) *node[K, V] {
	if m.cmp == nil {
		panic(errNoOrdering)
	}
	if n == nil {
		if !live {
			return nil
		}
		if m.debug {
			fmt.Printf("  new leaf %v\n", key)
		}
		return &node[K, V]{key: key, value: value, live: true, level: 1}
	}
	c := m.cmp(key, n.key)
	if c == 0 {
		if !live && !n.live {
			return n
		}
		return &node[K, V]{
			key:   key,
			value: value,
			live:  live,
			left:  n.left,
			right: n.right,
			level: n.level,
		}
	}
	if c < 0 {
		left := m.insert(n.left, key, value, live)
		if left == n.left {
			return n
		}
		return m.rebalance(n.withChildren(left, n.right))
	}
	right := m.insert(n.right, key, value, live)
	if right == n.right {
		return n
	}
	return m.rebalance(n.withChildren(n.left, right))
}

// rebalance restores the level invariants at n after one of its children
// was replaced. skew runs first: its right rotation can leave two
// consecutive right-horizontal links, which only the following split
// removes.
func (m *Map[K, V]) rebalance(n *node[K, V]) *node[K, V] {
	return m.split(m.skew(n))
}

// skew removes a left-horizontal link by rotating right.
func (m *Map[K, V]) skew(n *node[K, V]) *node[K, V] {
	if n == nil || n.left == nil || n.left.level != n.level {
		return n
	}
	if m.debug {
		fmt.Printf("  skew at %v\n", n.key)
	}
	l := n.left
	return l.withChildren(l.left, n.withChildren(l.right, n.right))
}

// split removes two consecutive right-horizontal links by rotating left
// and promoting the new top one level.
func (m *Map[K, V]) split(n *node[K, V]) *node[K, V] {
	if n == nil || n.right == nil || n.right.right == nil || n.right.right.level != n.level {
		return n
	}
	if m.debug {
		fmt.Printf("  split at %v\n", n.key)
	}
	r := n.right
	top := r.withChildren(n.withChildren(n.left, r.left), r.right)
	top.level++
	return top
}

func (m *Map[K, V]) dump() {
	if m.root == nil {
		fmt.Printf("NIL\n")
		return
	}
	fmt.Printf("{\n%s}\n", m.root.string("   "))
}

func (n *node[K, V]) string(indent string) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(n.right.string(indent + "   "))
	if n.live {
		fmt.Fprintf(&sb, "%s%v: %v (level %d)\n", indent, n.key, n.value, n.level)
	} else {
		fmt.Fprintf(&sb, "%s%v: <deleted> (level %d)\n", indent, n.key, n.level)
	}
	sb.WriteString(n.left.string(indent + "   "))
	return sb.String()
}

// nodeCount counts occupied nodes, tombstones included.
func (n *node[K, V]) nodeCount() int {
	if n == nil {
		return 0
	}
	return 1 + n.left.nodeCount() + n.right.nodeCount()
}

// height is the length of the longest root-to-leaf path.
func (n *node[K, V]) height() int {
	if n == nil {
		return 0
	}
	return 1 + max(n.left.height(), n.right.height())
}
