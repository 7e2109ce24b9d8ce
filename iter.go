package treemap

// All traversals visit live entries only; tombstones are stepped over
// without invoking the caller.

func (n *node[K, V]) forEach(f func(K, V)) {
	if n == nil {
		return
	}
	n.left.forEach(f)
	if n.live {
		f(n.key, n.value)
	}
	n.right.forEach(f)
}

// fold is a left fold in ascending key order.
func fold[K, V, U any](n *node[K, V], f func(U, K, V) U, acc U) U {
	if n == nil {
		return acc
	}
	acc = fold(n.left, f, acc)
	if n.live {
		acc = f(acc, n.key, n.value)
	}
	return fold(n.right, f, acc)
}

// foldRight is a fold in descending key order.
func foldRight[K, V, U any](n *node[K, V], f func(U, K, V) U, acc U) U {
	if n == nil {
		return acc
	}
	acc = foldRight(n.right, f, acc)
	if n.live {
		acc = f(acc, n.key, n.value)
	}
	return foldRight(n.left, f, acc)
}

// mapNodes rebuilds the tree with every live payload transformed. Keys,
// levels and tombstones are kept, so no rebalancing is needed. f is
// invoked in ascending key order.
func mapNodes[K, V, U any](n *node[K, V], f func(K, V) U) *node[K, U] {
	if n == nil {
		return nil
	}
	out := &node[K, U]{
		key:   n.key,
		live:  n.live,
		level: n.level,
	}
	out.left = mapNodes(n.left, f)
	if n.live {
		out.value = f(n.key, n.value)
	}
	out.right = mapNodes(n.right, f)
	return out
}

// walker is an explicit-stack in-order traversal. The stack holds the
// nodes whose key has not been produced yet along the current spine, so
// its depth is bounded by the tree height.
type walker[K, V any] struct {
	stack   []*node[K, V]
	reverse bool
}

func newWalker[K, V any](root *node[K, V], reverse bool) *walker[K, V] {
	w := &walker[K, V]{
		stack:   make([]*node[K, V], 0, 2*root.lvl()+1),
		reverse: reverse,
	}
	w.descend(root)
	return w
}

func (w *walker[K, V]) descend(n *node[K, V]) {
	for n != nil {
		w.stack = append(w.stack, n)
		if w.reverse {
			n = n.right
		} else {
			n = n.left
		}
	}
}

// next returns the next live node, or nil when the walk is done.
func (w *walker[K, V]) next() *node[K, V] {
	for len(w.stack) > 0 {
		n := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]
		if w.reverse {
			w.descend(n.left)
		} else {
			w.descend(n.right)
		}
		if n.live {
			return n
		}
	}
	return nil
}

// Iterator is a cursor over the live entries of one Map version. It
// holds no reference that could change the tree and is not safe for
// use by multiple goroutines at once; obtain one per goroutine.
type Iterator[K, V any] struct {
	w *walker[K, V]
}

// Next returns the next entry, or ok == false once the entries are
// exhausted.
func (it *Iterator[K, V]) Next() (key K, value V, ok bool) {
	n := it.w.next()
	if n == nil {
		return key, value, false
	}
	return n.key, n.value, true
}
