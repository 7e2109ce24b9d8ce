package treemap

import (
	"errors"
	"fmt"
)

var (
	// ErrUnbalanced indicates a tree whose levels break the AA-tree rules.
	ErrUnbalanced = errors.New("tree levels are unbalanced")
	// ErrInconsistentOrder indicates keys that are not in ascending order
	// under the map's comparison, usually because the comparison is not a
	// total order or differs from the one the tree was built with.
	ErrInconsistentOrder = errors.New("inconsistent key order")
)

// Check walks the whole version and verifies the level invariants and
// the ordering of keys, returning an error wrapping ErrUnbalanced or
// ErrInconsistentOrder for the first violation found.
func (m Map[K, V]) Check() error {
	_, _, err := m.check(m.root)
	return err
}

// check returns the least and greatest node of the subtree at n.
func (m *Map[K, V]) check(n *node[K, V]) (least, greatest *node[K, V], err error) {
	if n == nil {
		return nil, nil, nil
	}
	if n.left.lvl() != n.level-1 {
		return nil, nil, fmt.Errorf("%w: left child of %v has level %d under level %d",
			ErrUnbalanced, n.key, n.left.lvl(), n.level)
	}
	if n.right.lvl() > n.level || n.right.lvl() < n.level-1 {
		return nil, nil, fmt.Errorf("%w: right child of %v has level %d under level %d",
			ErrUnbalanced, n.key, n.right.lvl(), n.level)
	}
	if n.right != nil && n.right.right.lvl() >= n.level {
		return nil, nil, fmt.Errorf("%w: consecutive horizontal links at %v",
			ErrUnbalanced, n.key)
	}
	least, greatest = n, n
	if n.left != nil {
		var leftMax *node[K, V]
		least, leftMax, err = m.check(n.left)
		if err != nil {
			return nil, nil, err
		}
		if m.cmp(leftMax.key, n.key) >= 0 {
			return nil, nil, fmt.Errorf("%w: %v is left of %v", ErrInconsistentOrder, leftMax.key, n.key)
		}
	}
	if n.right != nil {
		var rightMin *node[K, V]
		rightMin, greatest, err = m.check(n.right)
		if err != nil {
			return nil, nil, err
		}
		if m.cmp(rightMin.key, n.key) <= 0 {
			return nil, nil, fmt.Errorf("%w: %v is right of %v", ErrInconsistentOrder, rightMin.key, n.key)
		}
	}
	return least, greatest, nil
}
