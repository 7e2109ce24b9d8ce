package treemap

import lru "github.com/hashicorp/golang-lru"

// NodeCache caches immutable nodes by name, and names by node, for maps
// saved to and loaded from a Persist. It lets MakeRoot skip nodes that
// were already written and lets loads of related versions share
// subtrees. Care should be taken to switch/invalidate the NodeCache when
// the Persist is changed.
type NodeCache interface {
	// Add associates a node with its name, in either direction.
	Add(key, value interface{})
	// Contains indicates the node with the given name has already been persisted.
	Contains(key interface{}) bool
	// Get retrieves the node for a name, or the name for a node, if cached.
	Get(key interface{}) (value interface{}, ok bool)
}

// NewNodeCache creates a new ARC-based node cache of the given size. One
// cache can be shared by any number of maps.
func NewNodeCache(size int) NodeCache {
	cache, err := lru.NewARC(size)
	if err != nil {
		panic(err)
	}
	return cache
}
