/*
Package treemap provides an immutable, versioned, ordered map
implemented as a persistent AA-tree. Every Set, Update or Delete
returns a new version; all earlier versions stay valid, readable and
unchanged.

Uses

- Undo history and snapshots, without copying the whole map

- Sharing a version between goroutines with no locking

- Functional pipelines over sorted key/value data

How it works

An AA-tree is a balanced binary search tree that keeps an integer
level on each node in place of a red/black color, which cuts
rebalancing down to two local rotations, skew and split. An update
copies only the nodes on the path from the root to the key, plus the
few nodes a rotation touches; all other subtrees are shared by
reference between the old and the new version, so a change costs
O(log n) allocations.

Deleting a key does not unlink its node. The node is replaced by a
tombstone on the same path an insert would take, so the shape of the
tree is untouched and no deletion rebalancing is needed. Tombstones are
skipped by every read and traversal, and a later Set of the same key
revives the slot in place. The number of live entries is not cached:
Size walks the tree.

Ordering

Keys are ordered by a comparison that must be a total order. New uses
the natural order of cmp.Ordered keys; NewFunc, NewKeyed and NewBytes
take other orders. All traversals (ForEach, Reduce, All, Iterator,
Keys, Entries) produce ascending key order; ReduceRight and Backward
produce descending order.

Concurrency

Nodes are never modified after they are built, so any number of
goroutines may read any versions concurrently, including while others
derive new versions from them.

Sharing versions

A version can be written to a Persist with MakeRoot and read back with
LoadMap. Nodes are content-addressed, so saving a new version writes
only the nodes it does not share with versions already saved. DiffIter
and StartDiff enumerate the differences between two versions, skipping
subtrees they share.
*/
package treemap
