package treemap

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultStoreConcurrency is how many node stores MakeRoot runs at once
// unless RemoteConfig.StoreConcurrency says otherwise.
const DefaultStoreConcurrency = 40

// ErrNodeNotFound is wrapped by Persist implementations when a named
// node does not exist.
var ErrNodeNotFound = errors.New("node not found")

// Persist is the interface for loading and storing (serialized) tree
// nodes. The given string identity corresponds to the content, which is
// immutable (never modified).
type Persist interface {
	// Store makes the given bytes accessible by the given name.
	Store(context.Context, string, []byte) error
	// Load retrieves the previously-stored bytes by the given name.
	Load(context.Context, string) ([]byte, error)
}

// RemoteConfig controls how nodes are persisted and loaded.
type RemoteConfig struct {
	// StoreImmutablePartsWith is used to store and load serialized nodes.
	StoreImmutablePartsWith Persist

	// Marshal function for keys and values, defaults to JSON.
	Marshal func(interface{}) ([]byte, error)

	// Unmarshal function for keys and values, defaults to JSON.
	Unmarshal func([]byte, interface{}) error

	// NodeCache caches deserialized nodes and the names of stored nodes,
	// and may be shared across multiple maps using the same Persist.
	NodeCache NodeCache

	// Logger receives debug-level events about node traffic. Defaults to a
	// no-op logger.
	Logger *zap.Logger

	// StoreConcurrency bounds the number of concurrent Store calls. 0 means
	// DefaultStoreConcurrency.
	StoreConcurrency int
}

func (config *RemoteConfig) marshal() func(interface{}) ([]byte, error) {
	if config.Marshal == nil {
		return json.Marshal
	}
	return config.Marshal
}

func (config *RemoteConfig) unmarshal() func([]byte, interface{}) error {
	if config.Unmarshal == nil {
		return json.Unmarshal
	}
	return config.Unmarshal
}

func (config *RemoteConfig) logger() *zap.Logger {
	if config.Logger == nil {
		return zap.NewNop()
	}
	return config.Logger
}

func (config *RemoteConfig) storeConcurrency() int {
	if config.StoreConcurrency <= 0 {
		return DefaultStoreConcurrency
	}
	return config.StoreConcurrency
}

// Root identifies a version of a map whose nodes are accessible in the
// persistent store.
type Root struct {
	// Link names the root node, or is nil for an empty map.
	Link *string
}

type saver[K, V any] struct {
	persist Persist
	cache   NodeCache
	marshal func(interface{}) ([]byte, error)
	log     *zap.Logger
	eg      *errgroup.Group
	ctx     context.Context
}

// MakeRoot writes every node of this version that is not already known
// to be stored, and returns a Root from which the version can be loaded.
// Nodes are content-addressed, so subtrees shared with previously saved
// versions are not written again.
func (m Map[K, V]) MakeRoot(ctx context.Context, config *RemoteConfig) (*Root, error) {
	if config.StoreImmutablePartsWith == nil {
		return nil, fmt.Errorf("no persistence mechanism set; set RemoteConfig.StoreImmutablePartsWith")
	}
	if m.root == nil {
		return &Root{}, nil
	}
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(config.storeConcurrency())
	s := &saver[K, V]{
		persist: config.StoreImmutablePartsWith,
		cache:   config.NodeCache,
		marshal: config.marshal(),
		log:     config.logger(),
		eg:      eg,
		ctx:     egctx,
	}
	link, err := s.store(m.root)
	waitErr := eg.Wait()
	if err != nil {
		return nil, err
	}
	if waitErr != nil {
		return nil, fmt.Errorf("persist store: %w", waitErr)
	}
	return &Root{Link: &link}, nil
}

// store encodes n after its children, queues the write of n, and
// returns n's name.
func (s *saver[K, V]) store(n *node[K, V]) (string, error) {
	if s.cache != nil {
		if name, ok := s.cache.Get(n); ok {
			return name.(string), nil
		}
	}
	pn := persistedNode{
		Live:  n.live,
		Level: uint64(n.level),
	}
	var err error
	if n.left != nil {
		pn.Left, err = s.store(n.left)
		if err != nil {
			return "", err
		}
	}
	if n.right != nil {
		pn.Right, err = s.store(n.right)
		if err != nil {
			return "", err
		}
	}
	pn.Key, err = s.marshal(n.key)
	if err != nil {
		return "", fmt.Errorf("marshal key %v: %w", n.key, err)
	}
	if n.live {
		pn.Value, err = s.marshal(n.value)
		if err != nil {
			return "", fmt.Errorf("marshal value for %v: %w", n.key, err)
		}
	}
	encoded := pn.marshal()
	name := nodeName(encoded)
	if s.cache != nil && s.cache.Contains(name) {
		s.log.Debug("node already stored", zap.String("name", name))
		s.cache.Add(n, name)
		return name, nil
	}
	s.eg.Go(func() error {
		err := s.persist.Store(s.ctx, name, encoded)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		s.log.Debug("stored node", zap.String("name", name), zap.Int("bytes", len(encoded)))
		if s.cache != nil {
			s.cache.Add(n, name)
			s.cache.Add(name, n)
		}
		return nil
	})
	return name, nil
}

type loader[K, V any] struct {
	persist   Persist
	cache     NodeCache
	unmarshal func([]byte, interface{}) error
	log       *zap.Logger
}

// LoadMap loads the version identified by r, ordered by compare, which
// must be the ordering the version was saved with. Subtrees found in
// config.NodeCache are reused rather than decoded again, so versions
// loaded through the same cache share structure. The loaded version is
// verified with Check.
func LoadMap[K, V any](ctx context.Context, r *Root, config *RemoteConfig, compare func(a, b K) int) (Map[K, V], error) {
	m := NewFunc[K, V](compare)
	if r.Link == nil {
		return m, nil
	}
	if config.StoreImmutablePartsWith == nil {
		return m, fmt.Errorf("no persistence mechanism set; set RemoteConfig.StoreImmutablePartsWith")
	}
	l := &loader[K, V]{
		persist:   config.StoreImmutablePartsWith,
		cache:     config.NodeCache,
		unmarshal: config.unmarshal(),
		log:       config.logger(),
	}
	root, err := l.load(ctx, *r.Link)
	if err != nil {
		return m, fmt.Errorf("load root: %w", err)
	}
	m.root = root
	err = m.Check()
	if err != nil {
		return Map[K, V]{}, fmt.Errorf("check: %w", err)
	}
	return m, nil
}

// LoadOrdered is LoadMap for keys in their natural ordering.
func LoadOrdered[K cmp.Ordered, V any](ctx context.Context, r *Root, config *RemoteConfig) (Map[K, V], error) {
	return LoadMap[K, V](ctx, r, config, cmp.Compare[K])
}

func (l *loader[K, V]) load(ctx context.Context, name string) (*node[K, V], error) {
	if l.cache != nil {
		if cached, ok := l.cache.Get(name); ok {
			if n, ok := cached.(*node[K, V]); ok {
				l.log.Debug("node cache hit", zap.String("name", name))
				return n, nil
			}
		}
	}
	encoded, err := l.persist.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("persist load %s: %w", name, err)
	}
	if nodeName(encoded) != name {
		return nil, fmt.Errorf("content of %s does not match its name", name)
	}
	pn, err := unmarshalPersistedNode(encoded)
	if err != nil {
		return nil, fmt.Errorf("unmarshaling %s: %w", name, err)
	}
	if pn.Level > math.MaxInt32 {
		return nil, fmt.Errorf("unmarshaling %s: level %d out of range", name, pn.Level)
	}
	n := &node[K, V]{
		live:  pn.Live,
		level: int(pn.Level),
	}
	err = l.unmarshal(pn.Key, &n.key)
	if err != nil {
		return nil, fmt.Errorf("cannot unmarshal key in %s: %w", name, err)
	}
	if pn.Live {
		err = l.unmarshal(pn.Value, &n.value)
		if err != nil {
			return nil, fmt.Errorf("cannot unmarshal value in %s: %w", name, err)
		}
	}
	if pn.Left != "" {
		n.left, err = l.load(ctx, pn.Left)
		if err != nil {
			return nil, err
		}
	}
	if pn.Right != "" {
		n.right, err = l.load(ctx, pn.Right)
		if err != nil {
			return nil, err
		}
	}
	l.log.Debug("loaded node", zap.String("name", name), zap.Int("bytes", len(encoded)))
	if l.cache != nil {
		l.cache.Add(name, n)
		l.cache.Add(n, name)
	}
	return n, nil
}
