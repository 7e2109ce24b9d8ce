package treemap

import (
	"context"
	"fmt"
	"sync"
)

type inMemoryStore struct {
	entries map[string][]byte
	l       sync.Mutex
}

// NewInMemoryStore provides a Persist that keeps serialized nodes in a
// map, for tests and for sharing versions within one process.
func NewInMemoryStore() Persist {
	return &inMemoryStore{entries: map[string][]byte{}}
}

func (ims *inMemoryStore) Store(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ims.l.Lock()
	ims.entries[key] = append([]byte(nil), value...)
	ims.l.Unlock()
	return nil
}

func (ims *inMemoryStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ims.l.Lock()
	value, ok := ims.entries[key]
	ims.l.Unlock()
	if !ok {
		return nil, fmt.Errorf("inMemoryStore entry %s: %w", key, ErrNodeNotFound)
	}
	return value, nil
}
