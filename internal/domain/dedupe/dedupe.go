// Package dedupe remembers idempotency keys so retried requests replay the
// original result instead of repeating a mutation.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// Keys is an idempotency-key store.
type Keys interface {
	// Reserve atomically claims key. When the key was already claimed it
	// returns the recorded result and true; the result is empty while the
	// first request is still in flight.
	Reserve(ctx context.Context, key string) (result string, seen bool)

	// Complete records the result of the request that reserved key.
	Complete(ctx context.Context, key, result string)

	// Release drops a reservation whose request failed so it can be retried.
	Release(ctx context.Context, key string)

	Size() int64
}

type entry struct {
	key    string
	result string
	done   bool
}

// inMemoryKeys keeps keys in insertion order and evicts the oldest completed
// key once maxSize is reached. In-flight keys are never evicted, so the store
// may exceed maxSize while more than maxSize requests are running.
// maxSize <= 0 means unbounded.
type inMemoryKeys struct {
	mu      sync.Mutex
	index   map[string]*list.Element
	order   *list.List
	maxSize int
	size    atomic.Int64
}

// NewInMemoryKeys creates a bounded in-memory key store.
func NewInMemoryKeys(opts ...Option) Keys {
	k := &inMemoryKeys{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(k)
	}
	k.index = make(map[string]*list.Element)
	k.order = list.New()
	return k
}

func (k *inMemoryKeys) Reserve(_ context.Context, key string) (string, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if el, ok := k.index[key]; ok {
		return el.Value.(*entry).result, true
	}
	for k.maxSize > 0 && k.order.Len() >= k.maxSize {
		if !k.evictOldest() {
			break
		}
	}
	k.index[key] = k.order.PushBack(&entry{key: key})
	k.size.Add(1)
	return "", false
}

func (k *inMemoryKeys) Complete(_ context.Context, key, result string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if el, ok := k.index[key]; ok {
		e := el.Value.(*entry)
		e.result = result
		e.done = true
	}
}

func (k *inMemoryKeys) Release(_ context.Context, key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if el, ok := k.index[key]; ok {
		k.order.Remove(el)
		delete(k.index, key)
		k.size.Add(-1)
	}
}

// evictOldest drops the oldest completed key and reports whether one was
// found. Must be called with k.mu held.
func (k *inMemoryKeys) evictOldest() bool {
	for el := k.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry)
		if !e.done {
			continue
		}
		k.order.Remove(el)
		delete(k.index, e.key)
		k.size.Add(-1)
		return true
	}
	return false
}

func (k *inMemoryKeys) Size() int64 {
	return k.size.Load()
}
