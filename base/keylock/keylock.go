package keylock

import (
	"context"
	"sync"
)

// KeyedMutex hands out one mutex per key. Entries are reference counted and
// dropped once nobody holds or waits on them, so unrelated keys never contend
// and the map does not grow with every key ever seen.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	// buffered with capacity 1, holding a token means holding the lock
	ch   chan struct{}
	refs int
}

func New() *KeyedMutex {
	return &KeyedMutex{locks: map[string]*entry{}}
}

// Lock blocks until key is acquired or ctx is done. The returned func
// releases the lock and must be called exactly once.
func (k *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	e := k.acquire(key)

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			k.release(key, e)
		})
	}, nil
}

// TryLock acquires key only if it is free
func (k *KeyedMutex) TryLock(key string) (func(), bool) {
	e := k.acquire(key)

	select {
	case e.ch <- struct{}{}:
	default:
		k.release(key, e)
		return nil, false
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			k.release(key, e)
		})
	}, true
}

// Len is the number of keys currently held or waited on
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

func (k *KeyedMutex) acquire(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	return e
}

func (k *KeyedMutex) release(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
}
