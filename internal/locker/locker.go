// Package locker serializes work on a single auction, rent or singleton job
// inside one process.
package locker

import (
	"context"
	"fmt"
	"sync"
)

// GenerateKey guards auction generation so the active-auction cap cannot be overshot
const GenerateKey = "generate"

// AuctionKey returns the lock key for an auction
func AuctionKey(id int64) string { return fmt.Sprintf("auction:%d", id) }

// RentKey returns the lock key for a rent
func RentKey(id int64) string { return fmt.Sprintf("rent:%d", id) }

type entry struct {
	sem  chan struct{}
	refs int
}

// Keyed hands out one mutex per key. Entries are dropped once nobody holds or waits on them.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty Keyed locker
func New() *Keyed {
	return &Keyed{entries: make(map[string]*entry)}
}

func (k *Keyed) acquire(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	return e
}

func (k *Keyed) release(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// Lock blocks until key is free or ctx is done. The returned func releases the lock.
func (k *Keyed) Lock(ctx context.Context, key string) (func(), error) {
	e := k.acquire(key)
	select {
	case e.sem <- struct{}{}:
		return k.unlocker(key, e), nil
	case <-ctx.Done():
		k.release(key, e)
		return nil, fmt.Errorf("lock %s: %w", key, ctx.Err())
	}
}

// TryLock takes key only if it is free right now
func (k *Keyed) TryLock(key string) (func(), bool) {
	e := k.acquire(key)
	select {
	case e.sem <- struct{}{}:
		return k.unlocker(key, e), true
	default:
		k.release(key, e)
		return nil, false
	}
}

func (k *Keyed) unlocker(key string, e *entry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			k.release(key, e)
		})
	}
}

// Held reports how many keys are currently tracked
func (k *Keyed) Held() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
