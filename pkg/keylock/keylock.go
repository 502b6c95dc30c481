// Package keylock provides one mutex per key, created on demand and dropped
// once nobody holds or waits for it.
package keylock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

type Locker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

func New() *Locker { return &Locker{locks: make(map[string]*entry)} }

// Lock blocks until key is free and returns the matching unlock func.
func (k *Locker) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// Len reports how many keys are currently held or awaited.
func (k *Locker) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
