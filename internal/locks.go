package internal

import "sync"

// keyedMutex serializes operations per entity ID. The conflict check reads a snapshot and
// the subsequent write re-validates under the key's lock, so two concurrent requests for
// the same organizer or mentor cannot both pass the check against the same stale snapshot
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[uint]*sync.Mutex),
	}
}

// Lock locks the mutex for the given key, creating it on first use
func (k *keyedMutex) Lock(key uint) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
}

// Unlock unlocks the mutex for the given key
func (k *keyedMutex) Unlock(key uint) {
	k.mu.Lock()
	m := k.locks[key]
	k.mu.Unlock()
	if m != nil {
		m.Unlock()
	}
}
