package kv

import (
	"hash/fnv"
	"sync"
)

const defaultStripes = 32

// stripedLock maps keys onto a fixed set of mutexes so read-modify-write cycles on the
// same key run one at a time inside a process. Different keys may share a stripe.
type stripedLock struct {
	mu    []sync.Mutex
	count int
}

func newStripedLock(count int) *stripedLock {
	if count <= 0 || count > 256 {
		count = defaultStripes
	}
	return &stripedLock{
		mu:    make([]sync.Mutex, count),
		count: count,
	}
}

// stripe returns the mutex index for key using FNV, which is fast and spreads well.
func (l *stripedLock) stripe(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(l.count))
}

func (l *stripedLock) lock(key string) func() {
	m := &l.mu[l.stripe(key)]
	m.Lock()
	return m.Unlock
}
