package services

import "sync"

// addressLocks serializes work per address so that two concurrent activity
// events for the same user cannot interleave their recompute-then-broadcast
// sequences. Locks for different addresses are independent. Entries are kept
// for the process lifetime; the table is bounded by the number of known users.
type addressLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newAddressLocks() *addressLocks {
	return &addressLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// lock acquires the per-address lock and returns its release function.
func (l *addressLocks) lock(address string) func() {
	l.mu.Lock()
	m, ok := l.locks[address]
	if !ok {
		m = &sync.Mutex{}
		l.locks[address] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
