package ledger

import (
	"sync"
)

// KeyedLock serializes monetary recomputation per invoice ID. All derived
// fields of one invoice (total, paid_amount, balance, status) share a
// single read-modify-write cycle, so at most one recomputation may be in
// flight per invoice at a time. Different invoices proceed in parallel.
type KeyedLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewKeyedLock() *KeyedLock {
	return &KeyedLock{
		held: make(map[string]struct{}),
	}
}

// TryAcquire takes the lock for key, or reports false when a
// recomputation for that key is already running. Callers surface the
// false case as a conflict instead of blocking: financial recomputation
// is short and the caller can retry.
func (l *KeyedLock) TryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return false
	}
	l.held[key] = struct{}{}
	return true
}

// Release frees the lock for key. Releasing an unheld key is a no-op.
func (l *KeyedLock) Release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
}
