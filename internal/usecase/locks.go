package usecase

import "sync"

// AccountLocker serializes allocation and rebuild work per account while
// letting different accounts proceed in parallel. Allocation correctness
// depends on reading a consistent set of existing allocations, so all reads
// and writes for one account happen under its lock.
type AccountLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAccountLocker creates a new AccountLocker.
func NewAccountLocker() *AccountLocker {
	return &AccountLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for the given account and returns the unlock func.
func (l *AccountLocker) Lock(accountNumber string) func() {
	l.mu.Lock()
	m, ok := l.locks[accountNumber]
	if !ok {
		m = &sync.Mutex{}
		l.locks[accountNumber] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
