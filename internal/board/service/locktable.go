package service

import "sync"

// lockTable hands out one mutex per board uid so every mutation of a board
// runs serialized while unrelated boards proceed in parallel.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the board's mutex and returns its unlock func.
func (t *lockTable) lock(uid string) func() {
	t.mu.Lock()
	l, ok := t.locks[uid]
	if !ok {
		l = &sync.Mutex{}
		t.locks[uid] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// drop forgets a destroyed board's mutex. Callers still hold the mutex;
// stragglers that raced on the old entry simply see the board gone.
func (t *lockTable) drop(uid string) {
	t.mu.Lock()
	delete(t.locks, uid)
	t.mu.Unlock()
}
