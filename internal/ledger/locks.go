package ledger

import "sync"

// tripLocks hands out one mutex per trip ID. Entries are reference counted
// and dropped once nobody holds or waits for them.
type tripLocks struct {
	mu    sync.Mutex
	locks map[string]*tripLock
}

type tripLock struct {
	sync.Mutex
	refs int
}

func newTripLocks() *tripLocks {
	return &tripLocks{locks: make(map[string]*tripLock)}
}

// lock blocks until the caller owns tripID and returns the matching unlock.
func (t *tripLocks) lock(tripID string) (unlock func()) {
	t.mu.Lock()
	l, ok := t.locks[tripID]
	if !ok {
		l = &tripLock{}
		t.locks[tripID] = l
	}
	l.refs++
	t.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, tripID)
		}
		t.mu.Unlock()
	}
}

// size reports how many trips currently have a lock entry.
func (t *tripLocks) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}
