package service

import "sync"

// teamLocks serialises read-modify-write sequences on one team. Entries are
// dropped once nobody holds or waits for them.
type teamLocks struct {
	mu    sync.Mutex
	locks map[string]*teamLock
}

type teamLock struct {
	sync.Mutex
	refs int
}

func newTeamLocks() *teamLocks {
	return &teamLocks{locks: make(map[string]*teamLock)}
}

func (l *teamLocks) lock(teamID string) (unlock func()) {
	l.mu.Lock()
	tl, ok := l.locks[teamID]
	if !ok {
		tl = &teamLock{}
		l.locks[teamID] = tl
	}
	tl.refs++
	l.mu.Unlock()

	tl.Lock()
	return func() {
		tl.Unlock()
		l.mu.Lock()
		tl.refs--
		if tl.refs == 0 {
			delete(l.locks, teamID)
		}
		l.mu.Unlock()
	}
}

func (l *teamLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
