package auth

import (
	"sync"

	"github.com/google/uuid"
)

// accountLocks serializes recovery commits per account so a concurrent
// login cannot observe a half-rotated keypair. Login itself does not take
// the lock; it reads a consistent snapshot from storage.
type accountLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *accountLocks) get(id uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}
