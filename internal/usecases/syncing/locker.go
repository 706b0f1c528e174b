package syncing

import "sync"

// AccountLocker garante no máximo uma sincronização por conta externa.
// Quem não consegue o lock é rejeitado, não enfileirado.
type AccountLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewAccountLocker() *AccountLocker {
	return &AccountLocker{held: make(map[string]struct{})}
}

func (l *AccountLocker) TryLock(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return false
	}
	l.held[key] = struct{}{}
	return true
}

func (l *AccountLocker) Unlock(key string) {
	l.mu.Lock()
	delete(l.held, key)
	l.mu.Unlock()
}

func (l *AccountLocker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, busy := l.held[key]
	return busy
}
