package lease

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	token   string
	expires time.Time
}

// MemoryLocker implements Locker for a single process
type MemoryLocker struct {
	mu     sync.Mutex
	leases map[string]entry
	now    func() time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		leases: make(map[string]entry),
		now:    time.Now,
	}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if held, ok := l.leases[key]; ok && now.Before(held.expires) {
		return nil, ErrHeld
	}

	token := uuid.NewString()
	l.leases[key] = entry{token: token, expires: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()

		if held, ok := l.leases[key]; ok && held.token == token {
			delete(l.leases, key)
		}
		return nil
	}, nil
}
