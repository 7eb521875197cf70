// Package session keeps the registry of issued login sessions so a token
// can be revoked before it expires.
package session

import (
	"context"
	"sync"
	"time"
)

// Registry records which token IDs are still valid for a user.
type Registry interface {
	Register(ctx context.Context, userID int, jti string, ttl time.Duration) error
	Active(ctx context.Context, userID int, jti string) (bool, error)
	Revoke(ctx context.Context, userID int, jti string) error
	// RevokeAll ends every session of a user.
	RevokeAll(ctx context.Context, userID int) error
}

type memoryKey struct {
	userID int
	jti    string
}

// MemoryRegistry is a process-local Registry.
type MemoryRegistry struct {
	mu       sync.Mutex
	sessions map[memoryKey]time.Time
	now      func() time.Time
}

// NewMemoryRegistry creates an empty MemoryRegistry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{sessions: make(map[memoryKey]time.Time), now: time.Now}
}

func (r *MemoryRegistry) Register(_ context.Context, userID int, jti string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[memoryKey{userID, jti}] = r.now().Add(ttl)
	return nil
}

func (r *MemoryRegistry) Active(_ context.Context, userID int, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := memoryKey{userID, jti}
	expires, ok := r.sessions[key]
	if !ok {
		return false, nil
	}
	if !r.now().Before(expires) {
		delete(r.sessions, key)
		return false, nil
	}
	return true, nil
}

func (r *MemoryRegistry) Revoke(_ context.Context, userID int, jti string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, memoryKey{userID, jti})
	return nil
}

func (r *MemoryRegistry) RevokeAll(_ context.Context, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.sessions {
		if key.userID == userID {
			delete(r.sessions, key)
		}
	}
	return nil
}
