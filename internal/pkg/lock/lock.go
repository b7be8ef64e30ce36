// Package lock provides keyed locking for concurrent balance operations.
// Every play holds the lock for its (account, currency) pair across the
// whole debit-to-credit window, so plays on the same wallet serialize
// while plays on different wallets proceed in parallel.
package lock

import (
	"context"
	"sync"
	"time"
)

// keyedMutex wraps a mutex with reference counting for cleanup.
type keyedMutex struct {
	mu       sync.Mutex
	refCount int
}

// Manager provides per-key locking to prevent race conditions during
// balance operations. Keys are opaque; the settlement layer uses
// "accountID:currency".
type Manager struct {
	locks sync.Map // map[string]*keyedMutex
	pool  sync.Pool
}

// NewManager creates a new lock Manager.
func NewManager() *Manager {
	return &Manager{
		pool: sync.Pool{
			New: func() any {
				return &keyedMutex{}
			},
		},
	}
}

// getLock retrieves or creates a mutex for the given key.
func (m *Manager) getLock(key string) *keyedMutex {
	if v, ok := m.locks.Load(key); ok {
		return v.(*keyedMutex)
	}

	newLock := m.pool.Get().(*keyedMutex)
	newLock.refCount = 0

	actual, loaded := m.locks.LoadOrStore(key, newLock)
	if loaded {
		// Another goroutine created the lock first, return ours to pool
		m.pool.Put(newLock)
	}
	return actual.(*keyedMutex)
}

// Lock acquires the lock for a key.
func (m *Manager) Lock(key string) {
	lock := m.getLock(key)
	lock.mu.Lock()
	lock.refCount++
}

// Unlock releases the lock for a key.
func (m *Manager) Unlock(key string) {
	if v, ok := m.locks.Load(key); ok {
		lock := v.(*keyedMutex)
		lock.refCount--
		lock.mu.Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false otherwise.
func (m *Manager) TryLock(key string) bool {
	lock := m.getLock(key)
	if lock.mu.TryLock() {
		lock.refCount++
		return true
	}
	return false
}

// LockWithTimeout attempts to acquire the lock with a timeout.
// Returns true if the lock was acquired, false if timeout occurred.
func (m *Manager) LockWithTimeout(ctx context.Context, key string, timeout time.Duration) bool {
	lock := m.getLock(key)

	done := make(chan struct{})
	go func() {
		lock.mu.Lock()
		close(done)
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case <-done:
		lock.refCount++
		return true
	case <-timeoutCtx.Done():
		// The waiting goroutine will eventually acquire the mutex;
		// release it immediately so the key does not stay locked.
		go func() {
			<-done
			lock.mu.Unlock()
		}()
		return false
	}
}

// WithLock executes a function while holding the key's lock.
func (m *Manager) WithLock(key string, fn func() error) error {
	m.Lock(key)
	defer m.Unlock(key)
	return fn()
}

// WithLockContext executes a function while holding the key's lock,
// with context support for cancellation.
func (m *Manager) WithLockContext(ctx context.Context, key string, timeout time.Duration, fn func() error) error {
	if !m.LockWithTimeout(ctx, key, timeout) {
		return ErrLockTimeout
	}
	defer m.Unlock(key)

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fn()
	}
}

// IsLocked checks if a key currently has an active lock.
// Point-in-time check; may change immediately after returning.
func (m *Manager) IsLocked(key string) bool {
	if v, ok := m.locks.Load(key); ok {
		lock := v.(*keyedMutex)
		if lock.mu.TryLock() {
			lock.mu.Unlock()
			return false
		}
		return true
	}
	return false
}
