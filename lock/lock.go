// Package lock provides an account-keyed mutex with bounded wait.
//
// Every mutating engine operation serializes on the account's phone; sweeps
// release and reacquire between accounts so a long sweep never starves user
// traffic. Acquire gives up after a deadline instead of queueing forever.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout is returned when a lock could not be acquired within the wait
// budget.
var ErrTimeout = errors.New("lock: acquire timeout")

const defaultWait = 5 * time.Second

// Keyed is a set of named mutexes. The zero value is not usable; use New.
type Keyed struct {
	wait time.Duration

	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{} // capacity 1; holding the token means holding the lock
	refs int
}

// New returns a Keyed lock set with the given maximum wait per acquire.
// Non-positive wait falls back to a 5s default.
func New(wait time.Duration) *Keyed {
	if wait <= 0 {
		wait = defaultWait
	}
	return &Keyed{wait: wait, locks: make(map[string]*entry)}
}

func (k *Keyed) retain(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		e.ch <- struct{}{}
		k.locks[key] = e
	}
	e.refs++
	return e
}

func (k *Keyed) release(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
}

// Acquire takes the lock for key, waiting up to the configured budget. It
// returns an unlock func, or ErrTimeout / the context's error. The unlock
// func must be called exactly once.
func (k *Keyed) Acquire(ctx context.Context, key string) (func(), error) {
	e := k.retain(key)

	timer := time.NewTimer(k.wait)
	defer timer.Stop()

	select {
	case <-e.ch:
	case <-timer.C:
		k.release(key, e)
		return nil, ErrTimeout
	case <-ctx.Done():
		k.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.ch <- struct{}{}
			k.release(key, e)
		})
	}, nil
}
