package service

import (
	"context"
	"sync"
)

// sessionLocks entrega un candado por sesión y lo libera cuando nadie lo usa.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sem  chan struct{}
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

// Lock bloquea la sesión y devuelve la función que la libera. Si ctx termina durante la espera
// devuelve ctx.Err() sin tomar el candado.
func (l *sessionLocks) Lock(ctx context.Context, sessionID string) (func(), error) {
	l.mu.Lock()
	lk, ok := l.locks[sessionID]
	if !ok {
		lk = &sessionLock{sem: make(chan struct{}, 1)}
		l.locks[sessionID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(sessionID, lk)
		return nil, ctx.Err()
	}

	return func() {
		<-lk.sem
		l.release(sessionID, lk)
	}, nil
}

func (l *sessionLocks) release(sessionID string, lk *sessionLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, sessionID)
	}
}

func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
