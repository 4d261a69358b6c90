package lib

import (
	"context"
	"errors"
	"time"
)

var ErrTimeout = errors.New("lock timeout")

// Mutex is a channel-based mutex that supports timeouts and context
// cancellation while waiting for the lock. Unlock of an unlocked Mutex is a
// no-op rather than a panic.
type Mutex struct {
	ch chan struct{}
}

func NewMutex() *Mutex {
	return &Mutex{ch: make(chan struct{}, 1)}
}

func (m *Mutex) Lock() {
	m.ch <- struct{}{}
}

func (m *Mutex) LockTimeout(d time.Duration) error {
	if d == 0 {
		select {
		case m.ch <- struct{}{}:
			return nil
		default:
			return ErrTimeout
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case m.ch <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrTimeout
	}
}

func (m *Mutex) LockCtx(ctx context.Context) error {
	select {
	case m.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mutex) Unlock() {
	select {
	case <-m.ch:
	default:
	}
}
