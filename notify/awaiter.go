package notify

import (
	"context"
	"sync"
	"time"
)

var _ Navigator = (*Awaiter)(nil)

// Awaiter forwards navigations to another Navigator and lets a short-lived
// process wait for the first one, e.g. a delayed redirect after the session
// expired.
type Awaiter struct {
	next Navigator
	once sync.Once
	done chan struct{}
}

func NewAwaiter(next Navigator) *Awaiter {
	return &Awaiter{next: next, done: make(chan struct{})}
}

func (a *Awaiter) Navigate(ctx context.Context, path string) {
	a.next.Navigate(ctx, path)
	a.once.Do(func() { close(a.done) })
}

// Wait blocks until the first navigation has been delivered or timeout
// passes, and reports whether it was delivered.
func (a *Awaiter) Wait(timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-a.done:
		return true
	case <-t.C:
		return false
	}
}
