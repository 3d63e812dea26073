package command

import (
	"context"
	"sync"
)

// domainLocks hands out one lock per domain. Entries are reference counted
// and removed once the last holder or waiter leaves.
type domainLocks struct {
	mu    sync.Mutex
	locks map[string]*domainLock
}

type domainLock struct {
	ch   chan struct{} // holds a token while locked
	refs int
}

func newDomainLocks() *domainLocks {
	return &domainLocks{locks: make(map[string]*domainLock)}
}

// Lock blocks until domain is free or ctx is done. On success it returns the
// matching unlock func; otherwise ctx.Err().
func (d *domainLocks) Lock(ctx context.Context, domain string) (func(), error) {
	d.mu.Lock()
	l, ok := d.locks[domain]
	if !ok {
		l = &domainLock{ch: make(chan struct{}, 1)}
		d.locks[domain] = l
	}
	l.refs++
	d.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		d.release(domain, l)
		return nil, ctx.Err()
	}

	return func() {
		<-l.ch
		d.release(domain, l)
	}, nil
}

func (d *domainLocks) release(domain string, l *domainLock) {
	d.mu.Lock()
	defer d.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(d.locks, domain)
	}
}

func (d *domainLocks) size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.locks)
}
