package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var errLockWait = errors.New("gave up waiting for invoice lock")

// invoiceLocks serializes ledger mutations per invoice inside this process.
// The database row lock taken in the same critical section covers other
// processes.
type invoiceLocks struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	sem  chan struct{}
	refs int
}

func newInvoiceLocks() *invoiceLocks {
	return &invoiceLocks{entries: make(map[uuid.UUID]*lockEntry)}
}

// Lock blocks until the invoice is free or ctx is done. The returned func
// releases the lock and must be called exactly once.
func (l *invoiceLocks) Lock(ctx context.Context, id uuid.UUID) (func(), error) {
	l.mu.Lock()
	entry, ok := l.entries[id]
	if !ok {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		l.entries[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
		return func() {
			<-entry.sem
			l.release(id, entry)
		}, nil
	case <-ctx.Done():
		l.release(id, entry)
		return nil, fmt.Errorf("%w: %v", errLockWait, ctx.Err())
	}
}

func (l *invoiceLocks) release(id uuid.UUID, entry *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, id)
	}
}

func (l *invoiceLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
