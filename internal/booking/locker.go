package booking

import "sync"

// ResourceLocker serializes check-then-write sequences per workspace.
// Requests for different workspaces proceed concurrently; two
// concurrent creates or reschedules on the same workspace take turns,
// so the overlap check each performs always sees the other's committed
// write. Entries are reference counted and removed again once the last
// holder releases, keeping the map bounded by the number of workspaces
// currently in flight.
type ResourceLocker struct {
    mu    sync.Mutex
    locks map[string]*resourceLock
}

type resourceLock struct {
    mu   sync.Mutex
    refs int
}

// NewResourceLocker returns an empty locker.
func NewResourceLocker() *ResourceLocker {
    return &ResourceLocker{locks: make(map[string]*resourceLock)}
}

// Lock acquires the exclusive section for the given workspace,
// blocking until any current holder releases it.
func (l *ResourceLocker) Lock(workspaceID string) {
    l.mu.Lock()
    rl, ok := l.locks[workspaceID]
    if !ok {
        rl = &resourceLock{}
        l.locks[workspaceID] = rl
    }
    rl.refs++
    l.mu.Unlock()

    rl.mu.Lock()
}

// Unlock releases the workspace's exclusive section. It must be called
// exactly once per Lock, by the goroutine that acquired it.
func (l *ResourceLocker) Unlock(workspaceID string) {
    l.mu.Lock()
    rl, ok := l.locks[workspaceID]
    if !ok {
        l.mu.Unlock()
        panic("booking: unlock of unheld workspace lock " + workspaceID)
    }
    rl.refs--
    if rl.refs == 0 {
        delete(l.locks, workspaceID)
    }
    l.mu.Unlock()

    rl.mu.Unlock()
}
