package booking

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/iliyamo/workspace-booking/internal/model"
)

// MemoryStore is an in-memory Store used by tests and by environments
// without a database. A single mutex makes every operation an atomic
// unit, which is exactly the guarantee the interface demands from the
// MySQL repository's transactions.
type MemoryStore struct {
    mu       sync.Mutex
    bookings map[string]model.Booking
    events   []model.OutboxEvent
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
    return &MemoryStore{bookings: make(map[string]model.Booking)}
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*model.Booking, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, ok := s.bookings[id]
    if !ok {
        return nil, ErrNotFound
    }
    return &b, nil
}

func (s *MemoryStore) List(ctx context.Context, f ListFilter) ([]model.Booking, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := make([]model.Booking, 0)
    for _, b := range s.bookings {
        if f.UserID != "" && b.UserID != f.UserID {
            continue
        }
        if f.WorkspaceID != "" && b.WorkspaceID != f.WorkspaceID {
            continue
        }
        // Range intersection: ends on/after From, starts on/before To.
        if f.From != nil && b.EndTime.Before(*f.From) {
            continue
        }
        if f.To != nil && b.StartTime.After(*f.To) {
            continue
        }
        out = append(out, b)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
    return out, nil
}

func (s *MemoryStore) HasOverlap(ctx context.Context, workspaceID string, start, end time.Time, excludeID string) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.overlapLocked(workspaceID, start, end, excludeID), nil
}

// overlapLocked scans active bookings of the workspace. Callers must
// hold s.mu.
func (s *MemoryStore) overlapLocked(workspaceID string, start, end time.Time, excludeID string) bool {
    for _, b := range s.bookings {
        if b.WorkspaceID != workspaceID || b.ID == excludeID || !b.Active() {
            continue
        }
        if Overlaps(start, end, b.StartTime, b.EndTime) {
            return true
        }
    }
    return false
}

func (s *MemoryStore) Create(ctx context.Context, b *model.Booking, ev *model.OutboxEvent) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if b.Active() && s.overlapLocked(b.WorkspaceID, b.StartTime, b.EndTime, "") {
        return ErrSlotConflict
    }
    now := time.Now().UTC()
    b.CreatedAt = now
    b.UpdatedAt = now
    s.bookings[b.ID] = *b
    s.appendEventLocked(ev, now)
    return nil
}

func (s *MemoryStore) Update(ctx context.Context, b *model.Booking, ev *model.OutboxEvent, checkOverlap bool) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    cur, ok := s.bookings[b.ID]
    if !ok {
        return ErrNotFound
    }
    if checkOverlap && b.Active() && s.overlapLocked(b.WorkspaceID, b.StartTime, b.EndTime, b.ID) {
        return ErrSlotConflict
    }
    now := time.Now().UTC()
    b.CreatedAt = cur.CreatedAt
    b.UpdatedAt = now
    s.bookings[b.ID] = *b
    s.appendEventLocked(ev, now)
    return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.bookings[id]; !ok {
        return ErrNotFound
    }
    delete(s.bookings, id)
    return nil
}

func (s *MemoryStore) appendEventLocked(ev *model.OutboxEvent, now time.Time) {
    if ev == nil {
        return
    }
    ev.CreatedAt = now
    s.events = append(s.events, *ev)
}

func (s *MemoryStore) PendingEvents(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := make([]model.OutboxEvent, 0)
    for _, ev := range s.events {
        if ev.DispatchedAt != nil {
            continue
        }
        out = append(out, ev)
        if len(out) == limit {
            break
        }
    }
    return out, nil
}

func (s *MemoryStore) MarkDispatched(ctx context.Context, eventID string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    for i := range s.events {
        if s.events[i].ID == eventID {
            now := time.Now().UTC()
            s.events[i].DispatchedAt = &now
            return nil
        }
    }
    return ErrNotFound
}
