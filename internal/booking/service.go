package booking

import (
    "context"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/workspace-booking/internal/model"
)

// Service is the booking lifecycle state machine. It owns every write
// to the Store and enforces the ordering the invariant needs: interval
// validation first, then the gateway existence checks (outside any
// lock, since they block on the network), then the per-workspace
// exclusive section around the overlap check and the write. Each
// committed transition leaves exactly one outbox event behind in the
// same atomic unit; the orchestrator picks those up on its own
// schedule, never on the caller's critical path.
type Service struct {
    store   Store
    gateway Gateway
    locks   *ResourceLocker
}

// NewService constructs a Service. Both dependencies must be non-nil.
func NewService(store Store, gateway Gateway) *Service {
    if store == nil || gateway == nil {
        panic("nil dependency passed to booking.NewService")
    }
    return &Service{store: store, gateway: gateway, locks: NewResourceLocker()}
}

// Create admits a new booking for the workspace. The interval must be
// non-empty, the user and workspace must pass the validation gateway,
// and the interval must not overlap any active booking on the
// workspace. status may be empty, which defaults to PENDING. On
// success the booking is persisted together with a booking.created
// outbox event and returned.
func (s *Service) Create(ctx context.Context, userID, workspaceID string, start, end time.Time, status string) (*model.Booking, error) {
    if !start.Before(end) {
        return nil, ErrInvalidInterval
    }
    if err := s.gateway.EnsureUserExists(ctx, userID); err != nil {
        return nil, err
    }
    if err := s.gateway.EnsureWorkspaceExists(ctx, workspaceID); err != nil {
        return nil, err
    }
    if status == "" {
        status = model.StatusPending
    }

    b := &model.Booking{
        ID:          uuid.NewString(),
        UserID:      userID,
        WorkspaceID: workspaceID,
        StartTime:   start.UTC(),
        EndTime:     end.UTC(),
        Status:      status,
    }
    ev := newEvent(b.ID, model.EventBookingCreated)

    s.locks.Lock(workspaceID)
    defer s.locks.Unlock(workspaceID)
    if err := s.store.Create(ctx, b, ev); err != nil {
        return nil, err
    }
    return b, nil
}

// Get returns the booking with the given ID or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*model.Booking, error) {
    return s.store.GetByID(ctx, id)
}

// List returns bookings matching the filter ordered by start time.
func (s *Service) List(ctx context.Context, f ListFilter) ([]model.Booking, error) {
    return s.store.List(ctx, f)
}

// Update reschedules a booking and/or moves its status. Nil fields are
// left untouched. An interval change re-validates the non-overlap
// invariant against all other active bookings of the workspace under
// the workspace's exclusive section; a pure status change does not.
// Cancelled bookings cannot be rescheduled or revived. When no field
// actually changes the current record is returned without a write.
func (s *Service) Update(ctx context.Context, id string, start, end *time.Time, status *string) (*model.Booking, error) {
    // Read once without the lock just to learn the workspace; the
    // authoritative read happens again inside the exclusive section.
    b, err := s.store.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }

    s.locks.Lock(b.WorkspaceID)
    defer s.locks.Unlock(b.WorkspaceID)

    b, err = s.store.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }

    newStart, newEnd := b.StartTime, b.EndTime
    if start != nil {
        newStart = start.UTC()
    }
    if end != nil {
        newEnd = end.UTC()
    }
    intervalChanged := !newStart.Equal(b.StartTime) || !newEnd.Equal(b.EndTime)
    if intervalChanged && !newStart.Before(newEnd) {
        return nil, ErrInvalidInterval
    }

    newStatus := b.Status
    if status != nil {
        newStatus = *status
    }
    statusChanged := newStatus != b.Status

    if b.Status == model.StatusCancelled && (intervalChanged || statusChanged) {
        return nil, ErrAlreadyCancelled
    }
    if !intervalChanged && !statusChanged {
        return b, nil
    }

    b.StartTime = newStart
    b.EndTime = newEnd
    b.Status = newStatus

    var kind string
    switch {
    case statusChanged && newStatus == model.StatusCancelled:
        kind = model.EventBookingCancelled
    case statusChanged && newStatus == model.StatusConfirmed:
        kind = model.EventBookingConfirmed
    case intervalChanged:
        kind = model.EventBookingRescheduled
    default:
        // Status moved back to PENDING with the interval untouched.
        kind = model.EventBookingPending
    }

    if err := s.store.Update(ctx, b, newEvent(b.ID, kind), intervalChanged); err != nil {
        return nil, err
    }
    return b, nil
}

// Confirm moves a PENDING booking to CONFIRMED. Confirming an already
// confirmed booking is a no-op returning the current record; a
// cancelled booking cannot be confirmed. The read and the write share
// the workspace's exclusive section: the store's Update rewrites the
// full row, so a read taken outside the section could race a
// reschedule and write a stale interval back as an active booking.
func (s *Service) Confirm(ctx context.Context, id string) (*model.Booking, error) {
    b, err := s.store.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }

    s.locks.Lock(b.WorkspaceID)
    defer s.locks.Unlock(b.WorkspaceID)

    b, err = s.store.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if b.Status == model.StatusCancelled {
        return nil, ErrAlreadyCancelled
    }
    if b.Status == model.StatusConfirmed {
        return b, nil
    }
    b.Status = model.StatusConfirmed
    if err := s.store.Update(ctx, b, newEvent(b.ID, model.EventBookingConfirmed), false); err != nil {
        return nil, err
    }
    return b, nil
}

// Cancel moves a booking to the terminal CANCELLED status, freeing its
// interval. Cancelling an already cancelled booking is a no-op
// returning the current record; only a missing booking is an error.
// Like Confirm, the read-modify-write runs inside the workspace's
// exclusive section so it cannot write back an interval a concurrent
// reschedule has already moved.
func (s *Service) Cancel(ctx context.Context, id string) (*model.Booking, error) {
    b, err := s.store.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }

    s.locks.Lock(b.WorkspaceID)
    defer s.locks.Unlock(b.WorkspaceID)

    b, err = s.store.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if b.Status == model.StatusCancelled {
        return b, nil
    }
    b.Status = model.StatusCancelled
    if err := s.store.Update(ctx, b, newEvent(b.ID, model.EventBookingCancelled), false); err != nil {
        return nil, err
    }
    return b, nil
}

// Delete removes the booking record entirely. This is administrative
// cleanup outside the invariant's concern and emits no event.
func (s *Service) Delete(ctx context.Context, id string) error {
    return s.store.Delete(ctx, id)
}

func newEvent(bookingID, kind string) *model.OutboxEvent {
    return &model.OutboxEvent{ID: uuid.NewString(), BookingID: bookingID, Kind: kind}
}
