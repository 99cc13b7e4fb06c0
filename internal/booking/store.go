package booking

import (
    "context"
    "time"

    "github.com/iliyamo/workspace-booking/internal/model"
)

// ListFilter narrows List results. Zero values mean "no constraint".
// From and To use range-intersection semantics: a booking matches when
// it ends on or after From and starts on or before To. This is looser
// than the strict overlap predicate used for conflict detection.
type ListFilter struct {
    UserID      string
    WorkspaceID string
    From        *time.Time
    To          *time.Time
}

// Store is the persistence contract for bookings and their outbox
// events. The lifecycle service is its only writer. Create and Update
// are atomic units: the overlap re-check, the booking write and the
// outbox event insert all commit or fail together, so no interleaving
// of two writers can leave two active overlapping bookings behind.
type Store interface {
    // GetByID returns the booking with the given ID or ErrNotFound.
    GetByID(ctx context.Context, id string) (*model.Booking, error)

    // List returns bookings matching the filter ordered by start time
    // ascending. An empty result is a nil error with an empty slice.
    List(ctx context.Context, f ListFilter) ([]model.Booking, error)

    // HasOverlap reports whether the half-open interval [start, end)
    // collides with any active booking on the workspace. When
    // excludeID is non-empty that booking is left out of the
    // comparison set, which lets a reschedule overlap itself.
    HasOverlap(ctx context.Context, workspaceID string, start, end time.Time, excludeID string) (bool, error)

    // Create persists a new booking together with its outbox event.
    // When the booking is active it returns ErrSlotConflict if the
    // interval overlaps an existing active booking on the same
    // workspace; the check and the insert share one atomic unit.
    Create(ctx context.Context, b *model.Booking, ev *model.OutboxEvent) error

    // Update persists changed fields of an existing booking and, when
    // ev is non-nil, its outbox event. With checkOverlap set it
    // re-runs the overlap check excluding the booking itself and
    // returns ErrSlotConflict on collision. Returns ErrNotFound when
    // the booking does not exist.
    Update(ctx context.Context, b *model.Booking, ev *model.OutboxEvent, checkOverlap bool) error

    // Delete removes a booking record entirely. This is an
    // administrative operation; it returns ErrNotFound when no such
    // booking exists.
    Delete(ctx context.Context, id string) error

    // PendingEvents returns up to limit outbox events that have not
    // been handed to the task queue yet, oldest first.
    PendingEvents(ctx context.Context, limit int) ([]model.OutboxEvent, error)

    // MarkDispatched records that the event was handed to the task
    // queue so it is not enqueued again.
    MarkDispatched(ctx context.Context, eventID string) error
}

// Gateway performs the synchronous existence checks a booking must
// pass before it is admitted. Implementations fail fast: one bounded
// attempt per check, no retries, and they never hold any booking lock
// while waiting on the network.
type Gateway interface {
    // EnsureUserExists returns nil when the user exists,
    // ErrUserNotFound when it does not, and ErrDependencyUnavailable
    // when the collaborator cannot answer.
    EnsureUserExists(ctx context.Context, userID string) error

    // EnsureWorkspaceExists returns nil when the workspace exists,
    // ErrWorkspaceNotFound when it does not, and
    // ErrDependencyUnavailable when the collaborator cannot answer.
    EnsureWorkspaceExists(ctx context.Context, workspaceID string) error
}

// Overlaps is the interval collision predicate shared by every store
// implementation: two half-open intervals [s1,e1) and [s2,e2) overlap
// iff s1 < e2 && s2 < e1. Touching boundaries do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
    return s1.Before(e2) && s2.Before(e1)
}
