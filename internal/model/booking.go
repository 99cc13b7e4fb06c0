package model

import "time"

// Booking statuses as stored in the `bookings.status` column.  CANCELLED
// is terminal; PENDING and CONFIRMED bookings count toward the
// non-overlap invariant of their workspace.
const (
    StatusPending   = "PENDING"
    StatusConfirmed = "CONFIRMED"
    StatusCancelled = "CANCELLED"
)

// ValidStatus reports whether s is one of the known booking statuses.
func ValidStatus(s string) bool {
    switch s {
    case StatusPending, StatusConfirmed, StatusCancelled:
        return true
    }
    return false
}

// Booking records a user's time-bounded reservation of a workspace.
// The interval [StartTime, EndTime) is half-open: a booking ending at
// 10:00 does not collide with one starting at 10:00.  For any
// workspace, bookings whose status is PENDING or CONFIRMED never
// overlap each other in time.
//
// Fields:
//  ID          – UUID primary key, assigned at creation.
//  UserID      – user who requested the booking (immutable).
//  WorkspaceID – workspace being reserved (immutable).
//  StartTime   – inclusive start instant, stored in UTC.
//  EndTime     – exclusive end instant, stored in UTC (after StartTime).
//  Status      – PENDING, CONFIRMED or CANCELLED.
//  CreatedAt   – creation timestamp (server-assigned).
//  UpdatedAt   – last update timestamp (server-assigned).
type Booking struct {
    ID          string    `json:"id"`           // bookings.id
    UserID      string    `json:"user_id"`      // bookings.user_id
    WorkspaceID string    `json:"workspace_id"` // bookings.workspace_id
    StartTime   time.Time `json:"start_time"`   // bookings.start_time
    EndTime     time.Time `json:"end_time"`     // bookings.end_time
    Status      string    `json:"status"`       // bookings.status
    CreatedAt   time.Time `json:"created_at"`   // bookings.created_at
    UpdatedAt   time.Time `json:"updated_at"`   // bookings.updated_at
}

// Active reports whether the booking counts toward the overlap
// invariant, i.e. its status is PENDING or CONFIRMED.
func (b *Booking) Active() bool {
    return b.Status == StatusPending || b.Status == StatusConfirmed
}
