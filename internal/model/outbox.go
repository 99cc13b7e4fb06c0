package model

import "time"

// Outbox event kinds.  One event is written per committed booking
// transition, in the same transaction as the booking write itself.
const (
    EventBookingCreated     = "booking.created"
    EventBookingConfirmed   = "booking.confirmed"
    EventBookingCancelled   = "booking.cancelled"
    EventBookingRescheduled = "booking.rescheduled"
    EventBookingPending     = "booking.pending"
)

// OutboxEvent is a pending orchestration trigger persisted alongside the
// booking it describes.  The dispatcher hands events to the task queue
// exactly once per event ID; delivery retries past that point belong to
// the worker and its collaborators.
//
// Fields:
//  ID           – UUID primary key, doubles as the task idempotency key.
//  BookingID    – booking whose transition produced the event.
//  Kind         – one of the Event* constants above.
//  DispatchedAt – when the dispatcher enqueued the event (null while pending).
//  CreatedAt    – creation timestamp.
type OutboxEvent struct {
    ID           string     // outbox_events.id
    BookingID    string     // outbox_events.booking_id
    Kind         string     // outbox_events.kind
    DispatchedAt *time.Time // outbox_events.dispatched_at (nullable)
    CreatedAt    time.Time  // outbox_events.created_at
}
