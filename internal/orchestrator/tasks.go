// Package orchestrator drives the post-commit saga: outbox events
// written by the booking lifecycle are handed to a Redis-backed task
// queue and a worker fans each one out to the payment, notification
// and reporting collaborators. The booking is the system of record;
// everything here is advisory and never feeds back into the booking's
// committed state.
package orchestrator

import (
    "encoding/json"

    "github.com/hibiken/asynq"

    "github.com/iliyamo/workspace-booking/internal/model"
)

// TypeBookingCommitted is the task type for a committed booking
// transition.
const TypeBookingCommitted = "booking:committed"

// QueueName is the asynq queue saga tasks run on.
const QueueName = "bookings"

// BookingCommittedPayload is the task body. EventID doubles as the
// idempotency key end to end: it is the asynq task ID (one task per
// outbox event, ever) and it travels to the payment collaborator so
// redeliveries cannot open duplicate payments.
type BookingCommittedPayload struct {
    EventID   string `json:"event_id"`
    BookingID string `json:"booking_id"`
    Kind      string `json:"kind"`
}

// NewBookingCommittedTask packs an outbox event into an asynq task.
func NewBookingCommittedTask(ev model.OutboxEvent) (*asynq.Task, error) {
    b, err := json.Marshal(BookingCommittedPayload{
        EventID:   ev.ID,
        BookingID: ev.BookingID,
        Kind:      ev.Kind,
    })
    if err != nil {
        return nil, err
    }
    return asynq.NewTask(TypeBookingCommitted, b), nil
}
