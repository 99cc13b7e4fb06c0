// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingEvent is published for every committed booking transition.
// It carries enough information for downstream consumers to log,
// audit, or trigger analytics without querying the primary database.
type BookingEvent struct {
    EventID     string `json:"event_id"`
    BookingID   string `json:"booking_id"`
    UserID      string `json:"user_id"`
    WorkspaceID string `json:"workspace_id"`
    Kind        string `json:"kind"`
    StartTime   string `json:"start_time"`
    EndTime     string `json:"end_time"`
    Status      string `json:"status"`
    OccurredAt  string `json:"occurred_at"`
}
