package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/workspace-booking/internal/booking"
    "github.com/iliyamo/workspace-booking/internal/model"
)

// Outbox persistence. Events are inserted in the same transaction as
// the booking write they describe and consumed by the dispatcher.
//
// Expected schema:
//
//  CREATE TABLE outbox_events (
//      id            CHAR(36) PRIMARY KEY,
//      booking_id    CHAR(36) NOT NULL,
//      kind          VARCHAR(64) NOT NULL,
//      dispatched_at DATETIME NULL,
//      created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
//      KEY idx_outbox_pending (dispatched_at, created_at)
//  );

// insertOutboxTx writes an outbox event within the caller's
// transaction. A nil event is a no-op.
func insertOutboxTx(ctx context.Context, tx *sql.Tx, ev *model.OutboxEvent) error {
    if ev == nil {
        return nil
    }
    const q = `INSERT INTO outbox_events (id, booking_id, kind) VALUES (?, ?, ?)`
    _, err := tx.ExecContext(ctx, q, ev.ID, ev.BookingID, ev.Kind)
    return err
}

// PendingEvents returns up to limit outbox events that have not been
// dispatched yet, oldest first.
func (r *BookingRepo) PendingEvents(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
    const q = `SELECT id, booking_id, kind, dispatched_at, created_at
               FROM outbox_events
               WHERE dispatched_at IS NULL
               ORDER BY created_at ASC
               LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.OutboxEvent, 0, limit)
    for rows.Next() {
        var ev model.OutboxEvent
        var dispatched sql.NullTime
        if err := rows.Scan(&ev.ID, &ev.BookingID, &ev.Kind, &dispatched, &ev.CreatedAt); err != nil {
            return nil, err
        }
        if dispatched.Valid {
            t := dispatched.Time.UTC()
            ev.DispatchedAt = &t
        }
        ev.CreatedAt = ev.CreatedAt.UTC()
        out = append(out, ev)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// MarkDispatched stamps the event as handed to the task queue. It
// returns booking.ErrNotFound when the event does not exist.
func (r *BookingRepo) MarkDispatched(ctx context.Context, eventID string) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE outbox_events SET dispatched_at = ? WHERE id = ? AND dispatched_at IS NULL`,
        time.Now().UTC(), eventID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        // Already dispatched or unknown; only the latter is an error.
        var one int
        err := r.db.QueryRowContext(ctx, `SELECT 1 FROM outbox_events WHERE id = ? LIMIT 1`, eventID).Scan(&one)
        if errors.Is(err, sql.ErrNoRows) {
            return booking.ErrNotFound
        }
        return err
    }
    return nil
}
