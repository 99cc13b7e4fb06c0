// Package repository contains the MySQL-backed persistence layer. It
// implements booking.Store with raw SQL over database/sql. All
// timestamps are stored as UTC DATETIMEs; the driver is opened with
// parseTime=true&loc=UTC so they scan directly into time.Time.
package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/iliyamo/workspace-booking/internal/booking"
    "github.com/iliyamo/workspace-booking/internal/model"
)

// BookingRepo provides CRUD operations for bookings and their outbox
// events. The overlap re-check, the booking write and the outbox
// insert run inside one transaction, so the database stays the final
// arbiter of the non-overlap invariant even when several processes
// write to it.
//
// Expected schema:
//
//  CREATE TABLE bookings (
//      id           CHAR(36) PRIMARY KEY,
//      user_id      CHAR(36) NOT NULL,
//      workspace_id CHAR(36) NOT NULL,
//      start_time   DATETIME NOT NULL,
//      end_time     DATETIME NOT NULL,
//      status       ENUM('PENDING','CONFIRMED','CANCELLED') NOT NULL DEFAULT 'PENDING',
//      created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
//      updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
//      KEY idx_bookings_workspace_time (workspace_id, start_time, end_time)
//  );
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying sql.DB for callers that need to begin
// transactions spanning multiple repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, user_id, workspace_id, start_time, end_time, status, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
    var b model.Booking
    err := row.Scan(&b.ID, &b.UserID, &b.WorkspaceID, &b.StartTime, &b.EndTime, &b.Status, &b.CreatedAt, &b.UpdatedAt)
    if err != nil {
        return nil, err
    }
    b.StartTime = b.StartTime.UTC()
    b.EndTime = b.EndTime.UTC()
    b.CreatedAt = b.CreatedAt.UTC()
    b.UpdatedAt = b.UpdatedAt.UTC()
    return &b, nil
}

// GetByID retrieves a booking by its ID. It returns booking.ErrNotFound
// when there is no matching row.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
    b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, booking.ErrNotFound
        }
        return nil, err
    }
    return b, nil
}

// List returns bookings matching the filter ordered by start time
// ascending. From/To bound by range intersection: a booking matches
// when it ends on or after From and starts on or before To.
func (r *BookingRepo) List(ctx context.Context, f booking.ListFilter) ([]model.Booking, error) {
    where := []string{}
    args := []any{}
    if f.UserID != "" {
        where = append(where, "user_id = ?")
        args = append(args, f.UserID)
    }
    if f.WorkspaceID != "" {
        where = append(where, "workspace_id = ?")
        args = append(args, f.WorkspaceID)
    }
    if f.From != nil {
        where = append(where, "end_time >= ?")
        args = append(args, f.From.UTC())
    }
    if f.To != nil {
        where = append(where, "start_time <= ?")
        args = append(args, f.To.UTC())
    }
    cond := "1=1"
    if len(where) > 0 {
        cond = strings.Join(where, " AND ")
    }
    q := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + cond + ` ORDER BY start_time ASC`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Booking, 0)
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// HasOverlap reports whether [start, end) collides with an active
// booking on the workspace, optionally excluding one booking ID. The
// predicate is start < existing.end AND existing.start < end; only
// PENDING and CONFIRMED rows participate.
func (r *BookingRepo) HasOverlap(ctx context.Context, workspaceID string, start, end time.Time, excludeID string) (bool, error) {
    return hasOverlap(ctx, r.db, workspaceID, start, end, excludeID, false)
}

// queryer lets the overlap check run on either the pool or an open
// transaction.
type queryer interface {
    QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func hasOverlap(ctx context.Context, q queryer, workspaceID string, start, end time.Time, excludeID string, forUpdate bool) (bool, error) {
    query := `SELECT EXISTS (
                 SELECT 1 FROM bookings
                 WHERE workspace_id = ?
                   AND status IN ('PENDING','CONFIRMED')
                   AND start_time < ? AND end_time > ?`
    args := []any{workspaceID, end.UTC(), start.UTC()}
    if excludeID != "" {
        query += ` AND id <> ?`
        args = append(args, excludeID)
    }
    query += `)`
    if forUpdate {
        // Locking read inside a transaction so two racing database
        // writers serialize on the workspace's rows.
        query = strings.TrimSuffix(query, `)`) + ` FOR UPDATE)`
    }
    var exists bool
    if err := q.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
        return false, err
    }
    return exists, nil
}

// Create inserts a booking and its outbox event in one transaction.
// For active bookings the overlap check runs first on the same
// transaction and a collision aborts with booking.ErrSlotConflict. On
// success the database-assigned timestamps are populated on b.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking, ev *model.OutboxEvent) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if b.Active() {
        conflict, err := hasOverlap(ctx, tx, b.WorkspaceID, b.StartTime, b.EndTime, "", true)
        if err != nil {
            return err
        }
        if conflict {
            return booking.ErrSlotConflict
        }
    }

    const ins = `INSERT INTO bookings (id, user_id, workspace_id, start_time, end_time, status) VALUES (?, ?, ?, ?, ?, ?)`
    if _, err := tx.ExecContext(ctx, ins, b.ID, b.UserID, b.WorkspaceID, b.StartTime.UTC(), b.EndTime.UTC(), b.Status); err != nil {
        return err
    }
    if err := insertOutboxTx(ctx, tx, ev); err != nil {
        return err
    }
    // Query back the full row to populate timestamps and defaults.
    const sel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
    got, err := scanBooking(tx.QueryRowContext(ctx, sel, b.ID))
    if err != nil {
        return err
    }
    *b = *got
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// Update persists changed fields of an existing booking and, when ev
// is non-nil, its outbox event, all in one transaction. With
// checkOverlap set the overlap check re-runs excluding the booking
// itself and a collision aborts with booking.ErrSlotConflict.
func (r *BookingRepo) Update(ctx context.Context, b *model.Booking, ev *model.OutboxEvent, checkOverlap bool) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if checkOverlap && b.Active() {
        conflict, err := hasOverlap(ctx, tx, b.WorkspaceID, b.StartTime, b.EndTime, b.ID, true)
        if err != nil {
            return err
        }
        if conflict {
            return booking.ErrSlotConflict
        }
    }

    const upd = `UPDATE bookings SET start_time = ?, end_time = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
    res, err := tx.ExecContext(ctx, upd, b.StartTime.UTC(), b.EndTime.UTC(), b.Status, b.ID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        // RowsAffected is zero both for a missing row and for a
        // no-change update; distinguish with an existence probe.
        var one int
        if err := tx.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ? LIMIT 1`, b.ID).Scan(&one); err != nil {
            if errors.Is(err, sql.ErrNoRows) {
                return booking.ErrNotFound
            }
            return err
        }
    }
    if err := insertOutboxTx(ctx, tx, ev); err != nil {
        return err
    }
    const sel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
    got, err := scanBooking(tx.QueryRowContext(ctx, sel, b.ID))
    if err != nil {
        return err
    }
    *b = *got
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// Delete removes a booking row. It returns booking.ErrNotFound when no
// row matched.
func (r *BookingRepo) Delete(ctx context.Context, id string) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return booking.ErrNotFound
    }
    return nil
}
