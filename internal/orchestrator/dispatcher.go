package orchestrator

import (
    "context"
    "errors"
    "time"

    "github.com/hibiken/asynq"
    "go.uber.org/zap"

    "github.com/iliyamo/workspace-booking/internal/booking"
    "github.com/iliyamo/workspace-booking/internal/logger"
)

// Enqueuer is the slice of asynq.Client the dispatcher needs.
type Enqueuer interface {
    EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher polls the outbox and hands each pending event to the
// task queue. Using the event ID as the task ID makes the handoff
// idempotent: if the process dies between enqueue and MarkDispatched,
// the retried enqueue is rejected as a duplicate and the event is
// simply marked dispatched on the next pass. Completed tasks are
// retained so their IDs stay taken even when the worker finishes
// before the retry. Events therefore reach the queue at most once
// each, while surviving process restarts.
type Dispatcher struct {
    store    booking.Store
    enqueuer Enqueuer
    interval time.Duration
    batch    int
}

// NewDispatcher builds a Dispatcher polling at the given interval
// (zero falls back to one second) in batches of up to 50 events.
func NewDispatcher(store booking.Store, enqueuer Enqueuer, interval time.Duration) *Dispatcher {
    if interval <= 0 {
        interval = time.Second
    }
    return &Dispatcher{store: store, enqueuer: enqueuer, interval: interval, batch: 50}
}

// Run polls until ctx is cancelled. Intended to run on its own
// goroutine.
func (d *Dispatcher) Run(ctx context.Context) {
    ticker := time.NewTicker(d.interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            d.DispatchPending(ctx)
        }
    }
}

// DispatchPending performs one outbox pass. Failures are logged and
// left pending for the next pass.
func (d *Dispatcher) DispatchPending(ctx context.Context) {
    events, err := d.store.PendingEvents(ctx, d.batch)
    if err != nil {
        logger.Get().Error("outbox poll failed", zap.Error(err))
        return
    }
    for _, ev := range events {
        task, err := NewBookingCommittedTask(ev)
        if err != nil {
            logger.Get().Error("outbox event marshal failed",
                zap.String("event_id", ev.ID), zap.Error(err))
            continue
        }
        // Retention keeps the completed task, and with it the task ID,
        // around after the worker finishes. Without it a crash between
        // enqueue and MarkDispatched could re-enqueue the event once
        // the first task completes and frees its ID.
        _, err = d.enqueuer.EnqueueContext(ctx, task,
            asynq.TaskID(ev.ID),
            asynq.Queue(QueueName),
            asynq.MaxRetry(10),
            asynq.Timeout(30*time.Second),
            asynq.Retention(24*time.Hour),
        )
        if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) && !errors.Is(err, asynq.ErrDuplicateTask) {
            logger.Get().Error("outbox enqueue failed",
                zap.String("event_id", ev.ID), zap.String("booking_id", ev.BookingID), zap.Error(err))
            continue
        }
        if err := d.store.MarkDispatched(ctx, ev.ID); err != nil {
            logger.Get().Error("outbox mark dispatched failed",
                zap.String("event_id", ev.ID), zap.Error(err))
        }
    }
}
