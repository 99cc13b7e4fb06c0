package orchestrator

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "math"
    "time"

    "github.com/hibiken/asynq"
    "go.uber.org/zap"

    "github.com/iliyamo/workspace-booking/internal/booking"
    "github.com/iliyamo/workspace-booking/internal/logger"
    "github.com/iliyamo/workspace-booking/internal/model"
    "github.com/iliyamo/workspace-booking/internal/queue"
)

// PaymentClient requests payment initiation for a booking.
type PaymentClient interface {
    InitiatePayment(ctx context.Context, bookingID string, amountCents int64, currency, idempotencyKey string) error
}

// NotificationClient sends a user-facing message about a booking event.
type NotificationClient interface {
    SendNotification(ctx context.Context, userID, bookingID, message string) error
}

// ReportClient records an audit entry for a booking event.
type ReportClient interface {
    RecordReport(ctx context.Context, title, description string) error
}

// EventPublisher pushes the event onto the broker for the audit log
// consumer. May be nil when no broker is configured.
type EventPublisher func(ctx context.Context, ev queue.BookingEvent) error

// Worker executes the saga for one committed booking transition.
// Payment runs first: its failure fails the task so asynq redelivers
// it, with the event ID shielding the collaborator from duplicates.
// Notification, report and broker publish failures are logged with
// enough context to replay manually and otherwise swallowed; none of
// the steps touches the booking itself.
type Worker struct {
    store           booking.Store
    payments        PaymentClient
    notifier        NotificationClient
    reporter        ReportClient
    publish         EventPublisher
    hourlyRateCents int64
}

// NewWorker wires the saga worker. hourlyRateCents prices a booking's
// duration for payment initiation.
func NewWorker(store booking.Store, payments PaymentClient, notifier NotificationClient, reporter ReportClient, publish EventPublisher, hourlyRateCents int64) *Worker {
    return &Worker{
        store:           store,
        payments:        payments,
        notifier:        notifier,
        reporter:        reporter,
        publish:         publish,
        hourlyRateCents: hourlyRateCents,
    }
}

// HandleBookingCommitted is the asynq handler for TypeBookingCommitted.
func (w *Worker) HandleBookingCommitted(ctx context.Context, t *asynq.Task) error {
    var p BookingCommittedPayload
    if err := json.Unmarshal(t.Payload(), &p); err != nil {
        logger.Get().Error("saga payload unmarshal failed", zap.Error(err))
        return fmt.Errorf("unmarshal: %v: %w", err, asynq.SkipRetry)
    }
    log := logger.Get().With(
        zap.String("event_id", p.EventID),
        zap.String("booking_id", p.BookingID),
        zap.String("kind", p.Kind),
    )

    b, err := w.store.GetByID(ctx, p.BookingID)
    if err != nil {
        if errors.Is(err, booking.ErrNotFound) {
            // Deleted between commit and delivery; nothing to do.
            log.Info("saga skipped, booking no longer exists")
            return nil
        }
        return err
    }

    if p.Kind == model.EventBookingCreated {
        amount := AmountCents(b.StartTime, b.EndTime, w.hourlyRateCents)
        if err := w.payments.InitiatePayment(ctx, b.ID, amount, "USD", p.EventID); err != nil {
            log.Error("payment initiation failed", zap.Int64("amount_cents", amount), zap.Error(err))
            return err
        }
    }

    if err := w.notifier.SendNotification(ctx, b.UserID, b.ID, notificationMessage(p.Kind, b.WorkspaceID)); err != nil {
        log.Error("notification failed", zap.String("user_id", b.UserID), zap.Error(err))
    }

    title, desc := reportEntry(p.Kind, b)
    if err := w.reporter.RecordReport(ctx, title, desc); err != nil {
        log.Error("report record failed", zap.Error(err))
    }

    if w.publish != nil {
        ev := queue.BookingEvent{
            EventID:     p.EventID,
            BookingID:   b.ID,
            UserID:      b.UserID,
            WorkspaceID: b.WorkspaceID,
            Kind:        p.Kind,
            StartTime:   b.StartTime.Format(time.RFC3339),
            EndTime:     b.EndTime.Format(time.RFC3339),
            Status:      b.Status,
            OccurredAt:  time.Now().UTC().Format(time.RFC3339),
        }
        if err := w.publish(ctx, ev); err != nil {
            log.Error("event publish failed", zap.Error(err))
        }
    }
    return nil
}

// AmountCents prices the interval at the hourly rate, rounded to the
// nearest cent.
func AmountCents(start, end time.Time, hourlyRateCents int64) int64 {
    return int64(math.Round(end.Sub(start).Hours() * float64(hourlyRateCents)))
}

func notificationMessage(kind, workspaceID string) string {
    switch kind {
    case model.EventBookingCreated:
        return fmt.Sprintf("Your booking for workspace %s has been created successfully!", workspaceID)
    case model.EventBookingConfirmed:
        return fmt.Sprintf("Your booking for workspace %s has been confirmed.", workspaceID)
    case model.EventBookingCancelled:
        return fmt.Sprintf("Your booking for workspace %s has been cancelled.", workspaceID)
    case model.EventBookingPending:
        return fmt.Sprintf("Your booking for workspace %s is pending confirmation.", workspaceID)
    default:
        return fmt.Sprintf("Your booking for workspace %s has been rescheduled.", workspaceID)
    }
}

func reportEntry(kind string, b *model.Booking) (title, description string) {
    switch kind {
    case model.EventBookingCreated:
        title = "New Booking Created"
    case model.EventBookingConfirmed:
        title = "Booking Confirmed"
    case model.EventBookingCancelled:
        title = "Booking Cancelled"
    case model.EventBookingPending:
        title = "Booking Pending"
    default:
        title = "Booking Rescheduled"
    }
    description = fmt.Sprintf("Booking %s (%s) for user %s in workspace %s, %s to %s",
        b.ID, b.Status, b.UserID, b.WorkspaceID,
        b.StartTime.Format(time.RFC3339), b.EndTime.Format(time.RFC3339))
    return title, description
}

// StartWorker runs the asynq server for saga tasks on a background
// goroutine, retrying startup with backoff the way the rest of the
// broker plumbing does.
func StartWorker(opt asynq.RedisClientOpt, w *Worker) {
    srv := asynq.NewServer(opt, asynq.Config{
        Concurrency: 10,
        Queues:      map[string]int{QueueName: 1},
    })
    mux := asynq.NewServeMux()
    mux.HandleFunc(TypeBookingCommitted, w.HandleBookingCommitted)

    go func() {
        backoff := time.Second
        for {
            if err := srv.Run(mux); err != nil {
                logger.Get().Error("saga worker stopped", zap.Error(err), zap.Duration("retry_in", backoff))
                time.Sleep(backoff)
                if backoff < 30*time.Second {
                    backoff *= 2
                }
                continue
            }
            return
        }
    }()
}
