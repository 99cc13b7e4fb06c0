package orchestrator

import (
    "context"
    "encoding/json"
    "errors"
    "testing"
    "time"

    "github.com/hibiken/asynq"

    "github.com/iliyamo/workspace-booking/internal/booking"
    "github.com/iliyamo/workspace-booking/internal/model"
    "github.com/iliyamo/workspace-booking/internal/queue"
)

type fakePayments struct {
    calls []string // idempotency keys seen
    err   error
}

func (f *fakePayments) InitiatePayment(ctx context.Context, bookingID string, amountCents int64, currency, idempotencyKey string) error {
    f.calls = append(f.calls, idempotencyKey)
    return f.err
}

type fakeNotifier struct {
    calls int
    err   error
}

func (f *fakeNotifier) SendNotification(ctx context.Context, userID, bookingID, message string) error {
    f.calls++
    return f.err
}

type fakeReporter struct {
    titles []string
    err    error
}

func (f *fakeReporter) RecordReport(ctx context.Context, title, description string) error {
    f.titles = append(f.titles, title)
    return f.err
}

func seedStore(t *testing.T, status string) (*booking.MemoryStore, *model.Booking) {
    t.Helper()
    store := booking.NewMemoryStore()
    b := &model.Booking{
        ID:          "b1",
        UserID:      "u1",
        WorkspaceID: "w1",
        StartTime:   time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
        EndTime:     time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
        Status:      status,
    }
    if err := store.Create(context.Background(), b, nil); err != nil {
        t.Fatalf("seed: %v", err)
    }
    return store, b
}

func committedTask(t *testing.T, eventID, bookingID, kind string) *asynq.Task {
    t.Helper()
    task, err := NewBookingCommittedTask(model.OutboxEvent{ID: eventID, BookingID: bookingID, Kind: kind})
    if err != nil {
        t.Fatalf("task: %v", err)
    }
    return task
}

func TestWorkerCreatedEventRunsFullSaga(t *testing.T) {
    store, _ := seedStore(t, model.StatusPending)
    pay := &fakePayments{}
    notify := &fakeNotifier{}
    report := &fakeReporter{}
    published := 0
    w := NewWorker(store, pay, notify, report, func(ctx context.Context, ev queue.BookingEvent) error {
        published++
        return nil
    }, 2500)

    err := w.HandleBookingCommitted(context.Background(), committedTask(t, "e1", "b1", model.EventBookingCreated))
    if err != nil {
        t.Fatalf("handle: %v", err)
    }
    if len(pay.calls) != 1 || pay.calls[0] != "e1" {
        t.Fatalf("payment calls %v, want one keyed by event ID", pay.calls)
    }
    if notify.calls != 1 {
        t.Fatalf("notification calls %d, want 1", notify.calls)
    }
    if len(report.titles) != 1 || report.titles[0] != "New Booking Created" {
        t.Fatalf("report titles %v", report.titles)
    }
    if published != 1 {
        t.Fatalf("published %d events, want 1", published)
    }
}

func TestWorkerPaymentFailureFailsTask(t *testing.T) {
    store, _ := seedStore(t, model.StatusPending)
    pay := &fakePayments{err: errors.New("payment service down")}
    notify := &fakeNotifier{}
    w := NewWorker(store, pay, notify, &fakeReporter{}, nil, 2500)

    err := w.HandleBookingCommitted(context.Background(), committedTask(t, "e1", "b1", model.EventBookingCreated))
    if err == nil {
        t.Fatal("payment failure did not fail the task")
    }
    // The failed step aborts the saga so the retry replays it whole.
    if notify.calls != 0 {
        t.Fatalf("notification ran %d times after payment failure, want 0", notify.calls)
    }
}

func TestWorkerSideEffectFailuresAreContained(t *testing.T) {
    store, _ := seedStore(t, model.StatusConfirmed)
    pay := &fakePayments{}
    notify := &fakeNotifier{err: errors.New("smtp down")}
    report := &fakeReporter{err: errors.New("reporting down")}
    w := NewWorker(store, pay, notify, report, func(ctx context.Context, ev queue.BookingEvent) error {
        return errors.New("broker down")
    }, 2500)

    err := w.HandleBookingCommitted(context.Background(), committedTask(t, "e2", "b1", model.EventBookingConfirmed))
    if err != nil {
        t.Fatalf("side effect failures leaked: %v", err)
    }
    // All steps still ran despite each one failing.
    if notify.calls != 1 || len(report.titles) != 1 {
        t.Fatalf("notify=%d reports=%d, want 1 and 1", notify.calls, len(report.titles))
    }
}

func TestWorkerNoPaymentForNonCreatedEvents(t *testing.T) {
    store, _ := seedStore(t, model.StatusCancelled)
    pay := &fakePayments{}
    w := NewWorker(store, pay, &fakeNotifier{}, &fakeReporter{}, nil, 2500)

    err := w.HandleBookingCommitted(context.Background(), committedTask(t, "e3", "b1", model.EventBookingCancelled))
    if err != nil {
        t.Fatalf("handle: %v", err)
    }
    if len(pay.calls) != 0 {
        t.Fatalf("payment initiated for a cancellation: %v", pay.calls)
    }
}

func TestWorkerMissingBookingSkips(t *testing.T) {
    store := booking.NewMemoryStore()
    pay := &fakePayments{}
    w := NewWorker(store, pay, &fakeNotifier{}, &fakeReporter{}, nil, 2500)

    err := w.HandleBookingCommitted(context.Background(), committedTask(t, "e4", "gone", model.EventBookingCreated))
    if err != nil {
        t.Fatalf("missing booking should be a clean skip, got %v", err)
    }
    if len(pay.calls) != 0 {
        t.Fatalf("payment initiated for missing booking")
    }
}

func TestWorkerMalformedPayloadSkipsRetry(t *testing.T) {
    w := NewWorker(booking.NewMemoryStore(), &fakePayments{}, &fakeNotifier{}, &fakeReporter{}, nil, 2500)
    task := asynq.NewTask(TypeBookingCommitted, []byte("{not json"))

    err := w.HandleBookingCommitted(context.Background(), task)
    if !errors.Is(err, asynq.SkipRetry) {
        t.Fatalf("got %v, want SkipRetry", err)
    }
}

func TestAmountCents(t *testing.T) {
    base := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
    cases := []struct {
        name string
        d    time.Duration
        rate int64
        want int64
    }{
        {"two hours", 2 * time.Hour, 2500, 5000},
        {"ninety minutes", 90 * time.Minute, 2500, 3750},
        {"rounding", 10 * time.Minute, 1000, 167},
    }
    for _, tc := range cases {
        if got := AmountCents(base, base.Add(tc.d), tc.rate); got != tc.want {
            t.Errorf("%s: AmountCents = %d, want %d", tc.name, got, tc.want)
        }
    }
}

func TestBookingCommittedTaskRoundTrip(t *testing.T) {
    task := committedTask(t, "e1", "b1", model.EventBookingCreated)
    if task.Type() != TypeBookingCommitted {
        t.Fatalf("task type %q", task.Type())
    }
    var p BookingCommittedPayload
    if err := json.Unmarshal(task.Payload(), &p); err != nil {
        t.Fatalf("unmarshal: %v", err)
    }
    if p.EventID != "e1" || p.BookingID != "b1" || p.Kind != model.EventBookingCreated {
        t.Fatalf("payload %+v", p)
    }
}
