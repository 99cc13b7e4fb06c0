package client

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "time"
)

// Collaborators delivers the orchestrator's side effects. These calls
// run off the request path; failures are the caller's to log and
// contain, never to surface to the booking client.
type Collaborators struct {
    http               *http.Client
    paymentBaseURL     string
    notificationBaseURL string
    reportingBaseURL   string
}

// NewCollaborators constructs the side-effect clients. timeout bounds
// each request; zero falls back to five seconds.
func NewCollaborators(paymentBaseURL, notificationBaseURL, reportingBaseURL string, timeout time.Duration) *Collaborators {
    if timeout <= 0 {
        timeout = 5 * time.Second
    }
    return &Collaborators{
        http:                &http.Client{Timeout: timeout},
        paymentBaseURL:      paymentBaseURL,
        notificationBaseURL: notificationBaseURL,
        reportingBaseURL:    reportingBaseURL,
    }
}

// InitiatePayment asks the payment service to open a PENDING payment
// for the booking. The idempotency key is the commit event's ID, so a
// redelivered task cannot open a second payment for the same event.
func (c *Collaborators) InitiatePayment(ctx context.Context, bookingID string, amountCents int64, currency, idempotencyKey string) error {
    return c.postJSON(ctx, c.paymentBaseURL+"/payments", map[string]any{
        "booking_id":      bookingID,
        "amount_cents":    amountCents,
        "currency":        currency,
        "status":          "PENDING",
        "idempotency_key": idempotencyKey,
    })
}

// SendNotification asks the notification service to email the user
// about the booking event.
func (c *Collaborators) SendNotification(ctx context.Context, userID, bookingID, message string) error {
    return c.postJSON(ctx, c.notificationBaseURL+"/notifications", map[string]any{
        "user_id":    userID,
        "booking_id": bookingID,
        "type":       "EMAIL",
        "message":    message,
        "status":     "PENDING",
    })
}

// RecordReport writes an audit entry to the reporting service.
func (c *Collaborators) RecordReport(ctx context.Context, title, description string) error {
    return c.postJSON(ctx, c.reportingBaseURL+"/reports", map[string]any{
        "title":       title,
        "description": description,
    })
}

func (c *Collaborators) postJSON(ctx context.Context, url string, body any) error {
    payload, err := json.Marshal(body)
    if err != nil {
        return err
    }
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
    if err != nil {
        return err
    }
    req.Header.Set("Content-Type", "application/json")
    resp, err := c.http.Do(req)
    if err != nil {
        return err
    }
    defer resp.Body.Close()
    if resp.StatusCode < 200 || resp.StatusCode > 299 {
        return fmt.Errorf("%s returned %d", url, resp.StatusCode)
    }
    return nil
}
