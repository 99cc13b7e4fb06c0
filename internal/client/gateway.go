// Package client holds the HTTP clients for the collaborating
// services: the user and workspace services consulted on the booking
// critical path, and the payment, notification and reporting services
// the orchestrator delivers side effects to.
package client

import (
    "context"
    "fmt"
    "net/http"
    "time"

    "go.uber.org/zap"

    "github.com/iliyamo/workspace-booking/internal/booking"
    "github.com/iliyamo/workspace-booking/internal/logger"
)

// Gateway validates that users and workspaces exist before a booking
// referencing them is admitted. Each check is a single GET with a
// bounded timeout and no retries: the caller needs a fast yes/no, and
// it must never sit on a workspace lock while we wait on the network.
type Gateway struct {
    http             *http.Client
    userBaseURL      string
    workspaceBaseURL string
}

// NewGateway constructs a Gateway against the given collaborator base
// URLs. timeout bounds each check; zero falls back to five seconds.
func NewGateway(userBaseURL, workspaceBaseURL string, timeout time.Duration) *Gateway {
    if timeout <= 0 {
        timeout = 5 * time.Second
    }
    return &Gateway{
        http:             &http.Client{Timeout: timeout},
        userBaseURL:      userBaseURL,
        workspaceBaseURL: workspaceBaseURL,
    }
}

// EnsureUserExists asks the user service for the user by ID. A 200 is
// success, a 404 maps to booking.ErrUserNotFound and anything else,
// including transport errors, maps to booking.ErrDependencyUnavailable.
func (g *Gateway) EnsureUserExists(ctx context.Context, userID string) error {
    return g.check(ctx, g.userBaseURL+"/user/"+userID, "user", userID, booking.ErrUserNotFound)
}

// EnsureWorkspaceExists asks the workspace service for the workspace
// by ID, with the same status mapping as EnsureUserExists.
func (g *Gateway) EnsureWorkspaceExists(ctx context.Context, workspaceID string) error {
    return g.check(ctx, g.workspaceBaseURL+"/workspaces/"+workspaceID, "workspace", workspaceID, booking.ErrWorkspaceNotFound)
}

func (g *Gateway) check(ctx context.Context, url, kind, id string, notFound error) error {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
    if err != nil {
        return fmt.Errorf("%w: %v", booking.ErrDependencyUnavailable, err)
    }
    resp, err := g.http.Do(req)
    if err != nil {
        logger.Get().Warn("validation check failed",
            zap.String("kind", kind), zap.String("id", id), zap.Error(err))
        return fmt.Errorf("%w: %v", booking.ErrDependencyUnavailable, err)
    }
    defer resp.Body.Close()
    switch {
    case resp.StatusCode == http.StatusOK:
        return nil
    case resp.StatusCode == http.StatusNotFound:
        return notFound
    default:
        logger.Get().Warn("validation check returned unexpected status",
            zap.String("kind", kind), zap.String("id", id), zap.Int("status", resp.StatusCode))
        return fmt.Errorf("%w: %s service returned %d", booking.ErrDependencyUnavailable, kind, resp.StatusCode)
    }
}
