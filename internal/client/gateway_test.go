package client

import (
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/iliyamo/workspace-booking/internal/booking"
)

func TestGatewayStatusMapping(t *testing.T) {
    users := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        switch r.URL.Path {
        case "/user/u1":
            w.WriteHeader(http.StatusOK)
        case "/user/ghost":
            w.WriteHeader(http.StatusNotFound)
        default:
            w.WriteHeader(http.StatusInternalServerError)
        }
    }))
    defer users.Close()
    workspaces := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        switch r.URL.Path {
        case "/workspaces/w1":
            w.WriteHeader(http.StatusOK)
        default:
            w.WriteHeader(http.StatusNotFound)
        }
    }))
    defer workspaces.Close()

    g := NewGateway(users.URL, workspaces.URL, time.Second)
    ctx := context.Background()

    if err := g.EnsureUserExists(ctx, "u1"); err != nil {
        t.Errorf("existing user: %v", err)
    }
    if err := g.EnsureUserExists(ctx, "ghost"); !errors.Is(err, booking.ErrUserNotFound) {
        t.Errorf("missing user: got %v, want ErrUserNotFound", err)
    }
    if err := g.EnsureUserExists(ctx, "boom"); !errors.Is(err, booking.ErrDependencyUnavailable) {
        t.Errorf("server error: got %v, want ErrDependencyUnavailable", err)
    }
    if err := g.EnsureWorkspaceExists(ctx, "w1"); err != nil {
        t.Errorf("existing workspace: %v", err)
    }
    if err := g.EnsureWorkspaceExists(ctx, "void"); !errors.Is(err, booking.ErrWorkspaceNotFound) {
        t.Errorf("missing workspace: got %v, want ErrWorkspaceNotFound", err)
    }
}

func TestGatewayUnreachable(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
    srv.Close() // nothing listens at this URL anymore

    g := NewGateway(srv.URL, srv.URL, time.Second)
    if err := g.EnsureUserExists(context.Background(), "u1"); !errors.Is(err, booking.ErrDependencyUnavailable) {
        t.Fatalf("unreachable collaborator: got %v, want ErrDependencyUnavailable", err)
    }
}

func TestGatewayTimeout(t *testing.T) {
    block := make(chan struct{})
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        <-block
    }))
    defer func() { close(block); srv.Close() }()

    g := NewGateway(srv.URL, srv.URL, 50*time.Millisecond)
    if err := g.EnsureUserExists(context.Background(), "u1"); !errors.Is(err, booking.ErrDependencyUnavailable) {
        t.Fatalf("timed out collaborator: got %v, want ErrDependencyUnavailable", err)
    }
}

func TestCollaboratorsRejectNon2xx(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Path == "/payments" {
            w.WriteHeader(http.StatusBadGateway)
            return
        }
        w.WriteHeader(http.StatusCreated)
    }))
    defer srv.Close()

    c := NewCollaborators(srv.URL, srv.URL, srv.URL, time.Second)
    ctx := context.Background()

    if err := c.InitiatePayment(ctx, "b1", 5000, "USD", "e1"); err == nil {
        t.Error("payment 502 did not error")
    }
    if err := c.SendNotification(ctx, "u1", "b1", "hello"); err != nil {
        t.Errorf("notification: %v", err)
    }
    if err := c.RecordReport(ctx, "title", "desc"); err != nil {
        t.Errorf("report: %v", err)
    }
}
