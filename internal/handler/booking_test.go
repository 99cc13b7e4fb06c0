package handler

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/workspace-booking/internal/booking"
    "github.com/iliyamo/workspace-booking/internal/model"
)

// okGateway approves every user and workspace so handler tests
// exercise only the HTTP layer.
type okGateway struct{}

func (okGateway) EnsureUserExists(ctx context.Context, userID string) error           { return nil }
func (okGateway) EnsureWorkspaceExists(ctx context.Context, workspaceID string) error { return nil }

func newTestHandler() *BookingHandler {
    return NewBookingHandler(booking.NewService(booking.NewMemoryStore(), okGateway{}))
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
    var req *http.Request
    if body != "" {
        req = httptest.NewRequest(method, target, strings.NewReader(body))
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    } else {
        req = httptest.NewRequest(method, target, nil)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func newTestServer() (*echo.Echo, *BookingHandler) {
    e := echo.New()
    h := newTestHandler()
    g := e.Group("/v1/bookings")
    g.POST("", h.Create)
    g.GET("", h.List)
    g.GET("/:id", h.Get)
    g.PATCH("/:id", h.Update)
    g.POST("/:id/confirm", h.Confirm)
    g.POST("/:id/cancel", h.Cancel)
    g.DELETE("/:id", h.Delete)
    return e, h
}

func createBooking(t *testing.T, e *echo.Echo, body string) model.Booking {
    t.Helper()
    rec := doJSON(e, http.MethodPost, "/v1/bookings", body)
    if rec.Code != http.StatusCreated {
        t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
    }
    var resp struct {
        Item model.Booking `json:"item"`
    }
    if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
        t.Fatalf("decode create response: %v", err)
    }
    return resp.Item
}

const validCreate = `{"user_id":"11111111-1111-1111-1111-111111111111","workspace_id":"22222222-2222-2222-2222-222222222222","start_time":"2026-03-10T10:00:00Z","end_time":"2026-03-10T12:00:00Z"}`

func TestCreateEndpoint(t *testing.T) {
    e, _ := newTestServer()

    b := createBooking(t, e, validCreate)
    if b.ID == "" || b.Status != model.StatusPending {
        t.Fatalf("created booking %+v", b)
    }

    // Optional status in the body is honoured.
    confirmed := createBooking(t, e, `{"user_id":"u1","workspace_id":"w9","start_time":"2026-03-10T10:00:00Z","end_time":"2026-03-10T11:00:00Z","status":"CONFIRMED"}`)
    if confirmed.Status != model.StatusConfirmed {
        t.Fatalf("status not honoured: %+v", confirmed)
    }

    bad := []struct {
        name string
        body string
    }{
        {"missing ids", `{"start_time":"2026-03-10T10:00:00Z","end_time":"2026-03-10T12:00:00Z"}`},
        {"bad timestamp", `{"user_id":"u1","workspace_id":"w1","start_time":"next tuesday","end_time":"2026-03-10T12:00:00Z"}`},
        {"reversed interval", `{"user_id":"u1","workspace_id":"w1","start_time":"2026-03-10T12:00:00Z","end_time":"2026-03-10T10:00:00Z"}`},
        {"unknown status", `{"user_id":"u1","workspace_id":"w1","start_time":"2026-03-10T10:00:00Z","end_time":"2026-03-10T12:00:00Z","status":"MAYBE"}`},
        {"conflict", validCreate},
    }
    for _, tc := range bad {
        rec := doJSON(e, http.MethodPost, "/v1/bookings", tc.body)
        if rec.Code != http.StatusBadRequest {
            t.Errorf("%s: got %d, want 400", tc.name, rec.Code)
        }
    }
}

func TestGetAndListEndpoints(t *testing.T) {
    e, _ := newTestServer()

    b1 := createBooking(t, e, `{"user_id":"u1","workspace_id":"w1","start_time":"2026-03-10T08:00:00Z","end_time":"2026-03-10T09:00:00Z"}`)
    createBooking(t, e, `{"user_id":"u2","workspace_id":"w1","start_time":"2026-03-10T10:00:00Z","end_time":"2026-03-10T12:00:00Z"}`)
    createBooking(t, e, `{"user_id":"u1","workspace_id":"w2","start_time":"2026-03-10T11:00:00Z","end_time":"2026-03-10T13:00:00Z"}`)

    rec := doJSON(e, http.MethodGet, "/v1/bookings/"+b1.ID, "")
    if rec.Code != http.StatusOK {
        t.Fatalf("get returned %d", rec.Code)
    }

    rec = doJSON(e, http.MethodGet, "/v1/bookings/not-a-uuid", "")
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("malformed id returned %d, want 400", rec.Code)
    }
    rec = doJSON(e, http.MethodGet, "/v1/bookings/99999999-9999-9999-9999-999999999999", "")
    if rec.Code != http.StatusNotFound {
        t.Fatalf("unknown id returned %d, want 404", rec.Code)
    }

    listLen := func(target string) int {
        rec := doJSON(e, http.MethodGet, target, "")
        if rec.Code != http.StatusOK {
            t.Fatalf("list %s returned %d", target, rec.Code)
        }
        var resp struct {
            Items []model.Booking `json:"items"`
        }
        if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
            t.Fatalf("decode list: %v", err)
        }
        return len(resp.Items)
    }

    if n := listLen("/v1/bookings"); n != 3 {
        t.Errorf("unfiltered list has %d items, want 3", n)
    }
    if n := listLen("/v1/bookings?user_id=u1"); n != 2 {
        t.Errorf("user filter has %d items, want 2", n)
    }
    if n := listLen("/v1/bookings?workspace_id=w1"); n != 2 {
        t.Errorf("workspace filter has %d items, want 2", n)
    }
    if n := listLen("/v1/bookings?from=2026-03-10T09:00:00Z&to=2026-03-10T10:00:00Z"); n != 2 {
        t.Errorf("range filter has %d items, want 2", n)
    }
    if n := listLen("/v1/bookings?user_id=nobody"); n != 0 {
        t.Errorf("empty result has %d items, want 0", n)
    }

    rec = doJSON(e, http.MethodGet, "/v1/bookings?from=yesterday", "")
    if rec.Code != http.StatusBadRequest {
        t.Errorf("bad from returned %d, want 400", rec.Code)
    }
}

func TestUpdateEndpoint(t *testing.T) {
    e, _ := newTestServer()
    b := createBooking(t, e, validCreate)

    rec := doJSON(e, http.MethodPatch, "/v1/bookings/"+b.ID, `{"start_time":"2026-03-10T14:00:00Z","end_time":"2026-03-10T16:00:00Z"}`)
    if rec.Code != http.StatusOK {
        t.Fatalf("reschedule returned %d: %s", rec.Code, rec.Body.String())
    }

    rec = doJSON(e, http.MethodPatch, "/v1/bookings/"+b.ID, `{}`)
    if rec.Code != http.StatusBadRequest {
        t.Errorf("empty patch returned %d, want 400", rec.Code)
    }
    rec = doJSON(e, http.MethodPatch, "/v1/bookings/"+b.ID, `{"status":"WAITING"}`)
    if rec.Code != http.StatusBadRequest {
        t.Errorf("invalid status returned %d, want 400", rec.Code)
    }
    rec = doJSON(e, http.MethodPatch, "/v1/bookings/99999999-9999-9999-9999-999999999999", `{"status":"CONFIRMED"}`)
    if rec.Code != http.StatusNotFound {
        t.Errorf("unknown booking returned %d, want 404", rec.Code)
    }
}

func TestConfirmAndCancelEndpoints(t *testing.T) {
    e, _ := newTestServer()
    b := createBooking(t, e, validCreate)

    rec := doJSON(e, http.MethodPost, "/v1/bookings/"+b.ID+"/confirm", "")
    if rec.Code != http.StatusOK {
        t.Fatalf("confirm returned %d", rec.Code)
    }
    // Idempotent re-confirm.
    rec = doJSON(e, http.MethodPost, "/v1/bookings/"+b.ID+"/confirm", "")
    if rec.Code != http.StatusOK {
        t.Fatalf("second confirm returned %d", rec.Code)
    }

    rec = doJSON(e, http.MethodPost, "/v1/bookings/"+b.ID+"/cancel", "")
    if rec.Code != http.StatusOK {
        t.Fatalf("cancel returned %d", rec.Code)
    }
    // Idempotent re-cancel.
    rec = doJSON(e, http.MethodPost, "/v1/bookings/"+b.ID+"/cancel", "")
    if rec.Code != http.StatusOK {
        t.Fatalf("second cancel returned %d", rec.Code)
    }
    // Confirming a cancelled booking is a client error.
    rec = doJSON(e, http.MethodPost, "/v1/bookings/"+b.ID+"/confirm", "")
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("confirm after cancel returned %d, want 400", rec.Code)
    }
}

func TestDeleteEndpoint(t *testing.T) {
    e, _ := newTestServer()
    b := createBooking(t, e, validCreate)

    rec := doJSON(e, http.MethodDelete, "/v1/bookings/"+b.ID, "")
    if rec.Code != http.StatusNoContent {
        t.Fatalf("delete returned %d", rec.Code)
    }
    rec = doJSON(e, http.MethodDelete, "/v1/bookings/"+b.ID, "")
    if rec.Code != http.StatusNotFound {
        t.Fatalf("second delete returned %d, want 404", rec.Code)
    }
}

func TestDependencyUnavailableMapsToBadGateway(t *testing.T) {
    e := echo.New()
    svc := booking.NewService(booking.NewMemoryStore(), downGateway{})
    h := NewBookingHandler(svc)
    e.POST("/v1/bookings", h.Create)

    rec := doJSON(e, http.MethodPost, "/v1/bookings", validCreate)
    if rec.Code != http.StatusBadGateway {
        t.Fatalf("got %d, want 502", rec.Code)
    }
}

type downGateway struct{}

func (downGateway) EnsureUserExists(ctx context.Context, userID string) error {
    return booking.ErrDependencyUnavailable
}
func (downGateway) EnsureWorkspaceExists(ctx context.Context, workspaceID string) error {
    return booking.ErrDependencyUnavailable
}
