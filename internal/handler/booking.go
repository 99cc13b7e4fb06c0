package handler

import (
    "errors"         // for errors.Is comparisons
    "net/http"       // HTTP status codes
    "time"           // parsing request timestamps

    "github.com/google/uuid"                                    // path parameter validation
    "github.com/iliyamo/workspace-booking/internal/booking"     // lifecycle service and sentinel errors
    "github.com/iliyamo/workspace-booking/internal/model"       // booking statuses
    "github.com/labstack/echo/v4"                               // Echo web framework
)

// BookingHandler exposes the booking lifecycle over HTTP.  All domain
// decisions (interval validation, conflict detection, status
// transitions) live in the booking service; the handler only binds
// request bodies, parses timestamps and translates sentinel errors
// into status codes.
type BookingHandler struct {
    Service *booking.Service
}

// NewBookingHandler constructs a BookingHandler.  The service must be
// non-nil.
func NewBookingHandler(svc *booking.Service) *BookingHandler {
    if svc == nil {
        panic("nil service passed to NewBookingHandler")
    }
    return &BookingHandler{Service: svc}
}

// createRequest is the body of POST /v1/bookings.  Status is optional
// and defaults to PENDING.
type createRequest struct {
    UserID      string `json:"user_id"`
    WorkspaceID string `json:"workspace_id"`
    StartTime   string `json:"start_time"`
    EndTime     string `json:"end_time"`
    Status      string `json:"status"`
}

// updateRequest is the body of PATCH /v1/bookings/:id.  All fields are
// optional; absent fields are left untouched.
type updateRequest struct {
    StartTime *string `json:"start_time"`
    EndTime   *string `json:"end_time"`
    Status    *string `json:"status"`
}

// Create handles POST /v1/bookings.  It validates the body, then asks
// the service to admit the booking.  Responds 201 with the stored
// record, 400 on validation or conflict errors and 502 when a
// collaborator service cannot be reached.
func (h *BookingHandler) Create(c echo.Context) error {
    var body createRequest
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.UserID == "" || body.WorkspaceID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and workspace_id are required"})
    }
    start, err := parseTimestamp(body.StartTime)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time"})
    }
    end, err := parseTimestamp(body.EndTime)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_time"})
    }
    if body.Status != "" && !model.ValidStatus(body.Status) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
    }

    b, err := h.Service.Create(c.Request().Context(), body.UserID, body.WorkspaceID, start, end, body.Status)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"item": b})
}

// List handles GET /v1/bookings.  Optional query parameters user_id,
// workspace_id, from and to narrow the result.  from/to select every
// booking whose interval intersects the requested range.  An empty
// result is a 200 with an empty items array.
func (h *BookingHandler) List(c echo.Context) error {
    f := booking.ListFilter{
        UserID:      c.QueryParam("user_id"),
        WorkspaceID: c.QueryParam("workspace_id"),
    }
    if v := c.QueryParam("from"); v != "" {
        t, err := parseTimestamp(v)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from"})
        }
        f.From = &t
    }
    if v := c.QueryParam("to"); v != "" {
        t, err := parseTimestamp(v)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to"})
        }
        f.To = &t
    }

    items, err := h.Service.List(c.Request().Context(), f)
    if err != nil {
        return bookingError(c, err)
    }
    if items == nil {
        items = []model.Booking{}
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
    id, err := bookingID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    b, err := h.Service.Get(c.Request().Context(), id)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// Update handles PATCH /v1/bookings/:id.  It merges the provided
// fields into the stored booking; changing the interval re-validates
// the non-overlap invariant.  Responds with the updated record.
func (h *BookingHandler) Update(c echo.Context) error {
    id, err := bookingID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var body updateRequest
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.StartTime == nil && body.EndTime == nil && body.Status == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
    }

    var start, end *time.Time
    if body.StartTime != nil {
        t, err := parseTimestamp(*body.StartTime)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time"})
        }
        start = &t
    }
    if body.EndTime != nil {
        t, err := parseTimestamp(*body.EndTime)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_time"})
        }
        end = &t
    }
    if body.Status != nil && !model.ValidStatus(*body.Status) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
    }

    b, err := h.Service.Update(c.Request().Context(), id, start, end, body.Status)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// Confirm handles POST /v1/bookings/:id/confirm.  Confirming an
// already confirmed booking is a no-op returning the current record.
func (h *BookingHandler) Confirm(c echo.Context) error {
    id, err := bookingID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    b, err := h.Service.Confirm(c.Request().Context(), id)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// Cancel handles POST /v1/bookings/:id/cancel.  Cancellation is
// idempotent: cancelling an already cancelled booking returns the
// record unchanged.
func (h *BookingHandler) Cancel(c echo.Context) error {
    id, err := bookingID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    b, err := h.Service.Cancel(c.Request().Context(), id)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// Delete handles DELETE /v1/bookings/:id.  It removes the record
// entirely; this is administrative cleanup, not cancellation.  Returns
// 204 on success and 404 when the booking does not exist.
func (h *BookingHandler) Delete(c echo.Context) error {
    id, err := bookingID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    if err := h.Service.Delete(c.Request().Context(), id); err != nil {
        return bookingError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// bookingID extracts and validates the :id path parameter.
func bookingID(c echo.Context) (string, error) {
    id := c.Param("id")
    if _, err := uuid.Parse(id); err != nil {
        return "", err
    }
    return id, nil
}

// parseTimestamp accepts RFC 3339 timestamps and normalises them to
// UTC.
func parseTimestamp(s string) (time.Time, error) {
    t, err := time.Parse(time.RFC3339, s)
    if err != nil {
        return time.Time{}, err
    }
    return t.UTC(), nil
}

// bookingError maps the service's sentinel errors onto HTTP status
// codes.  Validation failures and slot conflicts are client errors,
// unreachable collaborators are a bad gateway, everything else is a
// 500.
func bookingError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, booking.ErrInvalidInterval),
        errors.Is(err, booking.ErrSlotConflict),
        errors.Is(err, booking.ErrAlreadyCancelled),
        errors.Is(err, booking.ErrUserNotFound),
        errors.Is(err, booking.ErrWorkspaceNotFound):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, booking.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case errors.Is(err, booking.ErrDependencyUnavailable):
        return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}
