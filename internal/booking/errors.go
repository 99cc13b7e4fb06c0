// Package booking implements the reservation core: the booking lifecycle
// state machine, the interval conflict detector and the store contract
// both the MySQL repository and the in-memory store satisfy. Domain
// failures are sentinel error values so that handlers can translate
// them into HTTP status codes with errors.Is instead of matching on
// exception types or message strings.
package booking

import "errors"

// ErrInvalidInterval is returned when a booking's start time is not
// strictly before its end time. Handlers should translate this into
// an HTTP 400 response.
var ErrInvalidInterval = errors.New("start time must be before end time")

// ErrSlotConflict is returned when a candidate interval overlaps an
// active (PENDING or CONFIRMED) booking on the same workspace.
// Handlers should translate this into an HTTP 400 response.
var ErrSlotConflict = errors.New("time slot overlaps with an existing booking")

// ErrNotFound is returned when no booking with the requested ID
// exists. Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("booking not found")

// ErrAlreadyCancelled is returned when a transition is attempted on a
// cancelled booking: confirming it, rescheduling it, or reviving it to
// a non-terminal status. Cancellation itself stays idempotent and
// never produces this error.
var ErrAlreadyCancelled = errors.New("booking is cancelled")

// ErrUserNotFound is returned by the validation gateway when the user
// collaborator reports that the requesting user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrWorkspaceNotFound is returned by the validation gateway when the
// workspace collaborator reports that the workspace does not exist.
var ErrWorkspaceNotFound = errors.New("workspace not found")

// ErrDependencyUnavailable is returned when a validation collaborator
// cannot be reached or answers with an unexpected status. Handlers
// should translate this into an HTTP 502 response.
var ErrDependencyUnavailable = errors.New("dependency unavailable")
