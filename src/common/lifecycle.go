package common

import (
	"fmt"
	"time"

	"staynearev/src/config"
	"staynearev/src/models"
	"staynearev/src/types"
)

// transitions is the manual lifecycle table. no-show is deliberately absent:
// it is reachable only through administrative marking, never through the
// normal host flow.
var transitions = map[types.BookingStatus][]types.BookingStatus{
	types.BOOKING_PENDING:   {types.BOOKING_CONFIRMED, types.BOOKING_CANCELLED},
	types.BOOKING_CONFIRMED: {types.BOOKING_ACTIVE, types.BOOKING_CANCELLED},
	types.BOOKING_ACTIVE:    {types.BOOKING_COMPLETED, types.BOOKING_CANCELLED},
	types.BOOKING_COMPLETED: {},
	types.BOOKING_CANCELLED: {},
	types.BOOKING_NO_SHOW:   {},
}

func CanTransition(from, to types.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(status types.BookingStatus) bool {
	return status == types.BOOKING_COMPLETED ||
		status == types.BOOKING_CANCELLED ||
		status == types.BOOKING_NO_SHOW
}

// DeriveStatus computes the time-advanced status of a booking without side
// effects: a booking whose end has passed completes, a confirmed booking whose
// window has opened activates. Terminal states never move. The sweep job and
// the read path both rely on this being idempotent.
func DeriveStatus(b *models.Booking, now time.Time) types.BookingStatus {
	if IsTerminal(b.Status) {
		return b.Status
	}
	if b.EndTime.Before(now) {
		return types.BOOKING_COMPLETED
	}
	if b.Status == types.BOOKING_CONFIRMED && !b.StartTime.After(now) {
		return types.BOOKING_ACTIVE
	}
	return b.Status
}

// ValidateLeadTime enforces the creation rule that a booking must start at
// least BookingLeadTimeMinutes from now.
func ValidateLeadTime(start, now time.Time) error {
	if start.Before(now.Add(config.BookingLeadTimeMinutes * time.Minute)) {
		return types.NewAPIError(types.ErrLeadTime,
			fmt.Sprintf("booking must start at least %d minutes from now", config.BookingLeadTimeMinutes))
	}
	return nil
}

// CancelByUser applies a requester-initiated cancellation: only pending or
// confirmed bookings qualify, and only outside the cutoff window before start.
// An admin cancelling on the customer's behalf is recorded as a system
// cancellation, not a user one.
func CancelByUser(b *models.Booking, actor Actor, reason string, now time.Time) error {
	if b.Status != types.BOOKING_PENDING && b.Status != types.BOOKING_CONFIRMED {
		return types.NewAPIError(types.ErrInvalidTransition,
			fmt.Sprintf("cannot cancel booking in status %s", b.Status))
	}
	if now.After(b.StartTime.Add(-config.CancelCutoffMinutes * time.Minute)) {
		return types.NewAPIError(types.ErrCancellationWindow,
			fmt.Sprintf("cannot cancel within %d minutes of start time", config.CancelCutoffMinutes))
	}
	by := types.CANCELLED_BY_USER
	if actor.Role == types.ROLE_ADMIN {
		by = types.CANCELLED_BY_SYSTEM
	}
	b.Status = types.BOOKING_CANCELLED
	b.CancelledBy = &by
	if reason != "" {
		b.CancellationReason = &reason
	}
	return nil
}

// ApplyStatusUpdate applies a host/admin status change against the transition
// table. The booking's status is first advanced by time so a host confirming
// an already-finished booking fails the same way it would after the sweep ran.
func ApplyStatusUpdate(b *models.Booking, target types.BookingStatus, actor Actor, body *types.UpdateBookingStatusRequestBody, pricePerUnit float64, now time.Time) error {
	b.Status = DeriveStatus(b, now)

	if target == types.BOOKING_NO_SHOW {
		if actor.Role != types.ROLE_ADMIN {
			return types.NewAPIError(types.ErrAuthorization, "only an admin may mark a booking as no-show")
		}
		if b.Status != types.BOOKING_CONFIRMED && b.Status != types.BOOKING_ACTIVE {
			return types.NewAPIError(types.ErrInvalidTransition,
				fmt.Sprintf("invalid status transition from %s to %s", b.Status, target))
		}
	} else if !CanTransition(b.Status, target) {
		return types.NewAPIError(types.ErrInvalidTransition,
			fmt.Sprintf("invalid status transition from %s to %s", b.Status, target))
	}

	b.Status = target
	if body.EnergyConsumed > 0 {
		b.EnergyConsumed = body.EnergyConsumed
		final := FinalCost(body.EnergyConsumed, pricePerUnit)
		b.FinalCost = &final
	}
	if body.Notes != "" {
		notes := body.Notes
		b.Notes = &notes
	}
	if target == types.BOOKING_CANCELLED {
		by := types.CANCELLED_BY_HOST
		if actor.Role == types.ROLE_ADMIN {
			by = types.CANCELLED_BY_SYSTEM
		}
		b.CancelledBy = &by
	}
	return nil
}

// AddReview records a rating on a completed booking, at most once. A booking
// that only counts as completed by time advancement has its stored status
// settled to completed here, so the review never outruns the sweep.
func AddReview(b *models.Booking, rating uint8, review string, now time.Time) error {
	status := DeriveStatus(b, now)
	if status != types.BOOKING_COMPLETED {
		return types.NewAPIError(types.ErrValidation, "booking is not completed")
	}
	if b.Rating != nil {
		return types.NewAPIError(types.ErrAlreadyReviewed, "review already submitted for this booking")
	}
	b.Status = status
	b.Rating = &rating
	if review != "" {
		b.Review = &review
	}
	return nil
}

type Actor struct {
	ID   uint
	Role types.UserRole
}

type Action string

const (
	ActionViewBooking    Action = "booking:view"
	ActionCancelBooking  Action = "booking:cancel"
	ActionUpdateBooking  Action = "booking:update-status"
	ActionReviewBooking  Action = "booking:review"
	ActionManageStation  Action = "station:manage"
	ActionListAllBooking Action = "booking:list-all"
)

// Allowed is the single capability check for booking and station operations.
// ownerID is the booking owner, hostID the station host; pass zero when the
// dimension does not apply.
func Allowed(actor Actor, action Action, ownerID, hostID uint) bool {
	if actor.Role == types.ROLE_ADMIN {
		return true
	}
	switch action {
	case ActionViewBooking:
		return actor.ID == ownerID || actor.ID == hostID
	case ActionCancelBooking, ActionReviewBooking:
		return actor.ID == ownerID
	case ActionUpdateBooking, ActionManageStation:
		return actor.ID == hostID
	default:
		return false
	}
}
