// internal/domain/order/statemachine.go
package order

import (
	"time"

	"github.com/your-org/ambika-backend/internal/pkg/apperrors"
)

// transitions enumerates the legal target statuses per source status.
// The table is enforced for every path that changes an order's status,
// operator-driven updates included. Cancelled and refunded are
// terminal.
var transitions = map[Status][]Status{
	StatusPlaced:         {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusPacked, StatusCancelled},
	StatusPacked:         {StatusShipped},
	StatusShipped:        {StatusOutForDelivery, StatusDelivered},
	StatusOutForDelivery: {StatusDelivered},
	StatusDelivered:      {StatusReturned},
	StatusReturned:       {StatusRefunded},
}

// cancellable is the set of statuses an order may be cancelled from.
var cancellable = map[Status]bool{
	StatusPlaced:     true,
	StatusConfirmed:  true,
	StatusProcessing: true,
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPlaced, StatusConfirmed, StatusProcessing, StatusPacked,
		StatusShipped, StatusOutForDelivery, StatusDelivered,
		StatusCancelled, StatusReturned, StatusRefunded:
		return true
	}
	return false
}

// CanTransition checks the transition table. A nil return means the
// move from one status to the other is legal.
func CanTransition(from, to Status) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &apperrors.InvalidTransitionError{
		From:   string(from),
		To:     string(to),
		Reason: "transition not allowed",
	}
}

// CanCancel checks whether an order in the given status may still be
// cancelled by the customer.
func CanCancel(status Status) error {
	if cancellable[status] {
		return nil
	}
	return &apperrors.InvalidTransitionError{
		From:   string(status),
		To:     string(StatusCancelled),
		Reason: "order can no longer be cancelled",
	}
}

// CanReturn checks whether an order may be returned at the given
// instant. Only delivered orders qualify, and only within the return
// window measured from delivery. The window boundary is inclusive:
// a return at exactly deliveredAt + window still succeeds.
func CanReturn(o *Order, now time.Time, window time.Duration) error {
	if o.Status != StatusDelivered || o.DeliveredAt == nil {
		return &apperrors.InvalidTransitionError{
			From:   string(o.Status),
			To:     string(StatusReturned),
			Reason: "order has not been delivered",
		}
	}
	if now.Sub(*o.DeliveredAt) > window {
		return &apperrors.InvalidTransitionError{
			From:   string(o.Status),
			To:     string(StatusReturned),
			Reason: "return window expired",
		}
	}
	return nil
}
