package tracking

import (
	"fmt"

	"lastmile/internal/pkg/errs"
)

// SessionStatus is the fine-grained operational state of a tracking session.
// It refines the offer's coarse commercial status: several session statuses
// (heading/arrived) are purely informational and have no offer counterpart.
type SessionStatus int

const (
	// SessionUnknown represents an invalid or undefined status.
	SessionUnknown SessionStatus = iota

	// SessionAccepted is the initial status, set when the session is born
	// with the offer's acceptance.
	SessionAccepted

	// SessionHeadingToPickup means the rider is driving to the pickup point.
	SessionHeadingToPickup

	// SessionArrivedAtPickup means the rider reached the pickup address.
	SessionArrivedAtPickup

	// SessionPickedUp means the package is in the rider's possession.
	SessionPickedUp

	// SessionInTransit means the package is on its way to the recipient.
	SessionInTransit

	// SessionArrivedAtDelivery means the rider reached the delivery address.
	SessionArrivedAtDelivery

	// SessionDelivered means the package was handed over.
	SessionDelivered

	// SessionCompleted means the delivery has been confirmed and settled.
	// The session is archived at this point.
	SessionCompleted

	// SessionCancelled means the delivery was called off.
	// The session is archived at this point.
	SessionCancelled
)

func getSessionStatusStrings() map[SessionStatus]string {
	return map[SessionStatus]string{
		SessionUnknown:           "unknown",
		SessionAccepted:          "accepted",
		SessionHeadingToPickup:   "heading_to_pickup",
		SessionArrivedAtPickup:   "arrived_at_pickup",
		SessionPickedUp:          "picked_up",
		SessionInTransit:         "in_transit",
		SessionArrivedAtDelivery: "arrived_at_delivery",
		SessionDelivered:         "delivered",
		SessionCompleted:         "completed",
		SessionCancelled:         "cancelled",
	}
}

// progressByStatus maps each status to a completion percentage. The values
// increase monotonically along the happy path: 0 at acceptance through 100
// at completion; cancellation reports 0.
var progressByStatus = map[SessionStatus]int{
	SessionAccepted:          0,
	SessionHeadingToPickup:   10,
	SessionArrivedAtPickup:   25,
	SessionPickedUp:          40,
	SessionInTransit:         60,
	SessionArrivedAtDelivery: 75,
	SessionDelivered:         90,
	SessionCompleted:         100,
	SessionCancelled:         0,
}

// phaseByStatus maps each status to a human-readable phase label.
var phaseByStatus = map[SessionStatus]string{
	SessionAccepted:          "Preparing for pickup",
	SessionHeadingToPickup:   "Heading to pickup location",
	SessionArrivedAtPickup:   "At pickup location",
	SessionPickedUp:          "Package collected",
	SessionInTransit:         "Out for delivery",
	SessionArrivedAtDelivery: "At delivery location",
	SessionDelivered:         "Package delivered",
	SessionCompleted:         "Delivery completed",
	SessionCancelled:         "Delivery cancelled",
}

// Validate checks that the status is one of the defined values.
func (s SessionStatus) Validate() error {
	if _, ok := progressByStatus[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("session status is invalid",
			fmt.Errorf("%d is not a valid session status", s))
	}
	return nil
}

// String returns the wire name of the status. Implements fmt.Stringer.
func (s SessionStatus) String() string {
	if str, ok := getSessionStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the session archives at this status.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

// Progress returns the completion percentage for the status.
// It is a pure function of the status value alone.
func (s SessionStatus) Progress() int {
	return progressByStatus[s]
}

// Phase returns the human-readable phase label for the status.
func (s SessionStatus) Phase() string {
	if phase, ok := phaseByStatus[s]; ok {
		return phase
	}
	return "Unknown"
}

// InDeliveryPhase reports whether the session has moved past the transit
// phase, i.e. the rider is at (or past) the delivery address. Delivery
// confirmation requires this.
func (s SessionStatus) InDeliveryPhase() bool {
	switch s {
	case SessionArrivedAtDelivery, SessionDelivered, SessionCompleted:
		return true
	default:
		return false
	}
}

// SessionStatusFromString parses the wire name of a session status.
func SessionStatusFromString(raw string) (SessionStatus, error) {
	for status, name := range getSessionStatusStrings() {
		if name == raw && status != SessionUnknown {
			return status, nil
		}
	}
	return SessionUnknown, errs.NewValueIsInvalidErrorWithCause("session status is invalid",
		fmt.Errorf("%q is not a valid session status", raw))
}
