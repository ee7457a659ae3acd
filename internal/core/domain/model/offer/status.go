package offer

import (
	"fmt"

	"lastmile/internal/pkg/errs"
)

// Status represents the coarse commercial state of an Offer.
// It implements a fixed state machine; every legal move is listed in the
// transition table below and nothing else is ever allowed.
//
// State transitions:
//
//	open ──> accepted ──> picked_up ──> in_transit ──> delivered ──> completed
//	  │          │            │              │
//	  └──────────┴────────────┴──────────────┴──> cancelled
//
// completed and cancelled are terminal: no further transition is permitted.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	StatusUnknown Status = iota

	// StatusOpen is the initial status: the offer is published and
	// waiting for a rider to accept it.
	StatusOpen

	// StatusAccepted indicates a rider has taken the offer.
	StatusAccepted

	// StatusPickedUp indicates the rider has collected the package.
	StatusPickedUp

	// StatusInTransit indicates the package is on its way to the
	// delivery address.
	StatusInTransit

	// StatusDelivered indicates the package reached the recipient.
	StatusDelivered

	// StatusCompleted indicates the delivery has been confirmed and
	// settled. Terminal.
	StatusCompleted

	// StatusCancelled indicates the offer was cancelled by the business
	// owner or the assigned rider. Terminal.
	StatusCancelled
)

// transitions is the fixed directed graph of legal status moves.
var transitions = map[Status][]Status{
	StatusOpen:      {StatusAccepted, StatusCancelled},
	StatusAccepted:  {StatusPickedUp, StatusCancelled},
	StatusPickedUp:  {StatusInTransit, StatusCancelled},
	StatusInTransit: {StatusDelivered, StatusCancelled},
	StatusDelivered: {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:   "unknown",
		StatusOpen:      "open",
		StatusAccepted:  "accepted",
		StatusPickedUp:  "picked_up",
		StatusInTransit: "in_transit",
		StatusDelivered: "delivered",
		StatusCompleted: "completed",
		StatusCancelled: "cancelled",
	}
}

// Validate checks that the Status value is one of the defined statuses.
// StatusUnknown (0) and any other value are invalid.
func (s Status) Validate() error {
	if _, ok := transitions[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name of the status ("open", "picked_up", ...).
// Implements fmt.Stringer and is safe on any value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transition is permitted.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ValidTransitions returns the statuses reachable from s in one move.
// Terminal and invalid statuses yield an empty (non-nil) slice.
func (s Status) ValidTransitions() []Status {
	next, ok := transitions[s]
	if !ok {
		return []Status{}
	}
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// CanTransitionTo reports whether the table permits moving from s to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// StatusFromString parses the wire name of a status.
// Returns an error for unknown names, including "unknown" itself.
func StatusFromString(raw string) (Status, error) {
	for status, name := range getStatusStrings() {
		if name == raw && status != StatusUnknown {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("status is invalid",
		fmt.Errorf("%q is not a valid status", raw))
}
