package tracking

import (
	"fmt"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
)

// EventType names a tracking event appended to the session's event log.
type EventType string

// Event types. The first group drives a status change through the
// event -> status table; the second group is purely informational.
const (
	EventOfferAccepted     EventType = "offer_accepted"
	EventHeadingToPickup   EventType = "heading_to_pickup"
	EventArrivedAtPickup   EventType = "arrived_at_pickup"
	EventPackagePickedUp   EventType = "package_picked_up"
	EventTransitStarted    EventType = "transit_started"
	EventArrivedAtDelivery EventType = "arrived_at_delivery"
	EventPackageDelivered  EventType = "package_delivered"
	EventDeliveryCompleted EventType = "delivery_completed"
	EventDeliveryCancelled EventType = "delivery_cancelled"

	EventLocationUpdated   EventType = "location_updated"
	EventIssueReported     EventType = "issue_reported"
	EventIssueResolved     EventType = "issue_resolved"
	EventPickupAttempted   EventType = "pickup_attempted"
	EventDeliveryAttempted EventType = "delivery_attempted"
	EventDeliveryConfirmed EventType = "delivery_confirmed"
)

// eventStatuses is the explicit event -> status table. Events absent from
// the table leave the session status untouched.
var eventStatuses = map[EventType]SessionStatus{
	EventOfferAccepted:     SessionAccepted,
	EventHeadingToPickup:   SessionHeadingToPickup,
	EventArrivedAtPickup:   SessionArrivedAtPickup,
	EventPackagePickedUp:   SessionPickedUp,
	EventTransitStarted:    SessionInTransit,
	EventArrivedAtDelivery: SessionArrivedAtDelivery,
	EventPackageDelivered:  SessionDelivered,
	EventDeliveryCompleted: SessionCompleted,
	EventDeliveryCancelled: SessionCancelled,
}

// knownEventTypes lists every accepted event type, including the
// informational ones.
var knownEventTypes = map[EventType]struct{}{
	EventOfferAccepted:     {},
	EventHeadingToPickup:   {},
	EventArrivedAtPickup:   {},
	EventPackagePickedUp:   {},
	EventTransitStarted:    {},
	EventArrivedAtDelivery: {},
	EventPackageDelivered:  {},
	EventDeliveryCompleted: {},
	EventDeliveryCancelled: {},
	EventLocationUpdated:   {},
	EventIssueReported:     {},
	EventIssueResolved:     {},
	EventPickupAttempted:   {},
	EventDeliveryAttempted: {},
	EventDeliveryConfirmed: {},
}

// Validate checks that the event type is one of the defined values.
func (t EventType) Validate() error {
	if _, ok := knownEventTypes[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("event type is invalid",
			fmt.Errorf("%q is not a valid event type", string(t)))
	}
	return nil
}

// StatusForEvent returns the session status the event transitions to, and
// whether the event drives a transition at all.
func StatusForEvent(t EventType) (SessionStatus, bool) {
	status, ok := eventStatuses[t]
	return status, ok
}

// Event is one immutable entry of the session's append-only event log.
// Events are appended in arrival order; GPS and network jitter mean the
// timestamps are only approximately ordered and are never re-sorted.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Notes     string
	Location  *kernel.GeoPoint
	Metadata  map[string]string
}

// EventMeta carries optional context recorded with an event.
type EventMeta struct {
	Notes    string
	Location *kernel.GeoPoint
	Metadata map[string]string
}
