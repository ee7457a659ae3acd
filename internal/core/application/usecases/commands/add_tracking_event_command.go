package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/tracking"
	"lastmile/internal/pkg/guard"
)

var ErrAddTrackingEventCommandIsNotConstructed = errors.New(
	"AddTrackingEventCommand must be created via NewAddTrackingEventCommand constructor",
)

// AddTrackingEventCommand represents a rider event on a tracking session:
// movement milestones that drive the session status, or informational
// entries that only extend the audit log.
type AddTrackingEventCommand struct { //nolint:recvcheck //using for validation
	offerID   kernel.UUID
	eventType tracking.EventType
	notes     string
	location  *kernel.GeoPoint
	metadata  map[string]string

	guard guard.ConstructorGuard
}

// NewAddTrackingEventCommand creates a command to record a tracking event.
func NewAddTrackingEventCommand(
	offerID kernel.UUID,
	eventType tracking.EventType,
	notes string,
	location *kernel.GeoPoint,
	metadata map[string]string,
) (AddTrackingEventCommand, error) {
	cmd := AddTrackingEventCommand{
		notes:    notes,
		metadata: metadata,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOfferID(offerID),
		cmd.setEventType(eventType),
		cmd.setLocation(location),
	); err != nil {
		return AddTrackingEventCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AddTrackingEventCommand) Validate() error {
	return c.guard.Validate(ErrAddTrackingEventCommandIsNotConstructed)
}

// OfferID returns the identifier of the tracked offer.
func (c AddTrackingEventCommand) OfferID() kernel.UUID { return c.offerID }

// EventType returns the recorded event type.
func (c AddTrackingEventCommand) EventType() tracking.EventType { return c.eventType }

// Notes returns the optional free-form context for the event.
func (c AddTrackingEventCommand) Notes() string { return c.notes }

// Location returns the optional location the event happened at.
func (c AddTrackingEventCommand) Location() *kernel.GeoPoint { return c.location }

// Metadata returns the optional structured payload of the event.
func (c AddTrackingEventCommand) Metadata() map[string]string { return c.metadata }

func (c *AddTrackingEventCommand) setOfferID(offerID kernel.UUID) error {
	if err := offerID.Validate(); err != nil {
		return err
	}

	c.offerID = offerID
	return nil
}

func (c *AddTrackingEventCommand) setEventType(eventType tracking.EventType) error {
	if err := eventType.Validate(); err != nil {
		return err
	}

	c.eventType = eventType
	return nil
}

func (c *AddTrackingEventCommand) setLocation(location *kernel.GeoPoint) error {
	if location != nil {
		if err := location.Validate(); err != nil {
			return err
		}
	}

	c.location = location
	return nil
}
