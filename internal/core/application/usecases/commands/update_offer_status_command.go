package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/offer"
	"lastmile/internal/pkg/guard"
)

var ErrUpdateOfferStatusCommandIsNotConstructed = errors.New(
	"UpdateOfferStatusCommand must be created via NewUpdateOfferStatusCommand constructor",
)

// UpdateOfferStatusCommand represents a request to move an offer to a new
// lifecycle status on behalf of an actor. Who may request which transition
// is decided by the offer itself.
type UpdateOfferStatusCommand struct { //nolint:recvcheck //using for validation
	offerID  kernel.UUID
	actorID  kernel.UUID
	target   offer.Status
	notes    string
	location *kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewUpdateOfferStatusCommand creates a command to change an offer's status.
// Notes and location are optional context recorded in the audit trail.
func NewUpdateOfferStatusCommand(
	offerID, actorID kernel.UUID, target offer.Status, notes string, location *kernel.GeoPoint,
) (UpdateOfferStatusCommand, error) {
	cmd := UpdateOfferStatusCommand{
		notes: notes,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOfferID(offerID),
		cmd.setActorID(actorID),
		cmd.setTarget(target),
		cmd.setLocation(location),
	); err != nil {
		return UpdateOfferStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateOfferStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOfferStatusCommandIsNotConstructed)
}

// OfferID returns the identifier of the offer being changed.
func (c UpdateOfferStatusCommand) OfferID() kernel.UUID { return c.offerID }

// ActorID returns the identifier of the party requesting the change.
func (c UpdateOfferStatusCommand) ActorID() kernel.UUID { return c.actorID }

// Target returns the requested status.
func (c UpdateOfferStatusCommand) Target() offer.Status { return c.target }

// Notes returns the optional free-form context for the change.
func (c UpdateOfferStatusCommand) Notes() string { return c.notes }

// Location returns the optional location the change was made from.
func (c UpdateOfferStatusCommand) Location() *kernel.GeoPoint { return c.location }

func (c *UpdateOfferStatusCommand) setOfferID(offerID kernel.UUID) error {
	if err := offerID.Validate(); err != nil {
		return err
	}

	c.offerID = offerID
	return nil
}

func (c *UpdateOfferStatusCommand) setActorID(actorID kernel.UUID) error {
	if err := actorID.Validate(); err != nil {
		return err
	}

	c.actorID = actorID
	return nil
}

func (c *UpdateOfferStatusCommand) setTarget(target offer.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}

	c.target = target
	return nil
}

func (c *UpdateOfferStatusCommand) setLocation(location *kernel.GeoPoint) error {
	if location != nil {
		if err := location.Validate(); err != nil {
			return err
		}
	}

	c.location = location
	return nil
}
