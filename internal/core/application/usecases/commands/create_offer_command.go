package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/offer"
	"lastmile/internal/pkg/guard"
)

var ErrCreateOfferCommandIsNotConstructed = errors.New(
	"CreateOfferCommand must be created via NewCreateOfferCommand constructor",
)

// CreateOfferCommand represents a request to publish a new delivery offer.
// Encapsulates the route, the package, and the payment terms.
//
// Example:
//
//	offerID := kernel.NewUUID()
//	cmd, err := NewCreateOfferCommand(offerID, businessID, pickup, delivery, pkg, payment)
//	if err != nil {
//	    return fmt.Errorf("invalid offer data: %w", err)
//	}
//
//	handler := NewCreateOfferCommandHandler(uowFactory, clock)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create offer: %w", err)
//	}
type CreateOfferCommand struct { //nolint:recvcheck //using for validation
	offerID    kernel.UUID
	businessID kernel.UUID
	pickup     offer.Waypoint
	delivery   offer.Waypoint
	pkg        offer.Package
	payment    offer.Payment

	guard guard.ConstructorGuard
}

// NewCreateOfferCommand creates a command to publish a delivery offer.
// All value objects must already be constructed and valid.
func NewCreateOfferCommand(
	offerID kernel.UUID,
	businessID kernel.UUID,
	pickup offer.Waypoint,
	delivery offer.Waypoint,
	pkg offer.Package,
	payment offer.Payment,
) (CreateOfferCommand, error) {
	cmd := CreateOfferCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOfferID(offerID),
		cmd.setBusinessID(businessID),
		cmd.setPickup(pickup),
		cmd.setDelivery(delivery),
		cmd.setPackage(pkg),
		cmd.setPayment(payment),
	); err != nil {
		return CreateOfferCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOfferCommand) Validate() error {
	return c.guard.Validate(ErrCreateOfferCommandIsNotConstructed)
}

// OfferID returns the unique identifier for the offer.
func (c CreateOfferCommand) OfferID() kernel.UUID { return c.offerID }

// BusinessID returns the identifier of the business publishing the offer.
func (c CreateOfferCommand) BusinessID() kernel.UUID { return c.businessID }

// Pickup returns the pickup waypoint.
func (c CreateOfferCommand) Pickup() offer.Waypoint { return c.pickup }

// Delivery returns the delivery waypoint.
func (c CreateOfferCommand) Delivery() offer.Waypoint { return c.delivery }

// Package returns the package details.
func (c CreateOfferCommand) Package() offer.Package { return c.pkg }

// Payment returns the payment terms.
func (c CreateOfferCommand) Payment() offer.Payment { return c.payment }

func (c *CreateOfferCommand) setOfferID(offerID kernel.UUID) error {
	if err := offerID.Validate(); err != nil {
		return err
	}

	c.offerID = offerID
	return nil
}

func (c *CreateOfferCommand) setBusinessID(businessID kernel.UUID) error {
	if err := businessID.Validate(); err != nil {
		return err
	}

	c.businessID = businessID
	return nil
}

func (c *CreateOfferCommand) setPickup(pickup offer.Waypoint) error {
	if err := pickup.Validate(); err != nil {
		return err
	}

	c.pickup = pickup
	return nil
}

func (c *CreateOfferCommand) setDelivery(delivery offer.Waypoint) error {
	if err := delivery.Validate(); err != nil {
		return err
	}

	c.delivery = delivery
	return nil
}

func (c *CreateOfferCommand) setPackage(pkg offer.Package) error {
	if err := pkg.Validate(); err != nil {
		return err
	}

	c.pkg = pkg
	return nil
}

func (c *CreateOfferCommand) setPayment(payment offer.Payment) error {
	if err := payment.Validate(); err != nil {
		return err
	}

	c.payment = payment
	return nil
}
