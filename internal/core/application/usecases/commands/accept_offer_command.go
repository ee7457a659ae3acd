package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/pkg/guard"
)

var ErrAcceptOfferCommandIsNotConstructed = errors.New(
	"AcceptOfferCommand must be created via NewAcceptOfferCommand constructor",
)

// AcceptOfferCommand represents a rider's request to claim an open offer.
type AcceptOfferCommand struct { //nolint:recvcheck //using for validation
	offerID kernel.UUID
	riderID kernel.UUID
	vehicle services.VehicleType

	guard guard.ConstructorGuard
}

// NewAcceptOfferCommand creates a command for a rider to accept an offer.
// The vehicle type is checked against the package before the claim is made.
func NewAcceptOfferCommand(
	offerID, riderID kernel.UUID, vehicle services.VehicleType,
) (AcceptOfferCommand, error) {
	cmd := AcceptOfferCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOfferID(offerID),
		cmd.setRiderID(riderID),
		cmd.setVehicle(vehicle),
	); err != nil {
		return AcceptOfferCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AcceptOfferCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOfferCommandIsNotConstructed)
}

// OfferID returns the identifier of the offer being claimed.
func (c AcceptOfferCommand) OfferID() kernel.UUID { return c.offerID }

// RiderID returns the identifier of the claiming rider.
func (c AcceptOfferCommand) RiderID() kernel.UUID { return c.riderID }

// Vehicle returns the rider's vehicle type.
func (c AcceptOfferCommand) Vehicle() services.VehicleType { return c.vehicle }

func (c *AcceptOfferCommand) setOfferID(offerID kernel.UUID) error {
	if err := offerID.Validate(); err != nil {
		return err
	}

	c.offerID = offerID
	return nil
}

func (c *AcceptOfferCommand) setRiderID(riderID kernel.UUID) error {
	if err := riderID.Validate(); err != nil {
		return err
	}

	c.riderID = riderID
	return nil
}

func (c *AcceptOfferCommand) setVehicle(vehicle services.VehicleType) error {
	if err := vehicle.Validate(); err != nil {
		return err
	}

	c.vehicle = vehicle
	return nil
}
