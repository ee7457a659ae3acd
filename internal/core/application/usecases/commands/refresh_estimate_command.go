package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/tracking"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/pkg/guard"
)

var ErrRefreshEstimateCommandIsNotConstructed = errors.New(
	"RefreshEstimateCommand must be created via NewRefreshEstimateCommand constructor",
)

// RefreshEstimateCommand represents a request to recompute a session's ETA
// under current traffic, weather, and time-of-day conditions.
type RefreshEstimateCommand struct { //nolint:recvcheck //using for validation
	offerID kernel.UUID
	vehicle services.VehicleType
	factors tracking.EstimateFactors

	guard guard.ConstructorGuard
}

// NewRefreshEstimateCommand creates a command to refresh a delivery estimate.
// Unknown factor values are treated as neutral by the estimator.
func NewRefreshEstimateCommand(
	offerID kernel.UUID, vehicle services.VehicleType, factors tracking.EstimateFactors,
) (RefreshEstimateCommand, error) {
	cmd := RefreshEstimateCommand{
		factors: factors,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOfferID(offerID),
		cmd.setVehicle(vehicle),
	); err != nil {
		return RefreshEstimateCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RefreshEstimateCommand) Validate() error {
	return c.guard.Validate(ErrRefreshEstimateCommandIsNotConstructed)
}

// OfferID returns the identifier of the tracked offer.
func (c RefreshEstimateCommand) OfferID() kernel.UUID { return c.offerID }

// Vehicle returns the rider's vehicle type.
func (c RefreshEstimateCommand) Vehicle() services.VehicleType { return c.vehicle }

// Factors returns the conditions to estimate under.
func (c RefreshEstimateCommand) Factors() tracking.EstimateFactors { return c.factors }

func (c *RefreshEstimateCommand) setOfferID(offerID kernel.UUID) error {
	if err := offerID.Validate(); err != nil {
		return err
	}

	c.offerID = offerID
	return nil
}

func (c *RefreshEstimateCommand) setVehicle(vehicle services.VehicleType) error {
	if err := vehicle.Validate(); err != nil {
		return err
	}

	c.vehicle = vehicle
	return nil
}
