package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/tracking"
	"lastmile/internal/pkg/guard"
)

var ErrRecordLocationCommandIsNotConstructed = errors.New(
	"RecordLocationCommand must be created via NewRecordLocationCommand constructor",
)

// RecordLocationCommand represents a GPS fix reported by the rider's device.
type RecordLocationCommand struct { //nolint:recvcheck //using for validation
	offerID kernel.UUID
	point   kernel.GeoPoint
	update  tracking.LocationUpdate

	guard guard.ConstructorGuard
}

// NewRecordLocationCommand creates a command to record a location fix.
// Accuracy, speed, and bearing are optional device metadata.
func NewRecordLocationCommand(
	offerID kernel.UUID, point kernel.GeoPoint, update tracking.LocationUpdate,
) (RecordLocationCommand, error) {
	cmd := RecordLocationCommand{
		update: update,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOfferID(offerID),
		cmd.setPoint(point),
	); err != nil {
		return RecordLocationCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RecordLocationCommand) Validate() error {
	return c.guard.Validate(ErrRecordLocationCommandIsNotConstructed)
}

// OfferID returns the identifier of the tracked offer.
func (c RecordLocationCommand) OfferID() kernel.UUID { return c.offerID }

// Point returns the reported coordinates.
func (c RecordLocationCommand) Point() kernel.GeoPoint { return c.point }

// Update returns the device metadata of the fix.
func (c RecordLocationCommand) Update() tracking.LocationUpdate { return c.update }

func (c *RecordLocationCommand) setOfferID(offerID kernel.UUID) error {
	if err := offerID.Validate(); err != nil {
		return err
	}

	c.offerID = offerID
	return nil
}

func (c *RecordLocationCommand) setPoint(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}

	c.point = point
	return nil
}
