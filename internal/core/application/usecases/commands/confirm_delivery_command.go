package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/tracking"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrConfirmDeliveryCommandIsNotConstructed = errors.New(
	"ConfirmDeliveryCommand must be created via NewConfirmDeliveryCommand constructor",
)

// ConfirmDeliveryCommand represents the rider's proof of hand-over:
// a signature, a photo, a PIN, or a contactless drop.
type ConfirmDeliveryCommand struct { //nolint:recvcheck //using for validation
	offerID kernel.UUID
	input   tracking.ConfirmationInput

	guard guard.ConstructorGuard
}

// NewConfirmDeliveryCommand creates a command to confirm the delivery.
func NewConfirmDeliveryCommand(
	offerID kernel.UUID, input tracking.ConfirmationInput,
) (ConfirmDeliveryCommand, error) {
	cmd := ConfirmDeliveryCommand{
		input: input,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOfferID(offerID),
		validateConfirmationType(input.Type),
	); err != nil {
		return ConfirmDeliveryCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ConfirmDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrConfirmDeliveryCommandIsNotConstructed)
}

// OfferID returns the identifier of the tracked offer.
func (c ConfirmDeliveryCommand) OfferID() kernel.UUID { return c.offerID }

// Input returns the confirmation details.
func (c ConfirmDeliveryCommand) Input() tracking.ConfirmationInput { return c.input }

func (c *ConfirmDeliveryCommand) setOfferID(offerID kernel.UUID) error {
	if err := offerID.Validate(); err != nil {
		return err
	}

	c.offerID = offerID
	return nil
}

func validateConfirmationType(t tracking.ConfirmationType) error {
	switch t {
	case tracking.ConfirmationSignature, tracking.ConfirmationPhoto,
		tracking.ConfirmationPin, tracking.ConfirmationContactless:
		return nil
	default:
		return errs.NewValueIsInvalidError("confirmation type")
	}
}
