package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/tracking"
	"lastmile/internal/pkg/guard"
)

var (
	ErrAddPickupAttemptCommandIsNotConstructed = errors.New(
		"AddPickupAttemptCommand must be created via NewAddPickupAttemptCommand constructor",
	)
	ErrAddDeliveryAttemptCommandIsNotConstructed = errors.New(
		"AddDeliveryAttemptCommand must be created via NewAddDeliveryAttemptCommand constructor",
	)
)

// attemptCommand carries the shared payload of pickup and delivery attempts.
type attemptCommand struct {
	offerID kernel.UUID
	input   tracking.AttemptInput
}

func (c *attemptCommand) setOfferID(offerID kernel.UUID) error {
	if err := offerID.Validate(); err != nil {
		return err
	}

	c.offerID = offerID
	return nil
}

// OfferID returns the identifier of the tracked offer.
func (c attemptCommand) OfferID() kernel.UUID { return c.offerID }

// Input returns the attempt details.
func (c attemptCommand) Input() tracking.AttemptInput { return c.input }

// AddPickupAttemptCommand represents a rider's pickup attempt, successful
// or not. Failed attempts with their contact log are kept for audit.
type AddPickupAttemptCommand struct { //nolint:recvcheck //using for validation
	attemptCommand

	guard guard.ConstructorGuard
}

// NewAddPickupAttemptCommand creates a command to record a pickup attempt.
func NewAddPickupAttemptCommand(
	offerID kernel.UUID, input tracking.AttemptInput,
) (AddPickupAttemptCommand, error) {
	cmd := AddPickupAttemptCommand{
		attemptCommand: attemptCommand{input: input},
		guard:          guard.NewConstructorGuard(),
	}

	if err := cmd.setOfferID(offerID); err != nil {
		return AddPickupAttemptCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AddPickupAttemptCommand) Validate() error {
	return c.guard.Validate(ErrAddPickupAttemptCommandIsNotConstructed)
}

// AddDeliveryAttemptCommand represents a rider's delivery attempt.
type AddDeliveryAttemptCommand struct { //nolint:recvcheck //using for validation
	attemptCommand

	guard guard.ConstructorGuard
}

// NewAddDeliveryAttemptCommand creates a command to record a delivery attempt.
func NewAddDeliveryAttemptCommand(
	offerID kernel.UUID, input tracking.AttemptInput,
) (AddDeliveryAttemptCommand, error) {
	cmd := AddDeliveryAttemptCommand{
		attemptCommand: attemptCommand{input: input},
		guard:          guard.NewConstructorGuard(),
	}

	if err := cmd.setOfferID(offerID); err != nil {
		return AddDeliveryAttemptCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AddDeliveryAttemptCommand) Validate() error {
	return c.guard.Validate(ErrAddDeliveryAttemptCommandIsNotConstructed)
}
