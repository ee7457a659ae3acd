package commands

import (
	"context"
)

// ConfirmDeliveryCommandHandler handles delivery confirmation.
// The session enforces that the rider has reached the delivery phase.
type ConfirmDeliveryCommandHandler struct {
	uowFactory TrackingUoWFactory
}

// NewConfirmDeliveryCommandHandler creates a handler for delivery confirmation operations.
func NewConfirmDeliveryCommandHandler(uowFactory TrackingUoWFactory) ConfirmDeliveryCommandHandler {
	return ConfirmDeliveryCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the delivery confirmation command.
func (h *ConfirmDeliveryCommandHandler) Handle(ctx context.Context, cmd ConfirmDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	trackingRepo := uow.TrackingRepository()
	session, err := trackingRepo.GetByOfferID(ctx, cmd.OfferID())
	if err != nil {
		return err
	}

	if err = session.ConfirmDelivery(cmd.Input()); err != nil {
		return err
	}

	if err = trackingRepo.Update(ctx, session); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
