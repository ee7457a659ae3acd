package commands

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/offer"
)

// CreateOfferCommandHandler handles the business logic for offer creation.
// New offers open in the "open" status and wait for a rider to accept them.
type CreateOfferCommandHandler struct {
	uowFactory OfferUoWFactory
	clock      kernel.Clock
}

// NewCreateOfferCommandHandler creates a handler for offer creation operations.
// Requires an OfferUoWFactory for transactional persistence.
func NewCreateOfferCommandHandler(uowFactory OfferUoWFactory, clock kernel.Clock) CreateOfferCommandHandler {
	return CreateOfferCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle processes the offer creation command.
// Uses a transaction to ensure the offer is properly persisted or rolled back on error.
func (h *CreateOfferCommandHandler) Handle(ctx context.Context, cmd CreateOfferCommand) error {
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

	aggregate, err := offer.NewOffer(
		cmd.OfferID(),
		cmd.BusinessID(),
		cmd.Pickup(),
		cmd.Delivery(),
		cmd.Package(),
		cmd.Payment(),
		h.clock,
	)
	if err != nil {
		return err
	}

	if err = uow.OfferRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
