package commands

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/offer"
	"lastmile/internal/core/domain/model/tracking"
	"lastmile/internal/core/domain/services"
)

// AddAttemptCommandHandler handles pickup and delivery attempts.
//
// Every attempt is logged. A successful one advances the session, and the
// resulting status is projected onto the offer the same way tracking events
// are.
type AddAttemptCommandHandler struct {
	uowFactory UoWFactory
	mapper     services.StatusMapper
}

// NewAddAttemptCommandHandler creates a handler for attempt recording operations.
func NewAddAttemptCommandHandler(
	uowFactory UoWFactory, mapper services.StatusMapper,
) AddAttemptCommandHandler {
	return AddAttemptCommandHandler{
		uowFactory: uowFactory,
		mapper:     mapper,
	}
}

// HandlePickup processes a pickup attempt command.
func (h *AddAttemptCommandHandler) HandlePickup(ctx context.Context, cmd AddPickupAttemptCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.handle(ctx, cmd.OfferID(), cmd.Input(),
		(*tracking.Session).AddPickupAttempt)
}

// HandleDelivery processes a delivery attempt command.
func (h *AddAttemptCommandHandler) HandleDelivery(ctx context.Context, cmd AddDeliveryAttemptCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.handle(ctx, cmd.OfferID(), cmd.Input(),
		(*tracking.Session).AddDeliveryAttempt)
}

func (h *AddAttemptCommandHandler) handle(
	ctx context.Context,
	offerID kernel.UUID,
	input tracking.AttemptInput,
	record func(*tracking.Session, tracking.AttemptInput) error,
) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	trackingRepo := uow.TrackingRepository()
	session, err := trackingRepo.GetByOfferID(ctx, offerID)
	if err != nil {
		return err
	}

	if err = record(session, input); err != nil {
		return err
	}

	if err = trackingRepo.Update(ctx, session); err != nil {
		return err
	}

	if input.Successful {
		if err = h.projectOntoOffer(ctx, uow, session); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}

func (h *AddAttemptCommandHandler) projectOntoOffer(
	ctx context.Context, uow UoW, session *tracking.Session,
) error {
	target, ok := h.mapper.OfferStatusFor(session.Status())
	if !ok {
		return nil
	}

	offerRepo := uow.OfferRepository()
	aggregate, err := offerRepo.Get(ctx, session.OfferID())
	if err != nil {
		return err
	}

	if aggregate.Status() == target {
		return nil
	}

	if _, err = aggregate.UpdateStatus(target, session.RiderID(), offer.TransitionMeta{}); err != nil {
		return err
	}

	return offerRepo.Update(ctx, aggregate)
}
