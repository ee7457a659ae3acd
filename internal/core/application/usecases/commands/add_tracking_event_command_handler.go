package commands

import (
	"context"

	"lastmile/internal/core/domain/model/offer"
	"lastmile/internal/core/domain/model/tracking"
	"lastmile/internal/core/domain/services"
)

// AddTrackingEventCommandHandler handles rider events on a tracking session.
//
// Events that move the session into a status with an offer-level projection
// also advance the offer, with the assigned rider as the acting party. The
// intermediate movement statuses stay internal to the session.
type AddTrackingEventCommandHandler struct {
	uowFactory UoWFactory
	mapper     services.StatusMapper
}

// NewAddTrackingEventCommandHandler creates a handler for tracking event operations.
func NewAddTrackingEventCommandHandler(
	uowFactory UoWFactory, mapper services.StatusMapper,
) AddTrackingEventCommandHandler {
	return AddTrackingEventCommandHandler{
		uowFactory: uowFactory,
		mapper:     mapper,
	}
}

// Handle processes the tracking event command.
func (h *AddTrackingEventCommandHandler) Handle(ctx context.Context, cmd AddTrackingEventCommand) error {
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

	if err = session.AddEvent(cmd.EventType(), tracking.EventMeta{
		Notes:    cmd.Notes(),
		Location: cmd.Location(),
		Metadata: cmd.Metadata(),
	}); err != nil {
		return err
	}

	if err = trackingRepo.Update(ctx, session); err != nil {
		return err
	}

	if err = h.projectOntoOffer(ctx, uow, session, cmd); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func (h *AddTrackingEventCommandHandler) projectOntoOffer(
	ctx context.Context, uow UoW, session *tracking.Session, cmd AddTrackingEventCommand,
) error {
	target, ok := h.mapper.OfferStatusFor(session.Status())
	if !ok {
		return nil
	}

	offerRepo := uow.OfferRepository()
	aggregate, err := offerRepo.Get(ctx, cmd.OfferID())
	if err != nil {
		return err
	}

	if aggregate.Status() == target {
		return nil
	}

	if _, err = aggregate.UpdateStatus(target, session.RiderID(), offer.TransitionMeta{
		Notes:    cmd.Notes(),
		Location: cmd.Location(),
	}); err != nil {
		return err
	}

	return offerRepo.Update(ctx, aggregate)
}
