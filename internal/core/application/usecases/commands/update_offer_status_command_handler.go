package commands

import (
	"context"
	"errors"

	"lastmile/internal/core/domain/model/offer"
	"lastmile/internal/core/domain/model/tracking"
	"lastmile/internal/pkg/errs"
)

// eventForOfferStatus mirrors an offer-level status change into the tracking
// session so both state machines tell the same story regardless of which
// side the change arrived on.
var eventForOfferStatus = map[offer.Status]tracking.EventType{
	offer.StatusPickedUp:  tracking.EventPackagePickedUp,
	offer.StatusInTransit: tracking.EventTransitStarted,
	offer.StatusDelivered: tracking.EventPackageDelivered,
	offer.StatusCompleted: tracking.EventDeliveryCompleted,
	offer.StatusCancelled: tracking.EventDeliveryCancelled,
}

// UpdateOfferStatusCommandHandler handles direct offer status changes.
// The offer decides whether the actor may make the transition; an accepted
// change is mirrored into the tracking session when one exists.
type UpdateOfferStatusCommandHandler struct {
	uowFactory UoWFactory
}

// NewUpdateOfferStatusCommandHandler creates a handler for status change operations.
func NewUpdateOfferStatusCommandHandler(uowFactory UoWFactory) UpdateOfferStatusCommandHandler {
	return UpdateOfferStatusCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the status change command.
func (h *UpdateOfferStatusCommandHandler) Handle(ctx context.Context, cmd UpdateOfferStatusCommand) error {
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

	offerRepo := uow.OfferRepository()
	aggregate, err := offerRepo.Get(ctx, cmd.OfferID())
	if err != nil {
		return err
	}

	if _, err = aggregate.UpdateStatus(cmd.Target(), cmd.ActorID(), offer.TransitionMeta{
		Notes:    cmd.Notes(),
		Location: cmd.Location(),
	}); err != nil {
		return err
	}

	if err = offerRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = h.mirrorToSession(ctx, uow, cmd); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func (h *UpdateOfferStatusCommandHandler) mirrorToSession(
	ctx context.Context, uow UoW, cmd UpdateOfferStatusCommand,
) error {
	eventType, ok := eventForOfferStatus[cmd.Target()]
	if !ok {
		return nil
	}

	trackingRepo := uow.TrackingRepository()
	session, err := trackingRepo.GetByOfferID(ctx, cmd.OfferID())
	if err != nil {
		// Offers cancelled before acceptance have no session to mirror into.
		if errors.Is(err, errs.ErrObjectNotFound) {
			return nil
		}
		return err
	}

	if session.Status().IsTerminal() {
		return nil
	}

	if err = session.AddEvent(eventType, tracking.EventMeta{
		Notes:    cmd.Notes(),
		Location: cmd.Location(),
	}); err != nil {
		return err
	}

	return trackingRepo.Update(ctx, session)
}
