package commands

import (
	"context"
)

// RecordLocationCommandHandler handles GPS location fixes from the rider.
// Fixes land in the session's bounded trail and extend the travelled
// distance used for speed metrics.
type RecordLocationCommandHandler struct {
	uowFactory TrackingUoWFactory
}

// NewRecordLocationCommandHandler creates a handler for location recording operations.
func NewRecordLocationCommandHandler(uowFactory TrackingUoWFactory) RecordLocationCommandHandler {
	return RecordLocationCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the location fix command.
func (h *RecordLocationCommandHandler) Handle(ctx context.Context, cmd RecordLocationCommand) error {
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

	if err = session.RecordLocation(cmd.Point(), cmd.Update()); err != nil {
		return err
	}

	if err = trackingRepo.Update(ctx, session); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
