package commands

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/services"
)

// RefreshEstimateCommandHandler recomputes a session's delivery estimate.
//
// The remaining leg runs from the rider's last known location to the
// delivery address; before the first GPS fix it runs from the pickup
// address instead.
type RefreshEstimateCommandHandler struct {
	uowFactory UoWFactory
	estimator  services.RouteEstimator
}

// NewRefreshEstimateCommandHandler creates a handler for estimate refresh operations.
func NewRefreshEstimateCommandHandler(
	uowFactory UoWFactory, estimator services.RouteEstimator,
) RefreshEstimateCommandHandler {
	return RefreshEstimateCommandHandler{
		uowFactory: uowFactory,
		estimator:  estimator,
	}
}

// Handle processes the estimate refresh command.
func (h *RefreshEstimateCommandHandler) Handle(ctx context.Context, cmd RefreshEstimateCommand) error {
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

	aggregate, err := uow.OfferRepository().Get(ctx, cmd.OfferID())
	if err != nil {
		return err
	}

	var from kernel.GeoPoint
	if current := session.CurrentLocation(); current != nil {
		from = current.Point
	} else {
		from = aggregate.Pickup().Point()
	}

	distanceKm, duration, err := h.estimator.Estimate(
		from, aggregate.Delivery().Point(), cmd.Vehicle(), cmd.Factors(),
	)
	if err != nil {
		return err
	}

	if err = session.SetEstimate(distanceKm, duration, cmd.Factors()); err != nil {
		return err
	}

	if err = trackingRepo.Update(ctx, session); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
