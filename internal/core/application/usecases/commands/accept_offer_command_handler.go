package commands

import (
	"context"
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/offer"
	"lastmile/internal/core/domain/model/tracking"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/errs"
)

// ErrVehicleCannotCarryPackage is returned when the rider's vehicle lacks the
// weight or volume capacity for the offered package.
var ErrVehicleCannotCarryPackage = errors.New("vehicle cannot carry the package")

// AcceptOfferCommandHandler handles the business logic for offer acceptance.
//
// Acceptance is the coupling point of the two state machines: the claim is
// made through a conditional update so concurrent riders cannot both win,
// and the winner gets a tracking session seeded with an initial estimate.
// A repeated acceptance by the already-assigned rider succeeds without
// changing anything.
type AcceptOfferCommandHandler struct {
	uowFactory UoWFactory
	estimator  services.RouteEstimator
	clock      kernel.Clock
}

// NewAcceptOfferCommandHandler creates a handler for offer acceptance operations.
func NewAcceptOfferCommandHandler(
	uowFactory UoWFactory, estimator services.RouteEstimator, clock kernel.Clock,
) AcceptOfferCommandHandler {
	return AcceptOfferCommandHandler{
		uowFactory: uowFactory,
		estimator:  estimator,
		clock:      clock,
	}
}

// Handle processes the acceptance command.
//
// Flow: load the offer, check vehicle capacity, apply the domain transition,
// claim the row conditionally, then ensure a tracking session exists. When
// the conditional claim loses a race the offer is re-read: the same rider
// having won means idempotent success, anyone else is a conflict.
func (h *AcceptOfferCommandHandler) Handle(ctx context.Context, cmd AcceptOfferCommand) error {
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

	canCarry, err := h.estimator.CanCarry(aggregate.Package(), cmd.Vehicle())
	if err != nil {
		return err
	}
	if !canCarry {
		return ErrVehicleCannotCarryPackage
	}

	alreadyMine := aggregate.Rider() != nil && aggregate.Rider().IsEqual(cmd.RiderID())

	if _, err = aggregate.UpdateStatus(
		offer.StatusAccepted, cmd.RiderID(), offer.TransitionMeta{},
	); err != nil {
		return err
	}

	if !alreadyMine {
		if err = offerRepo.Accept(ctx, aggregate); err != nil {
			if !errors.Is(err, ports.ErrOfferAlreadyAccepted) {
				return err
			}
			current, getErr := offerRepo.Get(ctx, cmd.OfferID())
			if getErr != nil {
				return getErr
			}
			if current.Rider() == nil || !current.Rider().IsEqual(cmd.RiderID()) {
				return offer.ErrAcceptedByAnotherRider
			}
			aggregate = current
		}
	}

	if err = h.ensureSession(ctx, uow.TrackingRepository(), aggregate, cmd); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func (h *AcceptOfferCommandHandler) ensureSession(
	ctx context.Context,
	trackingRepo ports.TrackingRepository,
	aggregate *offer.Offer,
	cmd AcceptOfferCommand,
) error {
	_, err := trackingRepo.GetByOfferID(ctx, cmd.OfferID())
	if err == nil {
		return nil
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return err
	}

	session, err := tracking.NewSession(kernel.NewUUID(), cmd.OfferID(), cmd.RiderID(), h.clock)
	if err != nil {
		return err
	}

	distanceKm, duration, err := h.estimator.Estimate(
		aggregate.Pickup().Point(), aggregate.Delivery().Point(),
		cmd.Vehicle(), tracking.EstimateFactors{},
	)
	if err != nil {
		return err
	}
	if err = session.SetEstimate(distanceKm, duration, tracking.EstimateFactors{}); err != nil {
		return err
	}

	return trackingRepo.Add(ctx, session)
}
