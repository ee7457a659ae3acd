package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/offer"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/errs"
)

func acceptHandler(factory commands.UoWFactory) commands.AcceptOfferCommandHandler {
	return commands.NewAcceptOfferCommandHandler(
		factory, services.NewRouteEstimator(), kernel.FixedClock(handlerTestNow))
}

func TestAcceptOfferCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	aggregate := testOffer(t, kernel.NewUUID())
	riderID := kernel.NewUUID()
	cmd, err := commands.NewAcceptOfferCommand(aggregate.ID(), riderID, services.VehicleBike)
	require.NoError(t, err)

	offerRepo := new(MockOfferRepository)
	trackingRepo := new(MockTrackingRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OfferRepository").Return(offerRepo).Once(),
		offerRepo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		offerRepo.On("Accept", mock.Anything, aggregate).Return(nil).Once(),
		uow.On("TrackingRepository").Return(trackingRepo).Once(),
		trackingRepo.On("GetByOfferID", mock.Anything, aggregate.ID()).
			Return(nil, errs.NewObjectNotFoundError("offerID", aggregate.ID())).Once(),
		trackingRepo.On("Add", mock.Anything, mock.AnythingOfType("*tracking.Session")).
			Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := acceptHandler(factory)
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, offer.StatusAccepted, aggregate.Status())
	require.NotNil(t, aggregate.Rider())
	assert.True(t, aggregate.Rider().IsEqual(riderID))
	offerRepo.AssertExpectations(t)
	trackingRepo.AssertExpectations(t)
}

func TestAcceptOfferCommandHandler_Handle_VehicleTooSmall(t *testing.T) {
	ctx := t.Context()
	businessID := kernel.NewUUID()
	aggregate, err := offer.NewOffer(
		kernel.NewUUID(), businessID,
		testWaypoint(t, 41.0082, 28.9784),
		testWaypoint(t, 41.0422, 29.0083),
		testPackage(t, 40), // too heavy for a bike
		testPayment(t),
		kernel.FixedClock(handlerTestNow),
	)
	require.NoError(t, err)

	cmd, err := commands.NewAcceptOfferCommand(aggregate.ID(), kernel.NewUUID(), services.VehicleBike)
	require.NoError(t, err)

	offerRepo := new(MockOfferRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OfferRepository").Return(offerRepo).Once(),
		offerRepo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := acceptHandler(factory)
	err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, commands.ErrVehicleCannotCarryPackage)
	assert.Equal(t, offer.StatusOpen, aggregate.Status())
}

func TestAcceptOfferCommandHandler_Handle_LostRaceToAnotherRider(t *testing.T) {
	ctx := t.Context()
	businessID := kernel.NewUUID()
	aggregate := testOffer(t, businessID)
	cmd, err := commands.NewAcceptOfferCommand(aggregate.ID(), kernel.NewUUID(), services.VehicleBike)
	require.NoError(t, err)

	// The state another rider's concurrent claim left behind.
	winner := testOffer(t, businessID)
	_, err = winner.UpdateStatus(offer.StatusAccepted, kernel.NewUUID(), offer.TransitionMeta{})
	require.NoError(t, err)

	offerRepo := new(MockOfferRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OfferRepository").Return(offerRepo).Once(),
		offerRepo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		offerRepo.On("Accept", mock.Anything, aggregate).
			Return(ports.ErrOfferAlreadyAccepted).Once(),
		offerRepo.On("Get", mock.Anything, aggregate.ID()).Return(winner, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := acceptHandler(factory)
	err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, offer.ErrAcceptedByAnotherRider)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestAcceptOfferCommandHandler_Handle_IdempotentForSameRider(t *testing.T) {
	ctx := t.Context()
	aggregate := testOffer(t, kernel.NewUUID())
	riderID := kernel.NewUUID()
	_, err := aggregate.UpdateStatus(offer.StatusAccepted, riderID, offer.TransitionMeta{})
	require.NoError(t, err)

	cmd, err := commands.NewAcceptOfferCommand(aggregate.ID(), riderID, services.VehicleBike)
	require.NoError(t, err)

	session := testSession(t, aggregate.ID(), riderID)

	offerRepo := new(MockOfferRepository)
	trackingRepo := new(MockTrackingRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OfferRepository").Return(offerRepo).Once(),
		offerRepo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		uow.On("TrackingRepository").Return(trackingRepo).Once(),
		trackingRepo.On("GetByOfferID", mock.Anything, aggregate.ID()).Return(session, nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := acceptHandler(factory)
	require.NoError(t, h.Handle(ctx, cmd))

	// No conditional claim and no new session for a repeated acceptance.
	offerRepo.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything)
	trackingRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestAcceptOfferCommandHandler_Handle_BusinessCannotAccept(t *testing.T) {
	ctx := t.Context()
	businessID := kernel.NewUUID()
	aggregate := testOffer(t, businessID)
	cmd, err := commands.NewAcceptOfferCommand(aggregate.ID(), businessID, services.VehicleBike)
	require.NoError(t, err)

	offerRepo := new(MockOfferRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OfferRepository").Return(offerRepo).Once(),
		offerRepo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := acceptHandler(factory)
	err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, offer.ErrOnlyRidersCanAccept)
}
