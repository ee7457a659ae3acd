package commands_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/kernel"
)

func newCreateOfferCommand(t *testing.T) commands.CreateOfferCommand {
	t.Helper()
	cmd, err := commands.NewCreateOfferCommand(
		kernel.NewUUID(), kernel.NewUUID(),
		testWaypoint(t, 41.0082, 28.9784),
		testWaypoint(t, 41.0422, 29.0083),
		testPackage(t, 2),
		testPayment(t),
	)
	require.NoError(t, err)
	return cmd
}

func TestCreateOfferCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd := newCreateOfferCommand(t)

	repo := new(MockOfferRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OfferRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.AnythingOfType("*offer.Offer")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOfferUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCreateOfferCommandHandler(factory, kernel.FixedClock(handlerTestNow))
	err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestCreateOfferCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.CreateOfferCommand{} // not constructed properly
	factory := new(MockOfferUoWFactory)
	h := commands.NewCreateOfferCommandHandler(factory, kernel.FixedClock(handlerTestNow))
	err := h.Handle(ctx, cmd)
	require.Error(t, err)
}

func TestCreateOfferCommandHandler_Handle_AddError(t *testing.T) {
	ctx := t.Context()
	cmd := newCreateOfferCommand(t)

	repo := new(MockOfferRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OfferRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.Anything).Return(errors.New("insert failed")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOfferUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCreateOfferCommandHandler(factory, kernel.FixedClock(handlerTestNow))
	err := h.Handle(ctx, cmd)
	require.Error(t, err)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}
