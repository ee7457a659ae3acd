package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/offer"
	"lastmile/internal/core/domain/model/tracking"
	"lastmile/internal/core/ports"
)

var handlerTestNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type MockOfferRepository struct{ mock.Mock }

func (m *MockOfferRepository) Add(ctx context.Context, o *offer.Offer) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOfferRepository) Update(ctx context.Context, o *offer.Offer) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOfferRepository) Get(ctx context.Context, id kernel.UUID) (*offer.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offer.Offer), args.Error(1)
}

func (m *MockOfferRepository) GetAllOpen(ctx context.Context) ([]*offer.Offer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*offer.Offer), args.Error(1)
}

func (m *MockOfferRepository) GetAllByBusiness(
	ctx context.Context, businessID kernel.UUID,
) ([]*offer.Offer, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*offer.Offer), args.Error(1)
}

func (m *MockOfferRepository) GetAllByRider(
	ctx context.Context, riderID kernel.UUID,
) ([]*offer.Offer, error) {
	args := m.Called(ctx, riderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*offer.Offer), args.Error(1)
}

func (m *MockOfferRepository) Accept(ctx context.Context, o *offer.Offer) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

type MockTrackingRepository struct{ mock.Mock }

func (m *MockTrackingRepository) Add(ctx context.Context, s *tracking.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockTrackingRepository) Update(ctx context.Context, s *tracking.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockTrackingRepository) Get(ctx context.Context, id kernel.UUID) (*tracking.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tracking.Session), args.Error(1)
}

func (m *MockTrackingRepository) GetByOfferID(
	ctx context.Context, offerID kernel.UUID,
) (*tracking.Session, error) {
	args := m.Called(ctx, offerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tracking.Session), args.Error(1)
}

func (m *MockTrackingRepository) GetAllActive(ctx context.Context) ([]*tracking.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tracking.Session), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OfferRepository() ports.OfferRepository {
	args := m.Called()
	return args.Get(0).(ports.OfferRepository)
}

func (m *MockUoW) TrackingRepository() ports.TrackingRepository {
	args := m.Called()
	return args.Get(0).(ports.TrackingRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockOfferUoWFactory struct{ mock.Mock }

func (m *MockOfferUoWFactory) Create() commands.OfferUoW {
	args := m.Called()
	return args.Get(0).(commands.OfferUoW)
}

type MockTrackingUoWFactory struct{ mock.Mock }

func (m *MockTrackingUoWFactory) Create() commands.TrackingUoW {
	args := m.Called()
	return args.Get(0).(commands.TrackingUoW)
}

// Fixture helpers shared by the handler tests.

func testWaypoint(t *testing.T, lat, lon float64) offer.Waypoint {
	t.Helper()
	point, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	wp, err := offer.NewWaypoint("12 Galata St", point, "A. Sender", "+90-555-0001", nil, nil)
	require.NoError(t, err)
	return wp
}

func testPackage(t *testing.T, weightKg float64) offer.Package {
	t.Helper()
	pkg, err := offer.NewPackage(weightKg, 30, 20, 15, false)
	require.NoError(t, err)
	return pkg
}

func testPayment(t *testing.T) offer.Payment {
	t.Helper()
	payment, err := offer.NewPayment(2500, "TRY", "card")
	require.NoError(t, err)
	return payment
}

func testOffer(t *testing.T, businessID kernel.UUID) *offer.Offer {
	t.Helper()
	o, err := offer.NewOffer(
		kernel.NewUUID(), businessID,
		testWaypoint(t, 41.0082, 28.9784),
		testWaypoint(t, 41.0422, 29.0083),
		testPackage(t, 2),
		testPayment(t),
		kernel.FixedClock(handlerTestNow),
	)
	require.NoError(t, err)
	return o
}

func testSession(t *testing.T, offerID, riderID kernel.UUID) *tracking.Session {
	t.Helper()
	s, err := tracking.NewSession(kernel.NewUUID(), offerID, riderID,
		kernel.FixedClock(handlerTestNow))
	require.NoError(t, err)
	return s
}
