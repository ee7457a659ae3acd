package queries_test

import (
	"context"
	"testing"
	"time"

	"lastmile/internal/adapters/out/postgres/offerrepo"
	"lastmile/internal/adapters/out/postgres/trackingrepo"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/offer"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// mockAggregateTracker is a no-op tracker for repository use outside a unit of work.
type mockAggregateTracker struct{}

func (m *mockAggregateTracker) TrackAggregate(_ kernel.UUID, _ any) {}

// newOpenOffer builds a valid open offer for query fixtures.
func newOpenOffer(t *testing.T) *offer.Offer {
	t.Helper()

	pickupPoint, err := kernel.NewGeoPoint(41.0255, 28.9744)
	if err != nil {
		t.Fatal(err)
	}
	deliveryPoint, err := kernel.NewGeoPoint(41.0422, 29.0067)
	if err != nil {
		t.Fatal(err)
	}

	pickup, err := offer.NewWaypoint("12 Galata St", pickupPoint, "Deniz", "+90 555 000 0001", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	delivery, err := offer.NewWaypoint("7 Moda Ave", deliveryPoint, "Ece", "+90 555 000 0002", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	pkg, err := offer.NewPackage(2.5, 30, 20, 15, false)
	if err != nil {
		t.Fatal(err)
	}
	payment, err := offer.NewPayment(2500, "TRY", "card")
	if err != nil {
		t.Fatal(err)
	}

	aggregate, err := offer.NewOffer(
		kernel.NewUUID(), kernel.NewUUID(), pickup, delivery, pkg, payment, kernel.SystemClock(),
	)
	if err != nil {
		t.Fatal(err)
	}
	return aggregate
}

type GetOpenOffersQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	handler   queries.GetOpenOffersQueryHandler
	offerRepo *offerrepo.GormOfferRepository
}

func (suite *GetOpenOffersQueryHandlerTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(&offerrepo.OfferDTO{}, &trackingrepo.SessionDTO{})
	suite.Require().NoError(err)

	suite.handler = queries.NewGetOpenOffersQueryHandler(db)
	suite.offerRepo = offerrepo.NewGormOfferRepository(db, &mockAggregateTracker{}, kernel.SystemClock())
}

func (suite *GetOpenOffersQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *GetOpenOffersQueryHandlerTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE offers CASCADE").Error
	suite.Require().NoError(err)
}

func (suite *GetOpenOffersQueryHandlerTestSuite) TestHandle_EmptyDatabase_ReturnsEmptySlice() {
	query := queries.NewGetOpenOffersQuery()

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *GetOpenOffersQueryHandlerTestSuite) TestHandle_WithOnlyAcceptedOffers_ReturnsEmptySlice() {
	ctx := context.Background()

	aggregate := newOpenOffer(suite.T())
	_, err := aggregate.UpdateStatus(offer.StatusAccepted, kernel.NewUUID(), offer.TransitionMeta{})
	suite.Require().NoError(err)
	err = suite.offerRepo.Add(ctx, aggregate)
	suite.Require().NoError(err)

	query := queries.NewGetOpenOffersQuery()

	result, err := suite.handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Empty(result)
}

func (suite *GetOpenOffersQueryHandlerTestSuite) TestHandle_WithOpenOffers_ReturnsThemOldestFirst() {
	ctx := context.Background()

	offer1 := newOpenOffer(suite.T())
	err := suite.offerRepo.Add(ctx, offer1)
	suite.Require().NoError(err)

	offer2 := newOpenOffer(suite.T())
	err = suite.offerRepo.Add(ctx, offer2)
	suite.Require().NoError(err)

	// An accepted offer must not leak into the board
	taken := newOpenOffer(suite.T())
	_, err = taken.UpdateStatus(offer.StatusAccepted, kernel.NewUUID(), offer.TransitionMeta{})
	suite.Require().NoError(err)
	err = suite.offerRepo.Add(ctx, taken)
	suite.Require().NoError(err)

	query := queries.NewGetOpenOffersQuery()

	result, err := suite.handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 2)

	suite.Equal(offer1.ID(), result[0].ID)
	suite.Equal(offer2.ID(), result[1].ID)

	first := result[0]
	suite.Equal(offer1.BusinessID(), first.BusinessID)
	suite.Equal("12 Galata St", first.PickupAddress)
	suite.Equal("7 Moda Ave", first.DeliveryAddress)
	suite.InDelta(2.5, first.WeightKg, 1e-9)
	suite.Equal(int64(2500), first.Amount)
	suite.Equal("TRY", first.Currency)
	suite.False(first.CreatedAt.IsZero())
}

func (suite *GetOpenOffersQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	result, err := suite.handler.Handle(context.Background(), queries.GetOpenOffersQuery{})

	suite.Require().Error(err)
	suite.ErrorIs(err, queries.ErrGetOpenOffersQueryIsNotConstructed)
	suite.Nil(result)
}

func TestGetOpenOffersQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetOpenOffersQueryHandlerTestSuite))
}
