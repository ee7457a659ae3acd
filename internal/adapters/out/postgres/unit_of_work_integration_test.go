package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	postgres_adapter "lastmile/internal/adapters/out/postgres"
	"lastmile/internal/adapters/out/postgres/offerrepo"
	"lastmile/internal/adapters/out/postgres/trackingrepo"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/offer"
	"lastmile/internal/core/domain/model/tracking"
	"lastmile/internal/core/ports"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite provides comprehensive integration testing
// for the GORM-based Unit of Work implementation with real PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

// SetupSuite initializes PostgreSQL container and database connection for all tests.
// Runs database migrations to prepare schema for unit of work operations.
func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	// Start PostgreSQL container
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	// Connect to database
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	// Run migrations
	err = db.AutoMigrate(&offerrepo.OfferDTO{}, &trackingrepo.SessionDTO{})
	suite.Require().NoError(err)

	// Create factory
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db, kernel.SystemClock())
}

// SetupTest ensures clean database state before each test.
// Truncates all tables to prevent test interference.
func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE offers, tracking_sessions").Error
	suite.Require().NoError(err)
}

// TearDownSuite cleans up PostgreSQL container after all tests complete.
func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

// TestUnitOfWorkFactory_Create verifies factory creates unit of work instances
// with proper initialization and isolation between instances.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	// Create multiple unit of work instances
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	// Verify instances are different
	suite.NotSame(uow1, uow2, "Factory should create separate instances")

	// Verify both instances provide access to repositories
	suite.NotNil(uow1.OfferRepository(), "First instance should provide offer repository")
	suite.NotNil(uow1.TrackingRepository(), "First instance should provide tracking repository")
	suite.NotNil(uow2.OfferRepository(), "Second instance should provide offer repository")
	suite.NotNil(uow2.TrackingRepository(), "Second instance should provide tracking repository")
}

// TestUnitOfWork_TransactionLifecycle verifies proper transaction management
// including begin, commit, and rollback operations.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	// Test begin transaction
	err := uow.Begin(ctx)
	suite.Require().NoError(err, "Should begin transaction successfully")

	// Test multiple begin calls are safe
	err = uow.Begin(ctx)
	suite.Require().NoError(err, "Multiple begin calls should be safe")

	// Test commit
	err = uow.Commit(ctx)
	suite.Require().NoError(err, "Should commit transaction successfully")

	// Test rollback on new transaction
	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err, "Should rollback transaction successfully")
}

// TestUnitOfWork_TransactionErrors verifies error handling for invalid transaction operations.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	// Test commit without begin
	err := uow.Commit(ctx)
	suite.Require().Error(err, "Should error when committing without active transaction")

	// Test rollback without begin
	err = uow.Rollback(ctx)
	suite.Require().Error(err, "Should error when rolling back without active transaction")
}

// TestUnitOfWork_SingleRepositoryTransaction verifies repository operations
// within a single transaction boundary work correctly.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_SingleRepositoryTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOffer := createTestOffer(suite.T())

	// Begin transaction
	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	// Add offer within transaction
	err = uow.OfferRepository().Add(ctx, testOffer)
	suite.Require().NoError(err)

	// Verify offer exists within transaction
	retrieved, err := uow.OfferRepository().Get(ctx, testOffer.ID())
	suite.Require().NoError(err)
	suite.Equal(testOffer.ID(), retrieved.ID())

	// Commit transaction
	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	// Verify offer persists after commit using new unit of work
	newUow := suite.factory.Create()
	retrieved, err = newUow.OfferRepository().Get(ctx, testOffer.ID())
	suite.Require().NoError(err)
	suite.Equal(testOffer.ID(), retrieved.ID())
	suite.Equal(offer.StatusOpen, retrieved.Status())
}

// TestUnitOfWork_MultiRepositoryTransaction verifies offer and session
// operations within a single transaction work atomically.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_MultiRepositoryTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOffer := createTestOffer(suite.T())
	riderID := kernel.NewUUID()

	// Begin transaction
	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.OfferRepository().Add(ctx, testOffer)
	suite.Require().NoError(err)

	// Rider accepts the offer; acceptance spawns a tracking session
	_, err = testOffer.UpdateStatus(offer.StatusAccepted, riderID, offer.TransitionMeta{})
	suite.Require().NoError(err)
	err = uow.OfferRepository().Accept(ctx, testOffer)
	suite.Require().NoError(err)

	session, err := tracking.NewSession(kernel.NewUUID(), testOffer.ID(), riderID, kernel.SystemClock())
	suite.Require().NoError(err)
	err = uow.TrackingRepository().Add(ctx, session)
	suite.Require().NoError(err)

	// Commit transaction
	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	// Verify both aggregates persisted correctly with relationships
	newUow := suite.factory.Create()

	retrievedOffer, err := newUow.OfferRepository().Get(ctx, testOffer.ID())
	suite.Require().NoError(err)
	suite.Equal(offer.StatusAccepted, retrievedOffer.Status())
	suite.Require().NotNil(retrievedOffer.Rider())
	suite.True(retrievedOffer.Rider().IsEqual(riderID))

	retrievedSession, err := newUow.TrackingRepository().GetByOfferID(ctx, testOffer.ID())
	suite.Require().NoError(err)
	suite.True(retrievedSession.RiderID().IsEqual(riderID))
	suite.Equal(tracking.SessionAccepted, retrievedSession.Status())
	suite.True(retrievedSession.IsActive())
}

// TestUnitOfWork_TransactionRollback verifies rollback discards all changes
// made within the transaction across both repositories.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionRollback() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOffer := createTestOffer(suite.T())
	session := createTestSession(suite.T(), testOffer.ID())

	// Begin transaction
	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.OfferRepository().Add(ctx, testOffer)
	suite.Require().NoError(err)

	err = uow.TrackingRepository().Add(ctx, session)
	suite.Require().NoError(err)

	// Verify aggregates exist within transaction
	_, err = uow.OfferRepository().Get(ctx, testOffer.ID())
	suite.Require().NoError(err)

	_, err = uow.TrackingRepository().Get(ctx, session.ID())
	suite.Require().NoError(err)

	// Rollback transaction
	err = uow.Rollback(ctx)
	suite.Require().NoError(err)

	// Verify aggregates do not exist after rollback using new unit of work
	newUow := suite.factory.Create()

	_, err = newUow.OfferRepository().Get(ctx, testOffer.ID())
	suite.Require().Error(err, "Offer should not exist after rollback")

	_, err = newUow.TrackingRepository().Get(ctx, session.ID())
	suite.Require().Error(err, "Session should not exist after rollback")
}

// TestUnitOfWork_RepositoryIsolation verifies that repositories obtained
// from different unit of work instances operate independently.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RepositoryIsolation() {
	ctx := context.Background()

	// Create two unit of work instances
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	offer1 := createTestOffer(suite.T())
	offer2 := createTestOffer(suite.T())

	// Begin transactions on both
	err := uow1.Begin(ctx)
	suite.Require().NoError(err)

	err = uow2.Begin(ctx)
	suite.Require().NoError(err)

	// Add different offers in each transaction
	err = uow1.OfferRepository().Add(ctx, offer1)
	suite.Require().NoError(err)

	err = uow2.OfferRepository().Add(ctx, offer2)
	suite.Require().NoError(err)

	// Each transaction should only see its own changes
	_, err = uow1.OfferRepository().Get(ctx, offer1.ID())
	suite.Require().NoError(err, "UOW1 should see offer1")

	_, err = uow1.OfferRepository().Get(ctx, offer2.ID())
	suite.Require().Error(err, "UOW1 should not see offer2")

	_, err = uow2.OfferRepository().Get(ctx, offer2.ID())
	suite.Require().NoError(err, "UOW2 should see offer2")

	_, err = uow2.OfferRepository().Get(ctx, offer1.ID())
	suite.Require().Error(err, "UOW2 should not see offer1")

	// Commit first transaction
	err = uow1.Commit(ctx)
	suite.Require().NoError(err)

	// Rollback second transaction
	err = uow2.Rollback(ctx)
	suite.Require().NoError(err)

	// Verify only offer1 persisted
	newUow := suite.factory.Create()
	_, err = newUow.OfferRepository().Get(ctx, offer1.ID())
	suite.Require().NoError(err, "Offer1 should persist after commit")

	_, err = newUow.OfferRepository().Get(ctx, offer2.ID())
	suite.Require().Error(err, "Offer2 should not persist after rollback")
}

// TestUnitOfWork_WithoutTransaction verifies that repositories work correctly
// without explicit transaction boundaries for immediate operations.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_WithoutTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOffer := createTestOffer(suite.T())

	// Add offer without beginning transaction (should auto-commit)
	err := uow.OfferRepository().Add(ctx, testOffer)
	suite.Require().NoError(err)

	// Verify offer persists immediately
	retrieved, err := uow.OfferRepository().Get(ctx, testOffer.ID())
	suite.Require().NoError(err)
	suite.Equal(testOffer.ID(), retrieved.ID())

	// Verify with new unit of work instance
	newUow := suite.factory.Create()
	retrieved, err = newUow.OfferRepository().Get(ctx, testOffer.ID())
	suite.Require().NoError(err)
	suite.Equal(testOffer.ID(), retrieved.ID())
}

// TestUnitOfWork_ConcurrentAcceptance verifies that two riders racing for the
// same offer resolve deterministically: exactly one claim lands, the loser
// gets ports.ErrOfferAlreadyAccepted, and the stored rider is the winner's.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_ConcurrentAcceptance() {
	ctx := context.Background()

	testOffer := createTestOffer(suite.T())
	err := suite.factory.Create().OfferRepository().Add(ctx, testOffer)
	suite.Require().NoError(err)

	riderA := kernel.NewUUID()
	riderB := kernel.NewUUID()

	accept := func(riderID kernel.UUID) error {
		uow := suite.factory.Create()
		aggregate, getErr := uow.OfferRepository().Get(ctx, testOffer.ID())
		if getErr != nil {
			return getErr
		}
		if _, updErr := aggregate.UpdateStatus(offer.StatusAccepted, riderID, offer.TransitionMeta{}); updErr != nil {
			return updErr
		}
		return uow.OfferRepository().Accept(ctx, aggregate)
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, riderID := range []kernel.UUID{riderA, riderB} {
		wg.Add(1)
		go func(slot int, id kernel.UUID) {
			defer wg.Done()
			results[slot] = accept(id)
		}(i, riderID)
	}
	wg.Wait()

	// Exactly one claim must succeed
	winners := 0
	for _, resultErr := range results {
		if resultErr == nil {
			winners++
		} else {
			suite.Require().ErrorIs(resultErr, ports.ErrOfferAlreadyAccepted)
		}
	}
	suite.Equal(1, winners, "Exactly one rider should win the offer")

	// The stored rider must be one of the two racers
	retrieved, err := suite.factory.Create().OfferRepository().Get(ctx, testOffer.ID())
	suite.Require().NoError(err)
	suite.Equal(offer.StatusAccepted, retrieved.Status())
	suite.Require().NotNil(retrieved.Rider())
	suite.True(retrieved.Rider().IsEqual(riderA) || retrieved.Rider().IsEqual(riderB))
}

// TestUnitOfWork_DeliveryWorkflow drives an offer plus its session through the
// full happy path within transactions and verifies the final state.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_DeliveryWorkflow() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOffer := createTestOffer(suite.T())
	riderID := kernel.NewUUID()

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.OfferRepository().Add(ctx, testOffer)
	suite.Require().NoError(err)

	// Acceptance
	_, err = testOffer.UpdateStatus(offer.StatusAccepted, riderID, offer.TransitionMeta{})
	suite.Require().NoError(err)
	err = uow.OfferRepository().Accept(ctx, testOffer)
	suite.Require().NoError(err)

	session, err := tracking.NewSession(kernel.NewUUID(), testOffer.ID(), riderID, kernel.SystemClock())
	suite.Require().NoError(err)
	err = uow.TrackingRepository().Add(ctx, session)
	suite.Require().NoError(err)

	// Walk both state machines through the happy path
	steps := []struct {
		offerStatus offer.Status
		eventType   tracking.EventType
	}{
		{offer.StatusPickedUp, tracking.EventPackagePickedUp},
		{offer.StatusInTransit, tracking.EventTransitStarted},
		{offer.StatusDelivered, tracking.EventPackageDelivered},
		{offer.StatusCompleted, tracking.EventDeliveryCompleted},
	}
	for _, step := range steps {
		_, err = testOffer.UpdateStatus(step.offerStatus, riderID, offer.TransitionMeta{})
		suite.Require().NoError(err)
		err = uow.OfferRepository().Update(ctx, testOffer)
		suite.Require().NoError(err)

		err = session.AddEvent(step.eventType, tracking.EventMeta{})
		suite.Require().NoError(err)
		err = uow.TrackingRepository().Update(ctx, session)
		suite.Require().NoError(err)
	}

	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	// Verify final state using a new unit of work
	newUow := suite.factory.Create()

	retrievedOffer, err := newUow.OfferRepository().Get(ctx, testOffer.ID())
	suite.Require().NoError(err)
	suite.Equal(offer.StatusCompleted, retrievedOffer.Status())

	retrievedSession, err := newUow.TrackingRepository().GetByOfferID(ctx, testOffer.ID())
	suite.Require().NoError(err)
	suite.Equal(tracking.SessionCompleted, retrievedSession.Status())
	suite.False(retrievedSession.IsActive(), "Completed session should be archived")
	suite.NotNil(retrievedSession.ArchivedAt())

	// Archived sessions drop out of the active listing
	active, err := newUow.TrackingRepository().GetAllActive(ctx)
	suite.Require().NoError(err)
	suite.Empty(active, "Archived session should not appear among active ones")
}

// TestUnitOfWork_SessionRoundTrip verifies the session's nested records
// (locations, attempts, issues, confirmation, estimate) survive persistence.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_SessionRoundTrip() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOffer := createTestOffer(suite.T())
	session := createTestSession(suite.T(), testOffer.ID())

	// Enrich the session before writing it
	err := session.SetEstimate(4.2, 25*time.Minute, tracking.EstimateFactors{
		Traffic:   tracking.TrafficModerate,
		Weather:   tracking.WeatherClear,
		TimeOfDay: tracking.TimeOffPeak,
	})
	suite.Require().NoError(err)

	point, err := kernel.NewGeoPoint(41.0082, 28.9784)
	suite.Require().NoError(err)
	err = session.RecordLocation(point, tracking.LocationUpdate{AccuracyMeters: 8, SpeedKmh: 22})
	suite.Require().NoError(err)

	err = session.ReportIssue(tracking.IssueInput{
		Type:        "traffic_jam",
		Description: "bridge closed",
		Severity:    tracking.SeverityHigh,
		ReportedBy:  session.RiderID(),
	})
	suite.Require().NoError(err)

	err = session.AddPickupAttempt(tracking.AttemptInput{
		Successful: true,
		Notes:      "handed over at reception",
	})
	suite.Require().NoError(err)

	err = uow.OfferRepository().Add(ctx, testOffer)
	suite.Require().NoError(err)
	err = uow.TrackingRepository().Add(ctx, session)
	suite.Require().NoError(err)

	// Read back through a fresh unit of work and compare
	retrieved, err := suite.factory.Create().TrackingRepository().Get(ctx, session.ID())
	suite.Require().NoError(err)

	suite.Equal(session.Status(), retrieved.Status())
	suite.InDelta(session.TotalDistanceMeters(), retrieved.TotalDistanceMeters(), 0.001)

	suite.Require().NotNil(retrieved.CurrentLocation())
	suite.InDelta(41.0082, retrieved.CurrentLocation().Point.Latitude(), 1e-9)
	suite.InDelta(22.0, retrieved.CurrentLocation().SpeedKmh, 1e-9)

	suite.Require().Len(retrieved.Issues(), 1)
	suite.Equal("traffic_jam", retrieved.Issues()[0].Type)
	suite.Equal(tracking.SeverityHigh, retrieved.Issues()[0].Severity)

	suite.Require().Len(retrieved.PickupAttempts(), 1)
	suite.True(retrieved.PickupAttempts()[0].Successful)

	suite.Require().NotNil(retrieved.Estimate())
	suite.InDelta(4.2, retrieved.Estimate().DistanceKm, 1e-9)
	suite.Equal(tracking.TrafficModerate, retrieved.Estimate().Factors.Traffic)

	// The event ledger reproduces in order
	suite.Equal(len(session.Events()), len(retrieved.Events()))
	for i, event := range session.Events() {
		suite.Equal(event.Type, retrieved.Events()[i].Type)
	}
}

// createTestOffer creates a valid open offer for testing purposes.
func createTestOffer(t *testing.T) *offer.Offer {
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

// createTestSession creates a fresh tracking session for the given offer.
func createTestSession(t *testing.T, offerID kernel.UUID) *tracking.Session {
	t.Helper()

	session, err := tracking.NewSession(kernel.NewUUID(), offerID, kernel.NewUUID(), kernel.SystemClock())
	if err != nil {
		t.Fatal(err)
	}
	return session
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
