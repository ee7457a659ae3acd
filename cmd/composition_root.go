package cmd

import (
	"log/slog"

	"lastmile/internal/adapters/out/postgres"
	"lastmile/internal/adapters/out/postgres/trackingrepo"
	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
	"lastmile/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	clock      kernel.Clock
	estimator  services.RouteEstimator
	mapper     services.StatusMapper
}

func NewCompositionRoot(_ Config, gormDB *gorm.DB) CompositionRoot {
	clock := kernel.SystemClock()
	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB, clock),
		clock:      clock,
		estimator:  services.NewRouteEstimator(),
		mapper:     services.NewStatusMapper(),
	}
}

func (c *CompositionRoot) CreateCreateOfferCommandHandler() commands.CreateOfferCommandHandler {
	var f commands.OfferUoWFactory = FuncOfferUoWFactory(func() commands.OfferUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOfferCommandHandler(f, c.clock)
}

func (c *CompositionRoot) CreateAcceptOfferCommandHandler() commands.AcceptOfferCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewAcceptOfferCommandHandler(f, c.estimator, c.clock)
}

func (c *CompositionRoot) CreateUpdateOfferStatusCommandHandler() commands.UpdateOfferStatusCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateOfferStatusCommandHandler(f)
}

func (c *CompositionRoot) CreateAddTrackingEventCommandHandler() commands.AddTrackingEventCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewAddTrackingEventCommandHandler(f, c.mapper)
}

func (c *CompositionRoot) CreateRecordLocationCommandHandler() commands.RecordLocationCommandHandler {
	var f commands.TrackingUoWFactory = FuncTrackingUoWFactory(func() commands.TrackingUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRecordLocationCommandHandler(f)
}

func (c *CompositionRoot) CreateAddAttemptCommandHandler() commands.AddAttemptCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewAddAttemptCommandHandler(f, c.mapper)
}

func (c *CompositionRoot) CreateReportIssueCommandHandler() commands.ReportIssueCommandHandler {
	var f commands.TrackingUoWFactory = FuncTrackingUoWFactory(func() commands.TrackingUoW {
		return c.uowFactory.Create()
	})
	return commands.NewReportIssueCommandHandler(f)
}

func (c *CompositionRoot) CreateConfirmDeliveryCommandHandler() commands.ConfirmDeliveryCommandHandler {
	var f commands.TrackingUoWFactory = FuncTrackingUoWFactory(func() commands.TrackingUoW {
		return c.uowFactory.Create()
	})
	return commands.NewConfirmDeliveryCommandHandler(f)
}

func (c *CompositionRoot) CreateRefreshEstimateCommandHandler() commands.RefreshEstimateCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewRefreshEstimateCommandHandler(f, c.estimator)
}

func (c *CompositionRoot) CreateGetOpenOffersQueryHandler() queries.GetOpenOffersQueryHandler {
	return queries.NewGetOpenOffersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetActiveDeliveriesQueryHandler() queries.GetActiveDeliveriesQueryHandler {
	return queries.NewGetActiveDeliveriesQueryHandler(c.gormDB)
}

// CreateTrackingReader builds a standalone, non-transactional tracking
// repository for the read-only feed endpoints and the background jobs.
func (c *CompositionRoot) CreateTrackingReader() ports.TrackingRepository {
	return trackingrepo.NewGormTrackingRepository(c.gormDB, noopTracker{}, c.clock)
}

func (c *CompositionRoot) CreateJobManager(
	defaultVehicle services.VehicleType, logger *slog.Logger,
) *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateRefreshEstimateCommandHandler(),
		c.CreateTrackingReader(),
		defaultVehicle,
		logger,
	)
}

type FuncOfferUoWFactory func() commands.OfferUoW

func (f FuncOfferUoWFactory) Create() commands.OfferUoW {
	return f()
}

type FuncTrackingUoWFactory func() commands.TrackingUoW

func (f FuncTrackingUoWFactory) Create() commands.TrackingUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

// noopTracker discards aggregate tracking outside of a unit of work.
type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, any) {}
