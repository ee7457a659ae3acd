package offerrepo

import (
	"context"
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/offer"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOfferRepository implements OfferRepository using GORM.
type GormOfferRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
	clock   kernel.Clock
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOfferRepository creates a new GORM offer repository.
// The clock is handed to restored aggregates for their timestamping.
func NewGormOfferRepository(db *gorm.DB, tracker aggregateTracker, clock kernel.Clock) *GormOfferRepository {
	return &GormOfferRepository{
		db:      db,
		tracker: tracker,
		clock:   clock,
	}
}

// Add saves a new offer to the database.
func (r *GormOfferRepository) Add(ctx context.Context, aggregate *offer.Offer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}
	if err = r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing offer to the database.
func (r *GormOfferRepository) Update(ctx context.Context, aggregate *offer.Offer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&OfferDTO{}).
		Where("id = ?", dto.ID).
		Updates(map[string]any{
			"rider_id":         dto.RiderID,
			"status":           dto.Status,
			"pickup":           dto.Pickup,
			"delivery":         dto.Delivery,
			"package":          dto.Package,
			"payment":          dto.Payment,
			"transition_times": dto.TransitionTimes,
			"history":          dto.History,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an offer by ID.
func (r *GormOfferRepository) Get(ctx context.Context, id kernel.UUID) (*offer.Offer, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OfferDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("offer", id.String())
		}
		return nil, err
	}

	return toDomain(dto, r.clock)
}

// GetAllOpen retrieves all offers still waiting for a rider.
func (r *GormOfferRepository) GetAllOpen(ctx context.Context) ([]*offer.Offer, error) {
	return r.findAll(ctx, "status = ?", offer.StatusOpen.String())
}

// GetAllByBusiness retrieves all offers created by the given business.
func (r *GormOfferRepository) GetAllByBusiness(
	ctx context.Context, businessID kernel.UUID,
) ([]*offer.Offer, error) {
	if err := businessID.Validate(); err != nil {
		return nil, err
	}
	return r.findAll(ctx, "business_id = ?", businessID.Bytes())
}

// GetAllByRider retrieves all offers assigned to the given rider.
func (r *GormOfferRepository) GetAllByRider(
	ctx context.Context, riderID kernel.UUID,
) ([]*offer.Offer, error) {
	if err := riderID.Validate(); err != nil {
		return nil, err
	}
	return r.findAll(ctx, "rider_id = ?", riderID.Bytes())
}

// Accept atomically claims an open offer for the rider already applied to
// the aggregate. The conditional update only matches a row with no rider;
// losing the race leaves the database untouched and returns
// ports.ErrOfferAlreadyAccepted.
func (r *GormOfferRepository) Accept(ctx context.Context, aggregate *offer.Offer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}
	if dto.RiderID == nil {
		return errs.NewValueIsRequiredError("rider")
	}

	result := r.db.WithContext(ctx).Model(&OfferDTO{}).
		Where("id = ? AND rider_id IS NULL", dto.ID).
		Updates(map[string]any{
			"rider_id":         dto.RiderID,
			"status":           dto.Status,
			"transition_times": dto.TransitionTimes,
			"history":          dto.History,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ports.ErrOfferAlreadyAccepted
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormOfferRepository) findAll(
	ctx context.Context, condition string, args ...any,
) ([]*offer.Offer, error) {
	var dtos []OfferDTO
	if err := r.db.WithContext(ctx).
		Order("created_at").
		Find(&dtos, append([]any{condition}, args...)...).Error; err != nil {
		return nil, err
	}

	offers := make([]*offer.Offer, 0, len(dtos))
	for _, dto := range dtos {
		aggregate, err := toDomain(dto, r.clock)
		if err != nil {
			return nil, err
		}
		offers = append(offers, aggregate)
	}

	return offers, nil
}
