package trackingrepo

import (
	"context"
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/tracking"
	"lastmile/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormTrackingRepository implements TrackingRepository using GORM.
type GormTrackingRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
	clock   kernel.Clock
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormTrackingRepository creates a new GORM tracking session repository.
// The clock is handed to restored aggregates for their timestamping.
func NewGormTrackingRepository(db *gorm.DB, tracker aggregateTracker, clock kernel.Clock) *GormTrackingRepository {
	return &GormTrackingRepository{
		db:      db,
		tracker: tracker,
		clock:   clock,
	}
}

// Add saves a new tracking session to the database.
func (r *GormTrackingRepository) Add(ctx context.Context, session *tracking.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(session)
	if err != nil {
		return err
	}
	if err = r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(session.ID(), session)
	return nil
}

// Update saves an existing tracking session to the database.
func (r *GormTrackingRepository) Update(ctx context.Context, session *tracking.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(session)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&SessionDTO{}).
		Where("id = ?", dto.ID).
		Updates(map[string]any{
			"status":            dto.Status,
			"is_active":         dto.IsActive,
			"events":            dto.Events,
			"locations":         dto.Locations,
			"current_location":  dto.CurrentLocation,
			"total_distance_m":  dto.TotalDistanceM,
			"status_timestamps": dto.StatusTimestamps,
			"pickup_attempts":   dto.PickupAttempts,
			"delivery_attempts": dto.DeliveryAttempts,
			"issues":            dto.Issues,
			"confirmation":      dto.Confirmation,
			"estimate":          dto.Estimate,
			"last_updated_at":   dto.LastUpdatedAt,
			"archived_at":       dto.ArchivedAt,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(session.ID(), session)
	return nil
}

// Get retrieves a tracking session by ID.
func (r *GormTrackingRepository) Get(ctx context.Context, id kernel.UUID) (*tracking.Session, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto SessionDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("tracking session", id.String())
		}
		return nil, err
	}

	return toDomain(dto, r.clock)
}

// GetByOfferID retrieves the tracking session attached to the given offer.
func (r *GormTrackingRepository) GetByOfferID(
	ctx context.Context, offerID kernel.UUID,
) (*tracking.Session, error) {
	if err := offerID.Validate(); err != nil {
		return nil, err
	}

	var dto SessionDTO
	if err := r.db.WithContext(ctx).First(&dto, "offer_id = ?", offerID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("tracking session", offerID.String())
		}
		return nil, err
	}

	return toDomain(dto, r.clock)
}

// GetAllActive retrieves all sessions still tracking a live delivery.
func (r *GormTrackingRepository) GetAllActive(ctx context.Context) ([]*tracking.Session, error) {
	var dtos []SessionDTO
	if err := r.db.WithContext(ctx).
		Order("started_at").
		Find(&dtos, "is_active = ?", true).Error; err != nil {
		return nil, err
	}

	sessions := make([]*tracking.Session, 0, len(dtos))
	for _, dto := range dtos {
		session, err := toDomain(dto, r.clock)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}
