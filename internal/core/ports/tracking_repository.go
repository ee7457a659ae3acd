package ports

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/tracking"
)

// TrackingRepository defines the persistence contract for tracking sessions.
type TrackingRepository interface {
	// Add persists a new tracking session to storage.
	Add(ctx context.Context, aggregate *tracking.Session) error

	// Update persists changes to an existing tracking session.
	Update(ctx context.Context, aggregate *tracking.Session) error

	// Get retrieves a tracking session by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*tracking.Session, error)

	// GetByOfferID retrieves the tracking session attached to an offer.
	// An offer has at most one session.
	GetByOfferID(ctx context.Context, offerID kernel.UUID) (*tracking.Session, error)

	// GetAllActive retrieves all sessions that have not been archived yet.
	// Used by the estimate refresh job.
	GetAllActive(ctx context.Context) ([]*tracking.Session, error)
}
