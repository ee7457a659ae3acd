// Package ports defines repository interfaces for the delivery domain.
// These interfaces establish contracts between the domain layer and infrastructure,
// enabling dependency inversion and testability.
package ports

import (
	"context"
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/offer"
)

// ErrOfferAlreadyAccepted is returned by Accept when the conditional update
// finds the offer already assigned to a rider. The caller re-reads the offer
// to tell the idempotent same-rider case from a genuine conflict.
var ErrOfferAlreadyAccepted = errors.New("offer already accepted")

// OfferRepository defines the persistence contract for offer aggregates.
type OfferRepository interface {
	// Add persists a new offer aggregate to storage.
	// The offer must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *offer.Offer) error

	// Update persists changes to an existing offer aggregate.
	// The offer must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *offer.Offer) error

	// Get retrieves an offer aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*offer.Offer, error)

	// GetAllOpen retrieves all offers still waiting for a rider.
	GetAllOpen(ctx context.Context) ([]*offer.Offer, error)

	// GetAllByBusiness retrieves all offers created by the given business.
	GetAllByBusiness(ctx context.Context, businessID kernel.UUID) ([]*offer.Offer, error)

	// GetAllByRider retrieves all offers assigned to the given rider.
	GetAllByRider(ctx context.Context, riderID kernel.UUID) ([]*offer.Offer, error)

	// Accept atomically claims an open offer for a rider. The claim only
	// succeeds when no rider holds the offer yet; a lost race returns
	// ErrOfferAlreadyAccepted without modifying the row.
	Accept(ctx context.Context, aggregate *offer.Offer) error
}
