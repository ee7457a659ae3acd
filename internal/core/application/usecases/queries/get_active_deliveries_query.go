package queries

import (
	"errors"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var (
	ErrGetActiveDeliveriesQueryIsNotConstructed = errors.New(
		"GetActiveDeliveriesQuery must be created via NewGetActiveDeliveriesQuery constructor",
	)
)

// GetActiveDeliveriesQuery retrieves all deliveries currently in flight.
// Joins live tracking sessions with their offers for the dispatcher board.
//
// Example:
//
//	query := NewGetActiveDeliveriesQuery()
//	handler := NewGetActiveDeliveriesQueryHandler(db)
//
//	deliveries, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get active deliveries: %w", err)
//	}
type GetActiveDeliveriesQuery struct {
	guard guard.ConstructorGuard
}

// NewGetActiveDeliveriesQuery creates a query to retrieve in-flight deliveries.
func NewGetActiveDeliveriesQuery() GetActiveDeliveriesQuery {
	return GetActiveDeliveriesQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetActiveDeliveriesQueryIsNotConstructed if validation fails.
func (q GetActiveDeliveriesQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveDeliveriesQueryIsNotConstructed)
}

// GetActiveDeliveriesQueryResponse represents one in-flight delivery.
// Progress and Phase are derived from the session status, matching the
// rider-facing tracking feed.
type GetActiveDeliveriesQueryResponse struct {
	SessionID       kernel.UUID
	OfferID         kernel.UUID
	RiderID         kernel.UUID
	Status          string
	Phase           string
	Progress        int
	DeliveryAddress string
	TotalDistanceM  float64
	LastUpdatedAt   time.Time
}
