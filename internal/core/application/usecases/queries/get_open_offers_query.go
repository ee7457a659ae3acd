package queries

import (
	"errors"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var (
	ErrGetOpenOffersQueryIsNotConstructed = errors.New(
		"GetOpenOffersQuery must be created via NewGetOpenOffersQuery constructor",
	)
)

// GetOpenOffersQuery retrieves all offers still waiting for a rider.
// Returns offers in "open" status for the rider-facing marketplace feed.
//
// Example:
//
//	query := NewGetOpenOffersQuery()
//	handler := NewGetOpenOffersQueryHandler(db)
//
//	offers, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get open offers: %w", err)
//	}
//
//	fmt.Printf("Found %d offers awaiting a rider\n", len(offers))
type GetOpenOffersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetOpenOffersQuery creates a query to retrieve open offers.
// This is a parameterless query that fetches the whole open board.
func NewGetOpenOffersQuery() GetOpenOffersQuery {
	return GetOpenOffersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetOpenOffersQueryIsNotConstructed if validation fails.
func (q GetOpenOffersQuery) Validate() error {
	return q.guard.Validate(ErrGetOpenOffersQueryIsNotConstructed)
}

// GetOpenOffersQueryResponse represents an open offer on the board.
// Carries what a rider needs to decide: addresses, load, and the fee.
type GetOpenOffersQueryResponse struct {
	ID              kernel.UUID
	BusinessID      kernel.UUID
	PickupAddress   string
	DeliveryAddress string
	WeightKg        float64
	Amount          int64
	Currency        string
	CreatedAt       time.Time
}
