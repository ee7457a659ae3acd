package queries

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/offer"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOpenOffersQueryHandler retrieves the open offer board from the database.
// Reads the jsonb columns directly; the aggregate is never rehydrated for
// this read model.
//
// Example:
//
//	handler := NewGetOpenOffersQueryHandler(db)
//	query := NewGetOpenOffersQuery()
//
//	openOffers, err := handler.Handle(ctx, query)
//	if err != nil {
//	    log.Printf("Failed to get open offers: %v", err)
//	    return err
//	}
type GetOpenOffersQueryHandler struct {
	db *gorm.DB
}

// NewGetOpenOffersQueryHandler creates a handler for open offer queries.
// Requires a GORM database connection for query execution.
func NewGetOpenOffersQueryHandler(db *gorm.DB) GetOpenOffersQueryHandler {
	return GetOpenOffersQueryHandler{db: db}
}

// Handle executes the query to retrieve all open offers.
// Results are sorted oldest-first so long-waiting offers surface on top.
func (h GetOpenOffersQueryHandler) Handle(
	ctx context.Context,
	query GetOpenOffersQuery,
) ([]GetOpenOffersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	offers := make([]GetOpenOffersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			business_id,
			pickup->>'address',
			delivery->>'address',
			(package->>'weight_kg')::float,
			(payment->>'amount')::bigint,
			payment->>'currency',
			created_at
		FROM offers
		WHERE status = ?
		ORDER BY created_at
	`, offer.StatusOpen.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetOpenOffersQueryResponse
		var id, businessID uuid.UUID

		err = rows.Scan(
			&id,
			&businessID,
			&resp.PickupAddress,
			&resp.DeliveryAddress,
			&resp.WeightKg,
			&resp.Amount,
			&resp.Currency,
			&resp.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		offerID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.ID = offerID

		ownerID, idErr := kernel.UUIDFromBytes(businessID[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.BusinessID = ownerID

		offers = append(offers, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return offers, nil
}
