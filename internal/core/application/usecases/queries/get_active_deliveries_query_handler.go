package queries

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/tracking"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveDeliveriesQueryHandler retrieves the in-flight delivery board.
// Joins tracking sessions with their offers and derives the presentation
// fields (phase, progress) from the session status.
type GetActiveDeliveriesQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveDeliveriesQueryHandler creates a handler for active delivery queries.
// Requires a GORM database connection for query execution.
func NewGetActiveDeliveriesQueryHandler(db *gorm.DB) GetActiveDeliveriesQueryHandler {
	return GetActiveDeliveriesQueryHandler{db: db}
}

// Handle executes the query to retrieve all deliveries still in flight.
// Results are sorted by session start so the longest-running come first.
func (h GetActiveDeliveriesQueryHandler) Handle(
	ctx context.Context,
	query GetActiveDeliveriesQuery,
) ([]GetActiveDeliveriesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	deliveries := make([]GetActiveDeliveriesQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			s.id,
			s.offer_id,
			s.rider_id,
			s.status,
			s.total_distance_m,
			s.last_updated_at,
			o.delivery->>'address'
		FROM tracking_sessions s
		JOIN offers o ON o.id = s.offer_id
		WHERE s.is_active
		ORDER BY s.started_at
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetActiveDeliveriesQueryResponse
		var sessionID, offerID, riderID uuid.UUID

		err = rows.Scan(
			&sessionID,
			&offerID,
			&riderID,
			&resp.Status,
			&resp.TotalDistanceM,
			&resp.LastUpdatedAt,
			&resp.DeliveryAddress,
		)
		if err != nil {
			return nil, err
		}

		resp.SessionID, err = kernel.UUIDFromBytes(sessionID[:])
		if err != nil {
			return nil, err
		}
		resp.OfferID, err = kernel.UUIDFromBytes(offerID[:])
		if err != nil {
			return nil, err
		}
		resp.RiderID, err = kernel.UUIDFromBytes(riderID[:])
		if err != nil {
			return nil, err
		}

		status, statusErr := tracking.SessionStatusFromString(resp.Status)
		if statusErr != nil {
			return nil, statusErr
		}
		resp.Phase = status.Phase()
		resp.Progress = status.Progress()

		deliveries = append(deliveries, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return deliveries, nil
}
