package services

import (
	"lastmile/internal/core/domain/model/offer"
	"lastmile/internal/core/domain/model/tracking"
)

// StatusMapper is a domain service that projects fine-grained tracking
// statuses onto the coarse offer lifecycle.
//
// Only a subset of tracking statuses is visible at the offer level: the
// intermediate movement statuses (heading to pickup, arrived at pickup,
// arrived at delivery) stay internal to the session and leave the offer
// unchanged. The mapping table can be overridden per deployment.
type StatusMapper struct {
	table map[tracking.SessionStatus]offer.Status
}

// defaultStatusTable is the standard projection.
var defaultStatusTable = map[tracking.SessionStatus]offer.Status{
	tracking.SessionPickedUp:  offer.StatusPickedUp,
	tracking.SessionInTransit: offer.StatusInTransit,
	tracking.SessionDelivered: offer.StatusDelivered,
	tracking.SessionCompleted: offer.StatusCompleted,
	tracking.SessionCancelled: offer.StatusCancelled,
}

// NewStatusMapper creates a mapper with the standard projection table.
func NewStatusMapper() StatusMapper {
	return StatusMapper{table: defaultStatusTable}
}

// NewStatusMapperWithOverrides creates a mapper whose table starts from the
// standard projection with the given entries replacing or extending it. An
// override to offer.StatusUnknown removes the projection for that tracking
// status.
func NewStatusMapperWithOverrides(overrides map[tracking.SessionStatus]offer.Status) StatusMapper {
	table := make(map[tracking.SessionStatus]offer.Status, len(defaultStatusTable)+len(overrides))
	for k, v := range defaultStatusTable {
		table[k] = v
	}
	for k, v := range overrides {
		if v == offer.StatusUnknown {
			delete(table, k)
			continue
		}
		table[k] = v
	}
	return StatusMapper{table: table}
}

// OfferStatusFor returns the offer status a tracking status projects to.
// The second return value is false when the tracking status is internal to
// the session and should not touch the offer.
func (m StatusMapper) OfferStatusFor(status tracking.SessionStatus) (offer.Status, bool) {
	mapped, ok := m.table[status]
	return mapped, ok
}
