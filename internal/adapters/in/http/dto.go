package http

import (
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/tracking"
)

// Error is the uniform JSON error body.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GeoPoint is the wire form of a coordinate pair.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func geoPointFromWire(p *GeoPoint) (*kernel.GeoPoint, error) {
	if p == nil {
		return nil, nil
	}
	point, err := kernel.NewGeoPoint(p.Latitude, p.Longitude)
	if err != nil {
		return nil, err
	}
	return &point, nil
}

func geoPointToWire(p *kernel.GeoPoint) *GeoPoint {
	if p == nil {
		return nil
	}
	return &GeoPoint{Latitude: p.Latitude(), Longitude: p.Longitude()}
}

// Waypoint is the wire form of a pickup or delivery stop.
type Waypoint struct {
	Address      string     `json:"address"`
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	ContactName  string     `json:"contact_name"`
	ContactPhone string     `json:"contact_phone"`
	WindowFrom   *time.Time `json:"window_from,omitempty"`
	WindowTo     *time.Time `json:"window_to,omitempty"`
}

// NewOffer is the request body for offer creation.
type NewOffer struct {
	BusinessID string   `json:"business_id"`
	Pickup     Waypoint `json:"pickup"`
	Delivery   Waypoint `json:"delivery"`
	Package    struct {
		WeightKg float64 `json:"weight_kg"`
		LengthCm float64 `json:"length_cm"`
		WidthCm  float64 `json:"width_cm"`
		HeightCm float64 `json:"height_cm"`
		Fragile  bool    `json:"fragile"`
	} `json:"package"`
	Payment struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Method   string `json:"method"`
	} `json:"payment"`
}

// OfferCreated is the response body for offer creation.
type OfferCreated struct {
	ID string `json:"id"`
}

// AcceptOffer is the request body for claiming an offer.
type AcceptOffer struct {
	RiderID string `json:"rider_id"`
	Vehicle string `json:"vehicle"`
}

// StatusUpdate is the request body for an offer status transition.
type StatusUpdate struct {
	ActorID  string    `json:"actor_id"`
	Status   string    `json:"status"`
	Notes    string    `json:"notes,omitempty"`
	Location *GeoPoint `json:"location,omitempty"`
}

// TrackingEvent is the request body for appending a session event.
type TrackingEvent struct {
	Type     string            `json:"type"`
	Notes    string            `json:"notes,omitempty"`
	Location *GeoPoint         `json:"location,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// LocationFix is the request body for a GPS update.
type LocationFix struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracy_meters,omitempty"`
	SpeedKmh       float64 `json:"speed_kmh,omitempty"`
	BearingDegrees float64 `json:"bearing_degrees,omitempty"`
}

// ContactAttempt is the wire form of one contact try within an attempt.
type ContactAttempt struct {
	Channel string    `json:"channel"`
	At      time.Time `json:"at"`
	Notes   string    `json:"notes,omitempty"`
}

// Attempt is the request body for logging a pickup or delivery attempt.
type Attempt struct {
	Successful      bool             `json:"successful"`
	Notes           string           `json:"notes,omitempty"`
	ContactAttempts []ContactAttempt `json:"contact_attempts,omitempty"`
}

func (a Attempt) toInput() tracking.AttemptInput {
	input := tracking.AttemptInput{
		Successful: a.Successful,
		Notes:      a.Notes,
	}
	for _, contact := range a.ContactAttempts {
		input.ContactAttempts = append(input.ContactAttempts, tracking.ContactAttempt{
			Channel: contact.Channel,
			At:      contact.At,
			Notes:   contact.Notes,
		})
	}
	return input
}

// NewIssue is the request body for reporting a delivery issue.
type NewIssue struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Severity    string `json:"severity,omitempty"`
	ReportedBy  string `json:"reported_by"`
}

// Confirmation is the request body for delivery confirmation.
type Confirmation struct {
	Type     string    `json:"type"`
	Payload  string    `json:"payload,omitempty"`
	Notes    string    `json:"notes,omitempty"`
	Location *GeoPoint `json:"location,omitempty"`
}

// EstimateRefresh is the request body for recomputing the ETA.
type EstimateRefresh struct {
	Vehicle   string `json:"vehicle"`
	Traffic   string `json:"traffic,omitempty"`
	Weather   string `json:"weather,omitempty"`
	TimeOfDay string `json:"time_of_day,omitempty"`
}

// OpenOffer is one row of the rider-facing open board.
type OpenOffer struct {
	ID              string    `json:"id"`
	BusinessID      string    `json:"business_id"`
	PickupAddress   string    `json:"pickup_address"`
	DeliveryAddress string    `json:"delivery_address"`
	WeightKg        float64   `json:"weight_kg"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	CreatedAt       time.Time `json:"created_at"`
}

// ActiveDelivery is one row of the dispatcher board.
type ActiveDelivery struct {
	SessionID       string    `json:"session_id"`
	OfferID         string    `json:"offer_id"`
	RiderID         string    `json:"rider_id"`
	Status          string    `json:"status"`
	Phase           string    `json:"phase"`
	Progress        int       `json:"progress"`
	DeliveryAddress string    `json:"delivery_address"`
	TotalDistanceM  float64   `json:"total_distance_m"`
	LastUpdatedAt   time.Time `json:"last_updated_at"`
}

// LocationPoint is the wire form of a recorded GPS fix.
type LocationPoint struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AccuracyMeters float64   `json:"accuracy_meters,omitempty"`
	SpeedKmh       float64   `json:"speed_kmh,omitempty"`
	BearingDegrees float64   `json:"bearing_degrees,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

func locationPointToWire(p *tracking.LocationPoint) *LocationPoint {
	if p == nil {
		return nil
	}
	return &LocationPoint{
		Latitude:       p.Point.Latitude(),
		Longitude:      p.Point.Longitude(),
		AccuracyMeters: p.AccuracyMeters,
		SpeedKmh:       p.SpeedKmh,
		BearingDegrees: p.BearingDegrees,
		Timestamp:      p.Timestamp,
	}
}

// Estimate is the wire form of the current ETA.
type Estimate struct {
	DistanceKm      float64   `json:"distance_km"`
	DurationMinutes int       `json:"duration_minutes"`
	EstimatedTime   time.Time `json:"estimated_time"`
}

func estimateToWire(e *tracking.Estimate) *Estimate {
	if e == nil {
		return nil
	}
	return &Estimate{
		DistanceKm:      e.DistanceKm,
		DurationMinutes: int(e.Duration.Minutes()),
		EstimatedTime:   e.EstimatedTime,
	}
}

// TrackingFeed is the customer-facing tracking read model.
type TrackingFeed struct {
	OfferID                   string         `json:"offer_id"`
	RiderID                   string         `json:"rider_id"`
	Status                    string         `json:"status"`
	Phase                     string         `json:"phase"`
	Progress                  int            `json:"progress"`
	IsActive                  bool           `json:"is_active"`
	CurrentLocation           *LocationPoint `json:"current_location,omitempty"`
	Estimate                  *Estimate      `json:"estimate,omitempty"`
	EstimatedMinutesRemaining *int           `json:"estimated_minutes_remaining,omitempty"`
	TotalDistanceKm           float64        `json:"total_distance_km"`
	StartedAt                 time.Time      `json:"started_at"`
	LastUpdatedAt             time.Time      `json:"last_updated_at"`
}

func trackingFeedToWire(data tracking.TrackingData) TrackingFeed {
	return TrackingFeed{
		OfferID:                   data.OfferID.String(),
		RiderID:                   data.RiderID.String(),
		Status:                    data.Status.String(),
		Phase:                     data.Phase,
		Progress:                  data.Progress,
		IsActive:                  data.IsActive,
		CurrentLocation:           locationPointToWire(data.CurrentLocation),
		Estimate:                  estimateToWire(data.Estimate),
		EstimatedMinutesRemaining: data.EstimatedMinutesRemaining,
		TotalDistanceKm:           data.TotalDistanceKm,
		StartedAt:                 data.StartedAt,
		LastUpdatedAt:             data.LastUpdatedAt,
	}
}

// SessionEvent is the wire form of a session ledger entry.
type SessionEvent struct {
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Notes     string            `json:"notes,omitempty"`
	Location  *GeoPoint         `json:"location,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Issue is the wire form of a reported issue.
type Issue struct {
	Type        string     `json:"type"`
	Description string     `json:"description,omitempty"`
	Severity    string     `json:"severity"`
	ReportedBy  string     `json:"reported_by"`
	ReportedAt  time.Time  `json:"reported_at"`
	Resolved    bool       `json:"resolved"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// AttemptRecord is the wire form of a logged attempt.
type AttemptRecord struct {
	Successful      bool             `json:"successful"`
	Notes           string           `json:"notes,omitempty"`
	ContactAttempts []ContactAttempt `json:"contact_attempts,omitempty"`
	Timestamp       time.Time        `json:"timestamp"`
}

// Metrics is the wire form of derived delivery metrics; fields stay null
// until the underlying milestones exist.
type Metrics struct {
	PickupTimeMinutes  *int     `json:"pickup_time_minutes,omitempty"`
	TransitTimeMinutes *int     `json:"transit_time_minutes,omitempty"`
	TotalTimeMinutes   *int     `json:"total_time_minutes,omitempty"`
	AverageSpeedKmh    *float64 `json:"average_speed_kmh,omitempty"`
	OnTime             *bool    `json:"on_time,omitempty"`
	DelayMinutes       *int     `json:"delay_minutes,omitempty"`
}

// DetailedFeed is the operator-facing tracking read model.
type DetailedFeed struct {
	TrackingFeed
	RecentEvents     []SessionEvent  `json:"recent_events"`
	RecentLocations  []LocationPoint `json:"recent_locations"`
	UnresolvedIssues []Issue         `json:"unresolved_issues"`
	PickupAttempts   []AttemptRecord `json:"pickup_attempts"`
	DeliveryAttempts []AttemptRecord `json:"delivery_attempts"`
	Confirmation     *Confirmation   `json:"confirmation,omitempty"`
	Metrics          Metrics         `json:"metrics"`
}

func detailedFeedToWire(data tracking.DetailedTracking) DetailedFeed {
	feed := DetailedFeed{
		TrackingFeed:     trackingFeedToWire(data.TrackingData),
		RecentEvents:     make([]SessionEvent, 0, len(data.RecentEvents)),
		RecentLocations:  make([]LocationPoint, 0, len(data.RecentLocations)),
		UnresolvedIssues: make([]Issue, 0, len(data.UnresolvedIssues)),
		PickupAttempts:   attemptsToWire(data.PickupAttempts),
		DeliveryAttempts: attemptsToWire(data.DeliveryAttempts),
		Metrics: Metrics{
			PickupTimeMinutes:  data.Metrics.PickupDurationMinutes,
			TransitTimeMinutes: data.Metrics.TransitDurationMinutes,
			TotalTimeMinutes:   data.Metrics.TotalDurationMinutes,
			AverageSpeedKmh:    data.Metrics.AverageSpeedKmh,
			OnTime:             data.Metrics.OnTimePerformance,
			DelayMinutes:       data.Metrics.DelayMinutes,
		},
	}

	for _, event := range data.RecentEvents {
		feed.RecentEvents = append(feed.RecentEvents, SessionEvent{
			Type:      string(event.Type),
			Timestamp: event.Timestamp,
			Notes:     event.Notes,
			Location:  geoPointToWire(event.Location),
			Metadata:  event.Metadata,
		})
	}
	for _, point := range data.RecentLocations {
		fix := point
		feed.RecentLocations = append(feed.RecentLocations, *locationPointToWire(&fix))
	}
	for _, issue := range data.UnresolvedIssues {
		feed.UnresolvedIssues = append(feed.UnresolvedIssues, Issue{
			Type:        issue.Type,
			Description: issue.Description,
			Severity:    string(issue.Severity),
			ReportedBy:  issue.ReportedBy.String(),
			ReportedAt:  issue.ReportedAt,
			Resolved:    issue.Resolved,
			ResolvedAt:  issue.ResolvedAt,
		})
	}
	if data.Confirmation != nil {
		feed.Confirmation = &Confirmation{
			Type:     string(data.Confirmation.Type),
			Payload:  data.Confirmation.Payload,
			Notes:    data.Confirmation.Notes,
			Location: geoPointToWire(data.Confirmation.Location),
		}
	}
	return feed
}

func attemptsToWire(attempts []tracking.Attempt) []AttemptRecord {
	records := make([]AttemptRecord, 0, len(attempts))
	for _, attempt := range attempts {
		record := AttemptRecord{
			Successful: attempt.Successful,
			Notes:      attempt.Notes,
			Timestamp:  attempt.Timestamp,
		}
		for _, contact := range attempt.ContactAttempts {
			record.ContactAttempts = append(record.ContactAttempts, ContactAttempt{
				Channel: contact.Channel,
				At:      contact.At,
				Notes:   contact.Notes,
			})
		}
		records = append(records, record)
	}
	return records
}
