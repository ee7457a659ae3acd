// Package trackingrepo provides data transfer objects and mapping functions for
// tracking session persistence. Sessions carry deep sub-ledgers (events, the
// location trail, attempts, issues) which are stored as jsonb documents; the
// lifecycle scalars stay relational for the active-session queries.
package trackingrepo

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/tracking"

	"github.com/google/uuid"
)

// jsonColumn stores a JSON document in a jsonb column.
type jsonColumn []byte

func (j jsonColumn) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j *jsonColumn) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
	return nil
}

// GormDataType tells GORM to migrate the column as jsonb.
func (jsonColumn) GormDataType() string {
	return "jsonb"
}

// SessionDTO represents the database structure for persisting tracking sessions.
type SessionDTO struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	OfferID uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	RiderID uuid.UUID `gorm:"type:uuid;index"`

	Status   string `gorm:"type:varchar(32);index"`
	IsActive bool   `gorm:"index"`

	Events           jsonColumn
	Locations        jsonColumn
	CurrentLocation  jsonColumn
	TotalDistanceM   float64
	StatusTimestamps jsonColumn
	PickupAttempts   jsonColumn
	DeliveryAttempts jsonColumn
	Issues           jsonColumn
	Confirmation     jsonColumn
	Estimate         jsonColumn

	StartedAt     time.Time
	LastUpdatedAt time.Time
	ArchivedAt    *time.Time
}

// TableName specifies the database table name for tracking sessions.
func (SessionDTO) TableName() string {
	return "tracking_sessions"
}

type geoPointJSON struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type eventJSON struct {
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Notes     string            `json:"notes,omitempty"`
	Location  *geoPointJSON     `json:"location,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type locationPointJSON struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AccuracyMeters float64   `json:"accuracy_meters,omitempty"`
	SpeedKmh       float64   `json:"speed_kmh,omitempty"`
	BearingDegrees float64   `json:"bearing_degrees,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type contactAttemptJSON struct {
	Channel string    `json:"channel"`
	At      time.Time `json:"at"`
	Notes   string    `json:"notes,omitempty"`
}

type attemptJSON struct {
	Successful      bool                 `json:"successful"`
	Notes           string               `json:"notes,omitempty"`
	ContactAttempts []contactAttemptJSON `json:"contact_attempts,omitempty"`
	Timestamp       time.Time            `json:"timestamp"`
}

type issueJSON struct {
	Type        string     `json:"type"`
	Description string     `json:"description,omitempty"`
	Severity    string     `json:"severity"`
	ReportedBy  uuid.UUID  `json:"reported_by"`
	ReportedAt  time.Time  `json:"reported_at"`
	Resolved    bool       `json:"resolved"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

type confirmationJSON struct {
	Type        string        `json:"type"`
	Payload     string        `json:"payload,omitempty"`
	Location    *geoPointJSON `json:"location,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	ConfirmedAt time.Time     `json:"confirmed_at"`
}

type estimateJSON struct {
	DistanceKm    float64   `json:"distance_km"`
	DurationNanos int64     `json:"duration_nanos"`
	EstimatedTime time.Time `json:"estimated_time"`
	Traffic       string    `json:"traffic,omitempty"`
	Weather       string    `json:"weather,omitempty"`
	TimeOfDay     string    `json:"time_of_day,omitempty"`
}

// fromDomain converts a tracking session to its database representation.
func fromDomain(session *tracking.Session) (SessionDTO, error) {
	events, err := marshalEvents(session.Events())
	if err != nil {
		return SessionDTO{}, err
	}

	locations, err := json.Marshal(locationsToJSON(session.Locations()))
	if err != nil {
		return SessionDTO{}, err
	}

	var currentLocation jsonColumn
	if current := session.CurrentLocation(); current != nil {
		currentLocation, err = json.Marshal(locationPointToJSON(*current))
		if err != nil {
			return SessionDTO{}, err
		}
	}

	timestamps := make(map[string]time.Time)
	for _, status := range []tracking.SessionStatus{
		tracking.SessionAccepted, tracking.SessionHeadingToPickup,
		tracking.SessionArrivedAtPickup, tracking.SessionPickedUp,
		tracking.SessionInTransit, tracking.SessionArrivedAtDelivery,
		tracking.SessionDelivered, tracking.SessionCompleted,
		tracking.SessionCancelled,
	} {
		if at, ok := session.StatusTimestamp(status); ok {
			timestamps[status.String()] = at
		}
	}
	statusTimestamps, err := json.Marshal(timestamps)
	if err != nil {
		return SessionDTO{}, err
	}

	pickupAttempts, err := json.Marshal(attemptsToJSON(session.PickupAttempts()))
	if err != nil {
		return SessionDTO{}, err
	}
	deliveryAttempts, err := json.Marshal(attemptsToJSON(session.DeliveryAttempts()))
	if err != nil {
		return SessionDTO{}, err
	}

	issues, err := json.Marshal(issuesToJSON(session.Issues()))
	if err != nil {
		return SessionDTO{}, err
	}

	var confirmation jsonColumn
	if proof := session.Confirmation(); proof != nil {
		doc := confirmationJSON{
			Type:        string(proof.Type),
			Payload:     proof.Payload,
			Notes:       proof.Notes,
			ConfirmedAt: proof.ConfirmedAt,
		}
		if proof.Location != nil {
			doc.Location = &geoPointJSON{
				Latitude:  proof.Location.Latitude(),
				Longitude: proof.Location.Longitude(),
			}
		}
		confirmation, err = json.Marshal(doc)
		if err != nil {
			return SessionDTO{}, err
		}
	}

	var estimate jsonColumn
	if eta := session.Estimate(); eta != nil {
		estimate, err = json.Marshal(estimateJSON{
			DistanceKm:    eta.DistanceKm,
			DurationNanos: int64(eta.Duration),
			EstimatedTime: eta.EstimatedTime,
			Traffic:       string(eta.Factors.Traffic),
			Weather:       string(eta.Factors.Weather),
			TimeOfDay:     string(eta.Factors.TimeOfDay),
		})
		if err != nil {
			return SessionDTO{}, err
		}
	}

	return SessionDTO{
		ID:               session.ID().Bytes(),
		OfferID:          session.OfferID().Bytes(),
		RiderID:          session.RiderID().Bytes(),
		Status:           session.Status().String(),
		IsActive:         session.IsActive(),
		Events:           events,
		Locations:        locations,
		CurrentLocation:  currentLocation,
		TotalDistanceM:   session.TotalDistanceMeters(),
		StatusTimestamps: statusTimestamps,
		PickupAttempts:   pickupAttempts,
		DeliveryAttempts: deliveryAttempts,
		Issues:           issues,
		Confirmation:     confirmation,
		Estimate:         estimate,
		StartedAt:        session.StartedAt(),
		LastUpdatedAt:    session.LastUpdatedAt(),
		ArchivedAt:       session.ArchivedAt(),
	}, nil
}

// toDomain converts a database DTO to a tracking session.
func toDomain(dto SessionDTO, clock kernel.Clock) (*tracking.Session, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	offerID, err := kernel.UUIDFromBytes(dto.OfferID[:])
	if err != nil {
		return nil, err
	}
	riderID, err := kernel.UUIDFromBytes(dto.RiderID[:])
	if err != nil {
		return nil, err
	}

	status, err := tracking.SessionStatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	events, err := unmarshalEvents(dto.Events)
	if err != nil {
		return nil, err
	}

	locations, err := unmarshalLocations(dto.Locations)
	if err != nil {
		return nil, err
	}

	var currentLocation *tracking.LocationPoint
	if len(dto.CurrentLocation) > 0 {
		var doc locationPointJSON
		if err = json.Unmarshal(dto.CurrentLocation, &doc); err != nil {
			return nil, err
		}
		point, pointErr := locationPointFromJSON(doc)
		if pointErr != nil {
			return nil, pointErr
		}
		currentLocation = &point
	}

	statusTimestamps, err := unmarshalStatusTimestamps(dto.StatusTimestamps)
	if err != nil {
		return nil, err
	}

	pickupAttempts, err := unmarshalAttempts(dto.PickupAttempts)
	if err != nil {
		return nil, err
	}
	deliveryAttempts, err := unmarshalAttempts(dto.DeliveryAttempts)
	if err != nil {
		return nil, err
	}

	issues, err := unmarshalIssues(dto.Issues)
	if err != nil {
		return nil, err
	}

	var confirmation *tracking.DeliveryConfirmation
	if len(dto.Confirmation) > 0 {
		confirmation, err = unmarshalConfirmation(dto.Confirmation)
		if err != nil {
			return nil, err
		}
	}

	var estimate *tracking.Estimate
	if len(dto.Estimate) > 0 {
		var doc estimateJSON
		if err = json.Unmarshal(dto.Estimate, &doc); err != nil {
			return nil, err
		}
		estimate = &tracking.Estimate{
			DistanceKm:    doc.DistanceKm,
			Duration:      time.Duration(doc.DurationNanos),
			EstimatedTime: doc.EstimatedTime,
			Factors: tracking.EstimateFactors{
				Traffic:   tracking.TrafficLevel(doc.Traffic),
				Weather:   tracking.WeatherCondition(doc.Weather),
				TimeOfDay: tracking.TimeOfDay(doc.TimeOfDay),
			},
		}
	}

	return tracking.RestoreSession(tracking.RestoreSessionParams{
		ID:               id,
		OfferID:          offerID,
		RiderID:          riderID,
		Status:           status,
		IsActive:         dto.IsActive,
		Events:           events,
		Locations:        locations,
		CurrentLocation:  currentLocation,
		TotalDistanceM:   dto.TotalDistanceM,
		StatusTimestamps: statusTimestamps,
		PickupAttempts:   pickupAttempts,
		DeliveryAttempts: deliveryAttempts,
		Issues:           issues,
		Confirmation:     confirmation,
		Estimate:         estimate,
		StartedAt:        dto.StartedAt,
		LastUpdatedAt:    dto.LastUpdatedAt,
		ArchivedAt:       dto.ArchivedAt,
	}, clock)
}

func marshalEvents(events []tracking.Event) ([]byte, error) {
	docs := make([]eventJSON, 0, len(events))
	for _, event := range events {
		doc := eventJSON{
			Type:      string(event.Type),
			Timestamp: event.Timestamp,
			Notes:     event.Notes,
			Metadata:  event.Metadata,
		}
		if event.Location != nil {
			doc.Location = &geoPointJSON{
				Latitude:  event.Location.Latitude(),
				Longitude: event.Location.Longitude(),
			}
		}
		docs = append(docs, doc)
	}
	return json.Marshal(docs)
}

func unmarshalEvents(raw []byte) ([]tracking.Event, error) {
	var docs []eventJSON
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}

	events := make([]tracking.Event, 0, len(docs))
	for _, doc := range docs {
		event := tracking.Event{
			Type:      tracking.EventType(doc.Type),
			Timestamp: doc.Timestamp,
			Notes:     doc.Notes,
			Metadata:  doc.Metadata,
		}
		if doc.Location != nil {
			point, err := kernel.NewGeoPoint(doc.Location.Latitude, doc.Location.Longitude)
			if err != nil {
				return nil, err
			}
			event.Location = &point
		}
		events = append(events, event)
	}
	return events, nil
}

func locationsToJSON(points []tracking.LocationPoint) []locationPointJSON {
	docs := make([]locationPointJSON, 0, len(points))
	for _, p := range points {
		docs = append(docs, locationPointToJSON(p))
	}
	return docs
}

func locationPointToJSON(p tracking.LocationPoint) locationPointJSON {
	return locationPointJSON{
		Latitude:       p.Point.Latitude(),
		Longitude:      p.Point.Longitude(),
		AccuracyMeters: p.AccuracyMeters,
		SpeedKmh:       p.SpeedKmh,
		BearingDegrees: p.BearingDegrees,
		Timestamp:      p.Timestamp,
	}
}

func locationPointFromJSON(doc locationPointJSON) (tracking.LocationPoint, error) {
	point, err := kernel.NewGeoPoint(doc.Latitude, doc.Longitude)
	if err != nil {
		return tracking.LocationPoint{}, err
	}
	return tracking.LocationPoint{
		Point:          point,
		AccuracyMeters: doc.AccuracyMeters,
		SpeedKmh:       doc.SpeedKmh,
		BearingDegrees: doc.BearingDegrees,
		Timestamp:      doc.Timestamp,
	}, nil
}

func unmarshalLocations(raw []byte) ([]tracking.LocationPoint, error) {
	var docs []locationPointJSON
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}

	points := make([]tracking.LocationPoint, 0, len(docs))
	for _, doc := range docs {
		point, err := locationPointFromJSON(doc)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	return points, nil
}

func unmarshalStatusTimestamps(raw []byte) (map[tracking.SessionStatus]time.Time, error) {
	var docs map[string]time.Time
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}

	out := make(map[tracking.SessionStatus]time.Time, len(docs))
	for name, at := range docs {
		status, err := tracking.SessionStatusFromString(name)
		if err != nil {
			return nil, err
		}
		out[status] = at
	}
	return out, nil
}

func attemptsToJSON(attempts []tracking.Attempt) []attemptJSON {
	docs := make([]attemptJSON, 0, len(attempts))
	for _, attempt := range attempts {
		doc := attemptJSON{
			Successful: attempt.Successful,
			Notes:      attempt.Notes,
			Timestamp:  attempt.Timestamp,
		}
		for _, contact := range attempt.ContactAttempts {
			doc.ContactAttempts = append(doc.ContactAttempts, contactAttemptJSON{
				Channel: contact.Channel,
				At:      contact.At,
				Notes:   contact.Notes,
			})
		}
		docs = append(docs, doc)
	}
	return docs
}

func unmarshalAttempts(raw []byte) ([]tracking.Attempt, error) {
	var docs []attemptJSON
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}

	attempts := make([]tracking.Attempt, 0, len(docs))
	for _, doc := range docs {
		attempt := tracking.Attempt{
			Successful: doc.Successful,
			Notes:      doc.Notes,
			Timestamp:  doc.Timestamp,
		}
		for _, contact := range doc.ContactAttempts {
			attempt.ContactAttempts = append(attempt.ContactAttempts, tracking.ContactAttempt{
				Channel: contact.Channel,
				At:      contact.At,
				Notes:   contact.Notes,
			})
		}
		attempts = append(attempts, attempt)
	}
	return attempts, nil
}

func issuesToJSON(issues []tracking.Issue) []issueJSON {
	docs := make([]issueJSON, 0, len(issues))
	for _, issue := range issues {
		docs = append(docs, issueJSON{
			Type:        issue.Type,
			Description: issue.Description,
			Severity:    string(issue.Severity),
			ReportedBy:  issue.ReportedBy.Bytes(),
			ReportedAt:  issue.ReportedAt,
			Resolved:    issue.Resolved,
			ResolvedAt:  issue.ResolvedAt,
		})
	}
	return docs
}

func unmarshalIssues(raw []byte) ([]tracking.Issue, error) {
	var docs []issueJSON
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}

	issues := make([]tracking.Issue, 0, len(docs))
	for _, doc := range docs {
		reporter, err := kernel.UUIDFromBytes(doc.ReportedBy[:])
		if err != nil {
			return nil, err
		}
		issues = append(issues, tracking.Issue{
			Type:        doc.Type,
			Description: doc.Description,
			Severity:    tracking.IssueSeverity(doc.Severity),
			ReportedBy:  reporter,
			ReportedAt:  doc.ReportedAt,
			Resolved:    doc.Resolved,
			ResolvedAt:  doc.ResolvedAt,
		})
	}
	return issues, nil
}

func unmarshalConfirmation(raw []byte) (*tracking.DeliveryConfirmation, error) {
	var doc confirmationJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	confirmation := &tracking.DeliveryConfirmation{
		Type:        tracking.ConfirmationType(doc.Type),
		Payload:     doc.Payload,
		Notes:       doc.Notes,
		ConfirmedAt: doc.ConfirmedAt,
	}
	if doc.Location != nil {
		point, err := kernel.NewGeoPoint(doc.Location.Latitude, doc.Location.Longitude)
		if err != nil {
			return nil, err
		}
		confirmation.Location = &point
	}
	return confirmation, nil
}
