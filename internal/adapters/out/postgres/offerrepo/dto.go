// Package offerrepo provides data transfer objects and mapping functions for offer persistence.
// This package implements the repository pattern for the offer domain aggregate, handling
// the conversion between domain entities and database representations.
package offerrepo

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/offer"

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

// OfferDTO represents the database structure for persisting offer aggregates.
// The scalar lifecycle fields stay relational for conditional updates and
// status queries; the route, package, payment, and audit trail are stored
// as jsonb documents.
type OfferDTO struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BusinessID uuid.UUID  `gorm:"type:uuid;index"`
	RiderID    *uuid.UUID `gorm:"type:uuid;index"`
	Status     string     `gorm:"type:varchar(32);index"`

	Pickup          jsonColumn
	Delivery        jsonColumn
	Package         jsonColumn
	Payment         jsonColumn
	TransitionTimes jsonColumn
	History         jsonColumn

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for offer entities.
func (OfferDTO) TableName() string {
	return "offers"
}

type waypointJSON struct {
	Address      string     `json:"address"`
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	ContactName  string     `json:"contact_name,omitempty"`
	ContactPhone string     `json:"contact_phone,omitempty"`
	WindowFrom   *time.Time `json:"window_from,omitempty"`
	WindowTo     *time.Time `json:"window_to,omitempty"`
}

type packageJSON struct {
	WeightKg float64 `json:"weight_kg"`
	LengthCm float64 `json:"length_cm"`
	WidthCm  float64 `json:"width_cm"`
	HeightCm float64 `json:"height_cm"`
	Fragile  bool    `json:"fragile"`
}

type paymentJSON struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Method   string `json:"method,omitempty"`
}

type geoPointJSON struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type statusChangeJSON struct {
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Actor     uuid.UUID     `json:"actor"`
	Notes     string        `json:"notes,omitempty"`
	Location  *geoPointJSON `json:"location,omitempty"`
}

// fromDomain converts an offer domain aggregate to its database representation.
func fromDomain(aggregate *offer.Offer) (OfferDTO, error) {
	var riderID *uuid.UUID
	if id := aggregate.Rider(); id != nil {
		raw := id.Bytes()
		riderID = &raw
	}

	pickup, err := marshalWaypoint(aggregate.Pickup())
	if err != nil {
		return OfferDTO{}, err
	}
	delivery, err := marshalWaypoint(aggregate.Delivery())
	if err != nil {
		return OfferDTO{}, err
	}

	pkg, err := json.Marshal(packageJSON{
		WeightKg: aggregate.Package().WeightKg(),
		LengthCm: aggregate.Package().LengthCm(),
		WidthCm:  aggregate.Package().WidthCm(),
		HeightCm: aggregate.Package().HeightCm(),
		Fragile:  aggregate.Package().Fragile(),
	})
	if err != nil {
		return OfferDTO{}, err
	}

	payment, err := json.Marshal(paymentJSON{
		Amount:   aggregate.Payment().Amount(),
		Currency: aggregate.Payment().Currency(),
		Method:   aggregate.Payment().Method(),
	})
	if err != nil {
		return OfferDTO{}, err
	}

	transitions := make(map[string]time.Time, len(aggregate.TransitionTimes()))
	for status, at := range aggregate.TransitionTimes() {
		transitions[status.String()] = at
	}
	transitionTimes, err := json.Marshal(transitions)
	if err != nil {
		return OfferDTO{}, err
	}

	history, err := marshalHistory(aggregate.History())
	if err != nil {
		return OfferDTO{}, err
	}

	return OfferDTO{
		ID:              aggregate.ID().Bytes(),
		BusinessID:      aggregate.BusinessID().Bytes(),
		RiderID:         riderID,
		Status:          aggregate.Status().String(),
		Pickup:          pickup,
		Delivery:        delivery,
		Package:         pkg,
		Payment:         payment,
		TransitionTimes: transitionTimes,
		History:         history,
		CreatedAt:       aggregate.CreatedAt(),
	}, nil
}

// toDomain converts a database DTO to an offer domain aggregate.
func toDomain(dto OfferDTO, clock kernel.Clock) (*offer.Offer, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	businessID, err := kernel.UUIDFromBytes(dto.BusinessID[:])
	if err != nil {
		return nil, err
	}

	var riderID *kernel.UUID
	if dto.RiderID != nil {
		rID, riderErr := kernel.UUIDFromBytes((*dto.RiderID)[:])
		if riderErr != nil {
			return nil, riderErr
		}
		riderID = &rID
	}

	status, err := offer.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	pickup, err := unmarshalWaypoint(dto.Pickup)
	if err != nil {
		return nil, err
	}
	delivery, err := unmarshalWaypoint(dto.Delivery)
	if err != nil {
		return nil, err
	}

	var pkgDoc packageJSON
	if err = json.Unmarshal(dto.Package, &pkgDoc); err != nil {
		return nil, err
	}
	pkg, err := offer.NewPackage(
		pkgDoc.WeightKg, pkgDoc.LengthCm, pkgDoc.WidthCm, pkgDoc.HeightCm, pkgDoc.Fragile)
	if err != nil {
		return nil, err
	}

	var paymentDoc paymentJSON
	if err = json.Unmarshal(dto.Payment, &paymentDoc); err != nil {
		return nil, err
	}
	payment, err := offer.NewPayment(paymentDoc.Amount, paymentDoc.Currency, paymentDoc.Method)
	if err != nil {
		return nil, err
	}

	transitionTimes, err := unmarshalTransitionTimes(dto.TransitionTimes)
	if err != nil {
		return nil, err
	}

	history, err := unmarshalHistory(dto.History)
	if err != nil {
		return nil, err
	}

	return offer.RestoreOffer(
		id, businessID, riderID, status,
		pickup, delivery, pkg, payment,
		transitionTimes, history, clock,
	)
}

func marshalWaypoint(wp offer.Waypoint) ([]byte, error) {
	return json.Marshal(waypointJSON{
		Address:      wp.Address(),
		Latitude:     wp.Point().Latitude(),
		Longitude:    wp.Point().Longitude(),
		ContactName:  wp.ContactName(),
		ContactPhone: wp.ContactPhone(),
		WindowFrom:   wp.WindowFrom(),
		WindowTo:     wp.WindowTo(),
	})
}

func unmarshalWaypoint(raw []byte) (offer.Waypoint, error) {
	var doc waypointJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return offer.Waypoint{}, err
	}

	point, err := kernel.NewGeoPoint(doc.Latitude, doc.Longitude)
	if err != nil {
		return offer.Waypoint{}, err
	}

	return offer.NewWaypoint(
		doc.Address, point, doc.ContactName, doc.ContactPhone, doc.WindowFrom, doc.WindowTo)
}

func unmarshalTransitionTimes(raw []byte) (map[offer.Status]time.Time, error) {
	var doc map[string]time.Time
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	out := make(map[offer.Status]time.Time, len(doc))
	for name, at := range doc {
		status, err := offer.StatusFromString(name)
		if err != nil {
			return nil, err
		}
		out[status] = at
	}
	return out, nil
}

func marshalHistory(history []offer.StatusChange) ([]byte, error) {
	docs := make([]statusChangeJSON, 0, len(history))
	for _, change := range history {
		doc := statusChangeJSON{
			Status:    change.Status.String(),
			Timestamp: change.Timestamp,
			Actor:     change.Actor.Bytes(),
			Notes:     change.Notes,
		}
		if change.Location != nil {
			doc.Location = &geoPointJSON{
				Latitude:  change.Location.Latitude(),
				Longitude: change.Location.Longitude(),
			}
		}
		docs = append(docs, doc)
	}
	return json.Marshal(docs)
}

func unmarshalHistory(raw []byte) ([]offer.StatusChange, error) {
	var docs []statusChangeJSON
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}

	history := make([]offer.StatusChange, 0, len(docs))
	for _, doc := range docs {
		status, err := offer.StatusFromString(doc.Status)
		if err != nil {
			return nil, err
		}
		actor, err := kernel.UUIDFromBytes(doc.Actor[:])
		if err != nil {
			return nil, err
		}

		change := offer.StatusChange{
			Status:    status,
			Timestamp: doc.Timestamp,
			Actor:     actor,
			Notes:     doc.Notes,
		}
		if doc.Location != nil {
			point, pointErr := kernel.NewGeoPoint(doc.Location.Latitude, doc.Location.Longitude)
			if pointErr != nil {
				return nil, pointErr
			}
			change.Location = &point
		}
		history = append(history, change)
	}
	return history, nil
}
