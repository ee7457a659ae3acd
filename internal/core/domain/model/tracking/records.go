package tracking

import (
	"time"

	"lastmile/internal/core/domain/model/kernel"
)

// ContactAttempt records one attempt to reach the sender or recipient
// while the rider was trying to complete a pickup or delivery.
type ContactAttempt struct {
	Channel string // "call", "sms", "chat", "doorbell"
	At      time.Time
	Notes   string
}

// Attempt records one pickup or delivery attempt. Failed attempts are kept
// for audit and change nothing else; a successful attempt advances the
// session status and stamps the actual pickup/delivery time.
type Attempt struct {
	Successful      bool
	Notes           string
	ContactAttempts []ContactAttempt
	Timestamp       time.Time
}

// AttemptInput describes an attempt before the session stamps it.
type AttemptInput struct {
	Successful      bool
	Notes           string
	ContactAttempts []ContactAttempt
}

// IssueSeverity grades a reported issue.
type IssueSeverity string

const (
	SeverityLow      IssueSeverity = "low"
	SeverityMedium   IssueSeverity = "medium"
	SeverityHigh     IssueSeverity = "high"
	SeverityCritical IssueSeverity = "critical"
)

// Issue is one entry of the session's problem sub-ledger.
type Issue struct {
	Type        string
	Description string
	Severity    IssueSeverity
	ReportedBy  kernel.UUID
	ReportedAt  time.Time
	Resolved    bool
	ResolvedAt  *time.Time
}

// IssueInput describes an issue before the session stamps it.
// Severity defaults to medium when left empty.
type IssueInput struct {
	Type        string
	Description string
	Severity    IssueSeverity
	ReportedBy  kernel.UUID
}

// ConfirmationType names how the delivery hand-over was proven.
type ConfirmationType string

const (
	ConfirmationSignature   ConfirmationType = "signature"
	ConfirmationPhoto       ConfirmationType = "photo"
	ConfirmationPin         ConfirmationType = "pin"
	ConfirmationContactless ConfirmationType = "contactless"
)

// DeliveryConfirmation is the proof of hand-over stored once the rider
// confirms the delivery.
type DeliveryConfirmation struct {
	Type        ConfirmationType
	Payload     string
	Location    *kernel.GeoPoint
	Notes       string
	ConfirmedAt time.Time
}

// ConfirmationInput describes a confirmation before the session stamps it.
type ConfirmationInput struct {
	Type     ConfirmationType
	Payload  string
	Location *kernel.GeoPoint
	Notes    string
}

// LocationUpdate carries the optional GPS metadata of a location fix.
type LocationUpdate struct {
	AccuracyMeters float64
	SpeedKmh       float64
	BearingDegrees float64
}

// TrafficLevel, WeatherCondition, and TimeOfDay are the external factors
// feeding the ETA computation. They are stored with the estimate for audit.
type (
	TrafficLevel     string
	WeatherCondition string
	TimeOfDay        string
)

const (
	TrafficLight    TrafficLevel = "light"
	TrafficModerate TrafficLevel = "moderate"
	TrafficHeavy    TrafficLevel = "heavy"

	WeatherClear WeatherCondition = "clear"
	WeatherRain  WeatherCondition = "rain"
	WeatherSnow  WeatherCondition = "snow"

	TimeOffPeak  TimeOfDay = "off_peak"
	TimeRushHour TimeOfDay = "rush_hour"
	TimeNight    TimeOfDay = "night"
)

// EstimateFactors are the conditions an estimate was computed under.
type EstimateFactors struct {
	Traffic   TrafficLevel
	Weather   WeatherCondition
	TimeOfDay TimeOfDay
}

// Estimate is the current delivery ETA: the remaining distance, the
// estimated travel duration, the absolute instant the delivery is expected,
// and the factors that produced it.
type Estimate struct {
	DistanceKm    float64
	Duration      time.Duration
	EstimatedTime time.Time
	Factors       EstimateFactors
}

// Metrics are the derived performance figures of a session, recomputed on
// demand from recorded timestamps. Any figure whose prerequisite timestamps
// are missing stays nil rather than producing an error.
type Metrics struct {
	PickupDurationMinutes  *int
	TransitDurationMinutes *int
	TotalDurationMinutes   *int
	AverageSpeedKmh        *float64
	OnTimePerformance      *bool
	DelayMinutes           *int
}
