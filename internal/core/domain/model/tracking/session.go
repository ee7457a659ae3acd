package tracking

import (
	"errors"
	"fmt"
	"math"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var (
	ErrSessionIsNotConstructed = errors.New(
		"Session is not constructed. Use NewSession or RestoreSession")

	// ErrSessionArchived is returned by every mutating operation once the
	// session has reached a terminal status.
	ErrSessionArchived = errors.New("tracking session is archived")

	// ErrIssueNotFound is returned when resolving an issue index that does
	// not exist or is already resolved.
	ErrIssueNotFound = errors.New("issue not found or already resolved")

	// ErrNotInDeliveryPhase is returned when a delivery confirmation is
	// attempted before the rider has arrived at the delivery point.
	ErrNotInDeliveryPhase = errors.New(
		"delivery can only be confirmed in the delivery phase")
)

// DetailedEventWindow and DetailedLocationWindow bound the history slices
// returned by DetailedTracking.
const (
	DetailedEventWindow    = 20
	DetailedLocationWindow = 50
)

// Summary is the lightweight read model of a session.
type Summary struct {
	OfferID         kernel.UUID
	RiderID         kernel.UUID
	Status          SessionStatus
	Progress        int
	Phase           string
	IsActive        bool
	CurrentLocation *LocationPoint
	Estimate        *Estimate
	StartedAt       time.Time
	LastUpdatedAt   time.Time
}

// TrackingData is the customer-facing read model: the summary plus the
// remaining-time figure and total distance covered so far.
type TrackingData struct {
	Summary
	EstimatedMinutesRemaining *int
	TotalDistanceKm           float64
}

// DetailedTracking is the operator-facing read model: recent events, recent
// locations, unresolved issues, attempts, and the derived metrics.
type DetailedTracking struct {
	TrackingData
	RecentEvents     []Event
	RecentLocations  []LocationPoint
	UnresolvedIssues []Issue
	PickupAttempts   []Attempt
	DeliveryAttempts []Attempt
	Confirmation     *DeliveryConfirmation
	Metrics          Metrics
}

// Session is the fine-grained tracking aggregate attached to an accepted
// offer. It consumes rider events, keeps a bounded location trail, records
// attempts and issues, and exposes derived metrics.
//
// A session is created the moment a rider accepts an offer and archives
// itself when a terminal event arrives. Archived sessions reject further
// mutation but stay readable.
type Session struct {
	id      kernel.UUID
	offerID kernel.UUID
	riderID kernel.UUID

	status   SessionStatus
	isActive bool

	events           []Event
	locations        *LocationHistory
	currentLocation  *LocationPoint
	totalDistanceM   float64
	statusTimestamps map[SessionStatus]time.Time

	pickupAttempts   []Attempt
	deliveryAttempts []Attempt
	issues           []Issue
	confirmation     *DeliveryConfirmation
	estimate         *Estimate

	startedAt     time.Time
	lastUpdatedAt time.Time
	archivedAt    *time.Time

	clock kernel.Clock

	guard guard.ConstructorGuard
}

// NewSession starts tracking for an accepted offer. The session opens in the
// accepted status with a seeded offer_accepted event.
func NewSession(id, offerID, riderID kernel.UUID, clock kernel.Clock) (*Session, error) {
	var err error
	if idErr := id.Validate(); idErr != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("id"))
	}
	if offerErr := offerID.Validate(); offerErr != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("offerID"))
	}
	if riderErr := riderID.Validate(); riderErr != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("riderID"))
	}
	if clock == nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("clock"))
	}
	if err != nil {
		return nil, err
	}

	now := clock.Now()
	s := &Session{
		id:       id,
		offerID:  offerID,
		riderID:  riderID,
		status:   SessionAccepted,
		isActive: true,
		events: []Event{{
			Type:      EventOfferAccepted,
			Timestamp: now,
		}},
		locations:        NewLocationHistory(LocationHistoryCapacity),
		statusTimestamps: map[SessionStatus]time.Time{SessionAccepted: now},
		startedAt:        now,
		lastUpdatedAt:    now,
		clock:            clock,

		guard: guard.NewConstructorGuard(),
	}
	return s, nil
}

// RestoreSessionParams carries a persisted session snapshot.
type RestoreSessionParams struct {
	ID      kernel.UUID
	OfferID kernel.UUID
	RiderID kernel.UUID

	Status   SessionStatus
	IsActive bool

	Events           []Event
	Locations        []LocationPoint
	CurrentLocation  *LocationPoint
	TotalDistanceM   float64
	StatusTimestamps map[SessionStatus]time.Time
	PickupAttempts   []Attempt
	DeliveryAttempts []Attempt
	Issues           []Issue
	Confirmation     *DeliveryConfirmation
	Estimate         *Estimate
	StartedAt        time.Time
	LastUpdatedAt    time.Time
	ArchivedAt       *time.Time
}

// RestoreSession rebuilds a session from storage without replaying its
// lifecycle rules.
func RestoreSession(p RestoreSessionParams, clock kernel.Clock) (*Session, error) {
	var err error
	if idErr := p.ID.Validate(); idErr != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("id"))
	}
	if offerErr := p.OfferID.Validate(); offerErr != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("offerID"))
	}
	if riderErr := p.RiderID.Validate(); riderErr != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("riderID"))
	}
	if statusErr := p.Status.Validate(); statusErr != nil {
		err = errors.Join(err, statusErr)
	}
	if clock == nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("clock"))
	}
	if err != nil {
		return nil, err
	}

	timestamps := p.StatusTimestamps
	if timestamps == nil {
		timestamps = make(map[SessionStatus]time.Time)
	}
	s := &Session{
		id:               p.ID,
		offerID:          p.OfferID,
		riderID:          p.RiderID,
		status:           p.Status,
		isActive:         p.IsActive,
		events:           p.Events,
		locations:        RestoreLocationHistory(LocationHistoryCapacity, p.Locations),
		currentLocation:  p.CurrentLocation,
		totalDistanceM:   p.TotalDistanceM,
		statusTimestamps: timestamps,
		pickupAttempts:   p.PickupAttempts,
		deliveryAttempts: p.DeliveryAttempts,
		issues:           p.Issues,
		confirmation:     p.Confirmation,
		estimate:         p.Estimate,
		startedAt:        p.StartedAt,
		lastUpdatedAt:    p.LastUpdatedAt,
		archivedAt:       p.ArchivedAt,
		clock:            clock,

		guard: guard.NewConstructorGuard(),
	}
	return s, nil
}

// Validate checks that the session was created through a constructor.
func (s *Session) Validate() error {
	return s.guard.Validate(ErrSessionIsNotConstructed)
}

func (s *Session) ID() kernel.UUID      { return s.id }
func (s *Session) OfferID() kernel.UUID { return s.offerID }
func (s *Session) RiderID() kernel.UUID { return s.riderID }

func (s *Session) Status() SessionStatus { return s.status }
func (s *Session) IsActive() bool        { return s.isActive }

func (s *Session) StartedAt() time.Time     { return s.startedAt }
func (s *Session) LastUpdatedAt() time.Time { return s.lastUpdatedAt }

// ArchivedAt returns the archival instant, or nil while the session is live.
func (s *Session) ArchivedAt() *time.Time {
	if s.archivedAt == nil {
		return nil
	}
	t := *s.archivedAt
	return &t
}

// Events returns a copy of the full event log, oldest first.
func (s *Session) Events() []Event {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Locations returns a copy of the retained location trail, oldest first.
func (s *Session) Locations() []LocationPoint { return s.locations.Snapshot() }

// CurrentLocation returns the latest recorded location, or nil before the
// first fix.
func (s *Session) CurrentLocation() *LocationPoint {
	if s.currentLocation == nil {
		return nil
	}
	p := *s.currentLocation
	return &p
}

// TotalDistanceMeters is the accumulated great-circle distance over all
// recorded location fixes. Points dropped from the bounded trail still
// count towards it.
func (s *Session) TotalDistanceMeters() float64 { return s.totalDistanceM }

// PickupAttempts returns a copy of all recorded pickup attempts.
func (s *Session) PickupAttempts() []Attempt {
	out := make([]Attempt, len(s.pickupAttempts))
	copy(out, s.pickupAttempts)
	return out
}

// DeliveryAttempts returns a copy of all recorded delivery attempts.
func (s *Session) DeliveryAttempts() []Attempt {
	out := make([]Attempt, len(s.deliveryAttempts))
	copy(out, s.deliveryAttempts)
	return out
}

// Issues returns a copy of the full issue ledger, resolved entries included.
func (s *Session) Issues() []Issue {
	out := make([]Issue, len(s.issues))
	copy(out, s.issues)
	return out
}

// HasActiveIssues reports whether any issue is still unresolved.
func (s *Session) HasActiveIssues() bool {
	for _, issue := range s.issues {
		if !issue.Resolved {
			return true
		}
	}
	return false
}

// Confirmation returns the proof of delivery, or nil until confirmed.
func (s *Session) Confirmation() *DeliveryConfirmation {
	if s.confirmation == nil {
		return nil
	}
	c := *s.confirmation
	return &c
}

// Estimate returns the current ETA, or nil before the first computation.
func (s *Session) Estimate() *Estimate {
	if s.estimate == nil {
		return nil
	}
	e := *s.estimate
	return &e
}

// StatusTimestamp returns when the session first entered the given status.
func (s *Session) StatusTimestamp(status SessionStatus) (time.Time, bool) {
	t, ok := s.statusTimestamps[status]
	return t, ok
}

// AddEvent appends a rider event. Events with a status mapping move the
// session to that status and stamp its first-entry time; informational
// events only extend the log. A terminal status archives the session.
func (s *Session) AddEvent(eventType EventType, meta EventMeta) error {
	if !s.isActive {
		return ErrSessionArchived
	}
	if err := eventType.Validate(); err != nil {
		return err
	}
	if meta.Location != nil {
		if err := meta.Location.Validate(); err != nil {
			return err
		}
	}

	now := s.clock.Now()
	s.events = append(s.events, Event{
		Type:      eventType,
		Timestamp: now,
		Notes:     meta.Notes,
		Location:  meta.Location,
		Metadata:  meta.Metadata,
	})
	s.lastUpdatedAt = now

	if next, ok := StatusForEvent(eventType); ok {
		s.moveTo(next, now)
	}
	return nil
}

func (s *Session) moveTo(next SessionStatus, at time.Time) {
	s.status = next
	if _, seen := s.statusTimestamps[next]; !seen {
		s.statusTimestamps[next] = at
	}
	if next.IsTerminal() {
		s.isActive = false
		archived := at
		s.archivedAt = &archived
	}
}

// RecordLocation appends a GPS fix to the bounded trail, accumulates the
// travelled distance from the previous fix, and logs a location_updated
// event.
func (s *Session) RecordLocation(point kernel.GeoPoint, update LocationUpdate) error {
	if !s.isActive {
		return ErrSessionArchived
	}
	if err := point.Validate(); err != nil {
		return err
	}

	now := s.clock.Now()
	if s.currentLocation != nil {
		meters, err := s.currentLocation.Point.DistanceTo(point)
		if err != nil {
			return err
		}
		s.totalDistanceM += meters
	}

	fix := LocationPoint{
		Point:          point,
		AccuracyMeters: update.AccuracyMeters,
		SpeedKmh:       update.SpeedKmh,
		BearingDegrees: update.BearingDegrees,
		Timestamp:      now,
	}
	s.locations.Append(fix)
	s.currentLocation = &fix

	s.events = append(s.events, Event{
		Type:      EventLocationUpdated,
		Timestamp: now,
		Location:  &point,
	})
	s.lastUpdatedAt = now
	return nil
}

// AddPickupAttempt logs a pickup attempt. A successful attempt also moves
// the session to the picked_up status.
func (s *Session) AddPickupAttempt(input AttemptInput) error {
	return s.addAttempt(input, &s.pickupAttempts, EventPickupAttempted, SessionPickedUp)
}

// AddDeliveryAttempt logs a delivery attempt. A successful attempt also
// moves the session to the delivered status.
func (s *Session) AddDeliveryAttempt(input AttemptInput) error {
	return s.addAttempt(input, &s.deliveryAttempts, EventDeliveryAttempted, SessionDelivered)
}

func (s *Session) addAttempt(
	input AttemptInput, log *[]Attempt, eventType EventType, onSuccess SessionStatus,
) error {
	if !s.isActive {
		return ErrSessionArchived
	}

	now := s.clock.Now()
	contacts := make([]ContactAttempt, len(input.ContactAttempts))
	copy(contacts, input.ContactAttempts)
	*log = append(*log, Attempt{
		Successful:      input.Successful,
		Notes:           input.Notes,
		ContactAttempts: contacts,
		Timestamp:       now,
	})

	s.events = append(s.events, Event{
		Type:      eventType,
		Timestamp: now,
		Notes:     input.Notes,
		Metadata:  map[string]string{"successful": fmt.Sprintf("%t", input.Successful)},
	})
	s.lastUpdatedAt = now

	if input.Successful {
		s.moveTo(onSuccess, now)
	}
	return nil
}

// ReportIssue appends an issue to the ledger. Severity defaults to medium
// when left empty.
func (s *Session) ReportIssue(input IssueInput) error {
	if !s.isActive {
		return ErrSessionArchived
	}
	if input.Type == "" {
		return errs.NewValueIsRequiredError("issue type")
	}
	if input.ReportedBy.Validate() != nil {
		return errs.NewValueIsRequiredError("reportedBy")
	}

	severity := input.Severity
	if severity == "" {
		severity = SeverityMedium
	}
	switch severity {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
	default:
		return errs.NewValueIsInvalidError("severity")
	}

	now := s.clock.Now()
	s.issues = append(s.issues, Issue{
		Type:        input.Type,
		Description: input.Description,
		Severity:    severity,
		ReportedBy:  input.ReportedBy,
		ReportedAt:  now,
	})
	s.events = append(s.events, Event{
		Type:      EventIssueReported,
		Timestamp: now,
		Notes:     input.Description,
		Metadata: map[string]string{
			"issue_type": input.Type,
			"severity":   string(severity),
		},
	})
	s.lastUpdatedAt = now
	return nil
}

// ResolveIssue marks the issue at the given ledger index as resolved.
func (s *Session) ResolveIssue(index int) error {
	if !s.isActive {
		return ErrSessionArchived
	}
	if index < 0 || index >= len(s.issues) || s.issues[index].Resolved {
		return ErrIssueNotFound
	}

	now := s.clock.Now()
	s.issues[index].Resolved = true
	s.issues[index].ResolvedAt = &now
	s.events = append(s.events, Event{
		Type:      EventIssueResolved,
		Timestamp: now,
		Metadata:  map[string]string{"issue_type": s.issues[index].Type},
	})
	s.lastUpdatedAt = now
	return nil
}

// ConfirmDelivery stores the proof of hand-over. The rider must have
// reached the delivery phase first.
func (s *Session) ConfirmDelivery(input ConfirmationInput) error {
	if !s.isActive {
		return ErrSessionArchived
	}
	if !s.status.InDeliveryPhase() {
		return ErrNotInDeliveryPhase
	}
	switch input.Type {
	case ConfirmationSignature, ConfirmationPhoto, ConfirmationPin, ConfirmationContactless:
	default:
		return errs.NewValueIsInvalidError("confirmation type")
	}
	if input.Location != nil {
		if err := input.Location.Validate(); err != nil {
			return err
		}
	}

	now := s.clock.Now()
	s.confirmation = &DeliveryConfirmation{
		Type:        input.Type,
		Payload:     input.Payload,
		Location:    input.Location,
		Notes:       input.Notes,
		ConfirmedAt: now,
	}
	s.events = append(s.events, Event{
		Type:      EventDeliveryConfirmed,
		Timestamp: now,
		Notes:     input.Notes,
		Location:  input.Location,
		Metadata:  map[string]string{"confirmation_type": string(input.Type)},
	})
	s.lastUpdatedAt = now
	return nil
}

// SetEstimate stores a freshly computed ETA. The absolute estimated time is
// anchored at the session clock's now plus the travel duration.
func (s *Session) SetEstimate(distanceKm float64, duration time.Duration, factors EstimateFactors) error {
	if !s.isActive {
		return ErrSessionArchived
	}
	if distanceKm < 0 {
		return errs.NewValueIsInvalidError("distanceKm")
	}
	if duration < 0 {
		return errs.NewValueIsInvalidError("duration")
	}

	now := s.clock.Now()
	s.estimate = &Estimate{
		DistanceKm:    distanceKm,
		Duration:      duration,
		EstimatedTime: now.Add(duration),
		Factors:       factors,
	}
	s.lastUpdatedAt = now
	return nil
}

// EstimatedMinutesRemaining returns the whole minutes left until the
// estimated delivery time, floored at zero, or nil without an estimate.
func (s *Session) EstimatedMinutesRemaining() *int {
	if s.estimate == nil {
		return nil
	}
	remaining := int(s.estimate.EstimatedTime.Sub(s.clock.Now()).Minutes())
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// CalculateMetrics derives the performance figures from the recorded status
// timestamps. Each figure is nil when its prerequisite timestamps are
// missing.
func (s *Session) CalculateMetrics() Metrics {
	var m Metrics

	accepted, hasAccepted := s.statusTimestamps[SessionAccepted]
	pickedUp, hasPickedUp := s.statusTimestamps[SessionPickedUp]
	delivered, hasDelivered := s.statusTimestamps[SessionDelivered]

	if hasAccepted && hasPickedUp {
		v := wholeMinutes(pickedUp.Sub(accepted))
		m.PickupDurationMinutes = &v
	}
	if hasPickedUp && hasDelivered {
		v := wholeMinutes(delivered.Sub(pickedUp))
		m.TransitDurationMinutes = &v
	}
	if hasAccepted && hasDelivered {
		v := wholeMinutes(delivered.Sub(accepted))
		m.TotalDurationMinutes = &v
	}
	if hasPickedUp && hasDelivered && s.totalDistanceM > 0 {
		hours := delivered.Sub(pickedUp).Hours()
		if hours > 0 {
			v := (s.totalDistanceM / 1000.0) / hours
			m.AverageSpeedKmh = &v
		}
	}
	if hasDelivered && s.estimate != nil {
		onTime := !delivered.After(s.estimate.EstimatedTime)
		m.OnTimePerformance = &onTime
		delay := wholeMinutes(delivered.Sub(s.estimate.EstimatedTime))
		if delay < 0 {
			delay = 0
		}
		m.DelayMinutes = &delay
	}
	return m
}

// TotalDeliveryTimeMinutes is the whole minutes from acceptance to
// completion, or nil while the session has not completed.
func (s *Session) TotalDeliveryTimeMinutes() *int {
	accepted, hasAccepted := s.statusTimestamps[SessionAccepted]
	completed, hasCompleted := s.statusTimestamps[SessionCompleted]
	if !hasAccepted || !hasCompleted {
		return nil
	}
	v := wholeMinutes(completed.Sub(accepted))
	return &v
}

// Summary builds the lightweight read model.
func (s *Session) Summary() Summary {
	return Summary{
		OfferID:         s.offerID,
		RiderID:         s.riderID,
		Status:          s.status,
		Progress:        s.status.Progress(),
		Phase:           s.status.Phase(),
		IsActive:        s.isActive,
		CurrentLocation: s.CurrentLocation(),
		Estimate:        s.Estimate(),
		StartedAt:       s.startedAt,
		LastUpdatedAt:   s.lastUpdatedAt,
	}
}

// TrackingData builds the customer-facing read model.
func (s *Session) TrackingData() TrackingData {
	return TrackingData{
		Summary:                   s.Summary(),
		EstimatedMinutesRemaining: s.EstimatedMinutesRemaining(),
		TotalDistanceKm:           s.totalDistanceM / 1000.0,
	}
}

// DetailedTracking builds the operator-facing read model with the most
// recent events and location fixes, unresolved issues, and derived metrics.
func (s *Session) DetailedTracking() DetailedTracking {
	events := s.events
	if len(events) > DetailedEventWindow {
		events = events[len(events)-DetailedEventWindow:]
	}
	recentEvents := make([]Event, len(events))
	copy(recentEvents, events)

	var unresolved []Issue
	for _, issue := range s.issues {
		if !issue.Resolved {
			unresolved = append(unresolved, issue)
		}
	}

	return DetailedTracking{
		TrackingData:     s.TrackingData(),
		RecentEvents:     recentEvents,
		RecentLocations:  s.locations.Tail(DetailedLocationWindow),
		UnresolvedIssues: unresolved,
		PickupAttempts:   s.PickupAttempts(),
		DeliveryAttempts: s.DeliveryAttempts(),
		Confirmation:     s.Confirmation(),
		Metrics:          s.CalculateMetrics(),
	}
}

func wholeMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}
