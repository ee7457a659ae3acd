package offer

import (
	"errors"
	"fmt"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

// Domain errors for offer lifecycle operations. The transition messages are
// part of the engine's contract with callers and are matched verbatim.
var (
	// ErrOfferIsNotConstructed is returned when an Offer instance was not
	// created through NewOffer or RestoreOffer.
	ErrOfferIsNotConstructed = errors.New("Offer must be created via NewOffer constructor")

	// ErrOnlyRidersCanAccept is returned when the business owner attempts
	// to accept its own offer.
	ErrOnlyRidersCanAccept = errors.New("Only riders can accept offers")

	// ErrAcceptedByAnotherRider is returned when a rider attempts to accept
	// an offer already held by a different rider.
	ErrAcceptedByAnotherRider = errors.New("already accepted by another rider")

	// ErrOnlyAssignedRiderCanProgress is returned when someone other than
	// the assigned rider attempts a pickup/transit/delivery transition.
	ErrOnlyAssignedRiderCanProgress = errors.New("Only the assigned rider can update delivery progress")

	// ErrOnlyPartiesCanComplete is returned when an unrelated actor attempts
	// the delivered -> completed transition.
	ErrOnlyPartiesCanComplete = errors.New("Only the business owner or assigned rider can complete the offer")

	// ErrOnlyPartiesCanCancel is returned when an unrelated actor attempts
	// to cancel the offer.
	ErrOnlyPartiesCanCancel = errors.New("Only the business owner or assigned rider can cancel the offer")

	// ErrClockIsRequired is returned when an Offer is constructed without a clock.
	ErrClockIsRequired = errs.NewValueIsRequiredError("clock")
)

// NewInvalidTransitionError builds the canonical message for an illegal
// status move.
func NewInvalidTransitionError(from, to Status) error {
	return fmt.Errorf("Invalid status transition from '%s' to '%s'", from, to)
}

// Role identifies what an actor is to a particular offer, resolved purely by
// identity comparison against the stored business and rider references.
type Role int

const (
	// RoleUnknown means the actor is neither the business owner nor the
	// assigned rider.
	RoleUnknown Role = iota
	// RoleBusiness means the actor is the business that created the offer.
	RoleBusiness
	// RoleRider means the actor is the currently assigned rider.
	RoleRider
)

// String implements fmt.Stringer.
func (r Role) String() string {
	switch r {
	case RoleBusiness:
		return "business"
	case RoleRider:
		return "rider"
	default:
		return "unknown"
	}
}

// Action names an operation an actor is allowed to perform on an offer.
type Action string

const (
	ActionCancel       Action = "cancel"
	ActionEdit         Action = "edit"
	ActionUpdateStatus Action = "updateStatus"
)

// StatusChange is one immutable entry of the offer's append-only audit trail.
type StatusChange struct {
	Status    Status
	Timestamp time.Time
	Actor     kernel.UUID
	Notes     string
	Location  *kernel.GeoPoint
}

// TransitionMeta carries optional context recorded with a status change.
type TransitionMeta struct {
	Notes    string
	Location *kernel.GeoPoint
}

// TransitionCheck is the structured result of ValidateTransition.
// When IsValid is false, Err carries the human-readable reason and
// ValidTransitions lists the moves that would have been legal (empty for
// terminal states).
type TransitionCheck struct {
	IsValid          bool
	Err              error
	ValidTransitions []Status
}

// TransitionApplied describes a successfully applied status change.
type TransitionApplied struct {
	PreviousStatus Status
	NewStatus      Status
	Timestamp      time.Time
	Actor          kernel.UUID
}

// StatusInfo is the read-only projection of the offer's current state.
type StatusInfo struct {
	CurrentStatus   Status
	Timestamp       time.Time
	ValidNextStates []Status
	IsTerminal      bool
	AssignedRider   *kernel.UUID
	StatusHistory   []StatusChange
}

// ModificationRights describes what a given actor may do with the offer.
type ModificationRights struct {
	CanModify      bool
	AllowedActions []Action
	Reason         string
}

// Offer is the aggregate root for the commercial side of a delivery:
// a contract between a business and, once accepted, a rider.
//
// Invariants:
//   - status is always one of the fixed enum values
//   - the rider reference is set for every status past open (cancellation
//     from open keeps it empty)
//   - completed and cancelled are terminal: no further mutation
//   - at most one rider ever holds the rider reference; the race between
//     concurrent acceptors is resolved by the persistence layer's
//     conditional write, not by this aggregate alone
//   - statusHistory is append-only; past entries are never rewritten
type Offer struct {
	id         kernel.UUID
	businessID kernel.UUID
	riderID    *kernel.UUID
	status     Status

	pickup   Waypoint
	delivery Waypoint
	pkg      Package
	payment  Payment

	// transitionTimes is the status -> timestamp-field lookup: one stamp
	// per transition (acceptedAt, pickedUpAt, ...), keyed by status.
	transitionTimes map[Status]time.Time
	history         []StatusChange

	clock kernel.Clock
	guard guard.ConstructorGuard
}

// NewOffer creates an open Offer for the given business. The audit trail is
// seeded with the open entry so history always starts at creation.
func NewOffer(
	id kernel.UUID,
	businessID kernel.UUID,
	pickup Waypoint,
	delivery Waypoint,
	pkg Package,
	payment Payment,
	clock kernel.Clock,
) (*Offer, error) {
	o := &Offer{
		status: StatusOpen,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setBusinessID(businessID),
		o.setPickup(pickup),
		o.setDelivery(delivery),
		o.setPackage(pkg),
		o.setPayment(payment),
		o.setClock(clock),
	); err != nil {
		return nil, err
	}

	createdAt := o.clock.Now()
	o.transitionTimes = map[Status]time.Time{StatusOpen: createdAt}
	o.history = []StatusChange{{
		Status:    StatusOpen,
		Timestamp: createdAt,
		Actor:     businessID,
	}}

	return o, nil
}

// RestoreOffer reconstructs an Offer from persistent storage, preserving its
// status, rider assignment, transition timestamps, and audit trail.
func RestoreOffer(
	id kernel.UUID,
	businessID kernel.UUID,
	riderID *kernel.UUID,
	status Status,
	pickup Waypoint,
	delivery Waypoint,
	pkg Package,
	payment Payment,
	transitionTimes map[Status]time.Time,
	history []StatusChange,
	clock kernel.Clock,
) (*Offer, error) {
	o := &Offer{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setBusinessID(businessID),
		o.setPickup(pickup),
		o.setDelivery(delivery),
		o.setPackage(pkg),
		o.setPayment(payment),
		o.setClock(clock),
		o.setStatusWithRider(status, riderID),
	); err != nil {
		return nil, err
	}

	o.transitionTimes = make(map[Status]time.Time, len(transitionTimes))
	for s, ts := range transitionTimes {
		o.transitionTimes[s] = ts
	}
	o.history = make([]StatusChange, len(history))
	copy(o.history, history)

	return o, nil
}

// Validate ensures the Offer was created through a constructor.
func (o *Offer) Validate() error {
	if o == nil {
		return ErrOfferIsNotConstructed
	}
	return o.guard.Validate(ErrOfferIsNotConstructed)
}

// IsEqual compares two offers by identifier.
func (o *Offer) IsEqual(other *Offer) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the offer's unique identifier.
func (o *Offer) ID() kernel.UUID { return o.id }

// BusinessID returns the identifier of the business that created the offer.
func (o *Offer) BusinessID() kernel.UUID { return o.businessID }

// Rider returns the assigned rider's identifier, nil before acceptance.
func (o *Offer) Rider() *kernel.UUID { return o.riderID }

// Status returns the current commercial status.
func (o *Offer) Status() Status { return o.status }

// Pickup returns the pickup waypoint.
func (o *Offer) Pickup() Waypoint { return o.pickup }

// Delivery returns the delivery waypoint.
func (o *Offer) Delivery() Waypoint { return o.delivery }

// Package returns the parcel attributes.
func (o *Offer) Package() Package { return o.pkg }

// Payment returns the commercial terms.
func (o *Offer) Payment() Payment { return o.payment }

// CreatedAt returns the creation instant (the open stamp).
func (o *Offer) CreatedAt() time.Time {
	return o.transitionTimes[StatusOpen]
}

// TimeOf returns the instant the offer entered the given status, or nil if
// it never did.
func (o *Offer) TimeOf(status Status) *time.Time {
	ts, ok := o.transitionTimes[status]
	if !ok {
		return nil
	}
	return &ts
}

// TransitionTimes returns a copy of the status -> timestamp map.
func (o *Offer) TransitionTimes() map[Status]time.Time {
	out := make(map[Status]time.Time, len(o.transitionTimes))
	for s, ts := range o.transitionTimes {
		out[s] = ts
	}
	return out
}

// History returns a copy of the append-only status history.
func (o *Offer) History() []StatusChange {
	out := make([]StatusChange, len(o.history))
	copy(out, o.history)
	return out
}

// Role resolves what the actor is to this offer by identity comparison
// against the stored business and rider references. No attribute of the
// actor beyond its identifier is ever inspected.
func (o *Offer) Role(actor kernel.UUID) Role {
	if actor.IsEqual(o.businessID) {
		return RoleBusiness
	}
	if o.riderID != nil && actor.IsEqual(*o.riderID) {
		return RoleRider
	}
	return RoleUnknown
}

// ValidateTransition checks whether the actor may move the offer to target,
// without applying anything.
//
// Rules:
//   - any attempt from a terminal state fails with an empty valid-transition list
//   - only a rider may move open -> accepted; the owner cannot accept its own offer
//   - re-acceptance by the already-assigned rider is a no-op success
//   - acceptance by a different rider while assigned fails
//   - picked_up / in_transit / delivered require the assigned rider
//   - delivered -> completed requires the business owner or the assigned rider
//   - cancellation requires the business owner or the assigned rider
func (o *Offer) ValidateTransition(target Status, actor kernel.UUID) TransitionCheck {
	if o.status.IsTerminal() {
		return TransitionCheck{
			Err:              NewInvalidTransitionError(o.status, target),
			ValidTransitions: []Status{},
		}
	}

	valid := o.status.ValidTransitions()

	if target.Validate() != nil {
		return TransitionCheck{
			Err:              NewInvalidTransitionError(o.status, target),
			ValidTransitions: valid,
		}
	}

	if target == StatusAccepted {
		return o.validateAcceptance(actor, valid)
	}

	if !o.status.CanTransitionTo(target) {
		return TransitionCheck{
			Err:              NewInvalidTransitionError(o.status, target),
			ValidTransitions: valid,
		}
	}

	if err := o.validateActorForTransition(target, actor); err != nil {
		return TransitionCheck{Err: err, ValidTransitions: valid}
	}

	return TransitionCheck{IsValid: true, ValidTransitions: valid}
}

// UpdateStatus applies a validated transition: it sets the status, stamps the
// status-keyed timestamp, appends a history entry, and reports what changed.
// On validation failure nothing is applied. Re-acceptance by the assigned
// rider returns the original acceptance result without touching state.
func (o *Offer) UpdateStatus(target Status, actor kernel.UUID, meta TransitionMeta) (TransitionApplied, error) {
	check := o.ValidateTransition(target, actor)
	if !check.IsValid {
		return TransitionApplied{}, check.Err
	}

	// Idempotent re-acceptance: state stays untouched.
	if target == StatusAccepted && o.status == StatusAccepted {
		return TransitionApplied{
			PreviousStatus: StatusAccepted,
			NewStatus:      StatusAccepted,
			Timestamp:      o.transitionTimes[StatusAccepted],
			Actor:          actor,
		}, nil
	}

	previous := o.status
	now := o.clock.Now()

	if target == StatusAccepted {
		rider := actor
		o.riderID = &rider
	}

	o.status = target
	o.transitionTimes[target] = now
	o.history = append(o.history, StatusChange{
		Status:    target,
		Timestamp: now,
		Actor:     actor,
		Notes:     meta.Notes,
		Location:  meta.Location,
	})

	return TransitionApplied{
		PreviousStatus: previous,
		NewStatus:      target,
		Timestamp:      now,
		Actor:          actor,
	}, nil
}

// CurrentStatusInfo is a pure projection of the offer's state.
func (o *Offer) CurrentStatusInfo() StatusInfo {
	return StatusInfo{
		CurrentStatus:   o.status,
		Timestamp:       o.transitionTimes[o.status],
		ValidNextStates: o.status.ValidTransitions(),
		IsTerminal:      o.status.IsTerminal(),
		AssignedRider:   o.riderID,
		StatusHistory:   o.History(),
	}
}

// ModificationRights reports what the actor may do with the offer:
// the business sees cancel+edit before acceptance and cancel afterwards,
// the assigned rider sees updateStatus+cancel, terminal states deny all,
// unrelated actors are denied.
func (o *Offer) ModificationRights(actor kernel.UUID) ModificationRights {
	if o.status.IsTerminal() {
		return ModificationRights{Reason: "Offer is in terminal state"}
	}

	switch o.Role(actor) {
	case RoleBusiness:
		if o.status == StatusOpen {
			return ModificationRights{
				CanModify:      true,
				AllowedActions: []Action{ActionCancel, ActionEdit},
			}
		}
		return ModificationRights{
			CanModify:      true,
			AllowedActions: []Action{ActionCancel},
		}
	case RoleRider:
		return ModificationRights{
			CanModify:      true,
			AllowedActions: []Action{ActionUpdateStatus, ActionCancel},
		}
	default:
		return ModificationRights{Reason: "Insufficient permissions"}
	}
}

func (o *Offer) validateAcceptance(actor kernel.UUID, valid []Status) TransitionCheck {
	if o.riderID != nil {
		if actor.IsEqual(*o.riderID) {
			if o.status == StatusAccepted {
				return TransitionCheck{IsValid: true, ValidTransitions: valid}
			}
			return TransitionCheck{
				Err:              NewInvalidTransitionError(o.status, StatusAccepted),
				ValidTransitions: valid,
			}
		}
		return TransitionCheck{Err: ErrAcceptedByAnotherRider, ValidTransitions: valid}
	}

	if !o.status.CanTransitionTo(StatusAccepted) {
		return TransitionCheck{
			Err:              NewInvalidTransitionError(o.status, StatusAccepted),
			ValidTransitions: valid,
		}
	}

	if actor.IsEqual(o.businessID) {
		return TransitionCheck{Err: ErrOnlyRidersCanAccept, ValidTransitions: valid}
	}

	return TransitionCheck{IsValid: true, ValidTransitions: valid}
}

func (o *Offer) validateActorForTransition(target Status, actor kernel.UUID) error {
	role := o.Role(actor)

	switch target {
	case StatusPickedUp, StatusInTransit, StatusDelivered:
		if role != RoleRider {
			return ErrOnlyAssignedRiderCanProgress
		}
	case StatusCompleted:
		if role != RoleBusiness && role != RoleRider {
			return ErrOnlyPartiesCanComplete
		}
	case StatusCancelled:
		if role != RoleBusiness && role != RoleRider {
			return ErrOnlyPartiesCanCancel
		}
	}

	return nil
}

func (o *Offer) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Offer) setBusinessID(businessID kernel.UUID) error {
	if err := businessID.Validate(); err != nil {
		return err
	}
	o.businessID = businessID
	return nil
}

func (o *Offer) setPickup(pickup Waypoint) error {
	if err := pickup.Validate(); err != nil {
		return err
	}
	o.pickup = pickup
	return nil
}

func (o *Offer) setDelivery(delivery Waypoint) error {
	if err := delivery.Validate(); err != nil {
		return err
	}
	o.delivery = delivery
	return nil
}

func (o *Offer) setPackage(pkg Package) error {
	if err := pkg.Validate(); err != nil {
		return err
	}
	o.pkg = pkg
	return nil
}

func (o *Offer) setPayment(payment Payment) error {
	if err := payment.Validate(); err != nil {
		return err
	}
	o.payment = payment
	return nil
}

func (o *Offer) setClock(clock kernel.Clock) error {
	if clock == nil {
		return ErrClockIsRequired
	}
	o.clock = clock
	return nil
}

// setStatusWithRider restores status and rider assignment together so that
// their consistency rule holds: every status past acceptance requires a
// rider; open never has one.
func (o *Offer) setStatusWithRider(status Status, riderID *kernel.UUID) error {
	if err := status.Validate(); err != nil {
		return err
	}

	hasRider := riderID != nil
	switch status {
	case StatusOpen:
		if hasRider {
			return errs.NewValueIsInvalidErrorWithCause("status is invalid",
				fmt.Errorf("%s is not a valid status to have a rider", status))
		}
	case StatusCancelled:
		// Cancellation is reachable both before and after acceptance.
	default:
		if !hasRider {
			return errs.NewValueIsInvalidErrorWithCause("status is invalid",
				fmt.Errorf("%s is not a valid status to have no rider", status))
		}
	}

	if hasRider {
		if err := riderID.Validate(); err != nil {
			return err
		}
		rider := *riderID
		o.riderID = &rider
	}

	o.status = status
	return nil
}
