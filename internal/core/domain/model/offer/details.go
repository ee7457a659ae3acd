package offer

import (
	"errors"
	"fmt"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

// Domain errors for offer detail value objects.
var (
	ErrAddressIsRequired  = errs.NewValueIsRequiredError("address")
	ErrCurrencyIsRequired = errs.NewValueIsRequiredError("currency")
	ErrWaypointIsNotConstructed = errs.NewValueIsRequiredError(
		"waypoint must be created via NewWaypoint constructor")
	ErrPackageIsNotConstructed = errs.NewValueIsRequiredError(
		"package must be created via NewPackage constructor")
	ErrPaymentIsNotConstructed = errs.NewValueIsRequiredError(
		"payment must be created via NewPayment constructor")
)

// Waypoint describes one end of the delivery: a street address with its
// coordinates, the contact on site, and an optional service time window.
// Immutable value object.
type Waypoint struct { //nolint:recvcheck //using for validation
	address      string
	point        kernel.GeoPoint
	contactName  string
	contactPhone string
	windowFrom   *time.Time
	windowTo     *time.Time

	guard guard.ConstructorGuard
}

// NewWaypoint creates a validated Waypoint. The address must be non-empty and
// the point must be a constructed GeoPoint. Contact details and the time
// window are optional; when both window bounds are given, from must not be
// after to.
func NewWaypoint(
	address string,
	point kernel.GeoPoint,
	contactName string,
	contactPhone string,
	windowFrom *time.Time,
	windowTo *time.Time,
) (Waypoint, error) {
	waypoint := Waypoint{
		contactName:  contactName,
		contactPhone: contactPhone,
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		waypoint.setAddress(address),
		waypoint.setPoint(point),
		waypoint.setWindow(windowFrom, windowTo),
	); err != nil {
		return Waypoint{}, err
	}

	return waypoint, nil
}

// Validate checks that the Waypoint was created via NewWaypoint.
func (w Waypoint) Validate() error {
	return w.guard.Validate(ErrWaypointIsNotConstructed)
}

// Address returns the street address.
func (w Waypoint) Address() string { return w.address }

// Point returns the waypoint coordinates.
func (w Waypoint) Point() kernel.GeoPoint { return w.point }

// ContactName returns the on-site contact name, possibly empty.
func (w Waypoint) ContactName() string { return w.contactName }

// ContactPhone returns the on-site contact phone, possibly empty.
func (w Waypoint) ContactPhone() string { return w.contactPhone }

// WindowFrom returns the start of the service window, nil when unbounded.
func (w Waypoint) WindowFrom() *time.Time { return w.windowFrom }

// WindowTo returns the end of the service window, nil when unbounded.
func (w Waypoint) WindowTo() *time.Time { return w.windowTo }

func (w *Waypoint) setAddress(address string) error {
	if address == "" {
		return ErrAddressIsRequired
	}
	w.address = address
	return nil
}

func (w *Waypoint) setPoint(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	w.point = point
	return nil
}

func (w *Waypoint) setWindow(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return errs.NewValueIsInvalidErrorWithCause("time window is invalid",
			fmt.Errorf("window start %s is after window end %s", from, to))
	}
	w.windowFrom = from
	w.windowTo = to
	return nil
}

// Package describes the parcel being delivered: weight in kilograms,
// dimensions in centimeters, and fragility. Immutable value object.
type Package struct { //nolint:recvcheck //using for validation
	weightKg float64
	lengthCm float64
	widthCm  float64
	heightCm float64
	fragile  bool

	guard guard.ConstructorGuard
}

// NewPackage creates a validated Package. Weight must be positive;
// dimensions must be non-negative.
func NewPackage(weightKg, lengthCm, widthCm, heightCm float64, fragile bool) (Package, error) {
	pkg := Package{
		fragile: fragile,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		pkg.setWeight(weightKg),
		pkg.setDimensions(lengthCm, widthCm, heightCm),
	); err != nil {
		return Package{}, err
	}

	return pkg, nil
}

// Validate checks that the Package was created via NewPackage.
func (p Package) Validate() error {
	return p.guard.Validate(ErrPackageIsNotConstructed)
}

// WeightKg returns the parcel weight in kilograms.
func (p Package) WeightKg() float64 { return p.weightKg }

// LengthCm returns the parcel length in centimeters.
func (p Package) LengthCm() float64 { return p.lengthCm }

// WidthCm returns the parcel width in centimeters.
func (p Package) WidthCm() float64 { return p.widthCm }

// HeightCm returns the parcel height in centimeters.
func (p Package) HeightCm() float64 { return p.heightCm }

// Fragile reports whether the parcel needs careful handling.
func (p Package) Fragile() bool { return p.fragile }

// VolumeLiters returns the parcel volume in liters, derived from dimensions.
func (p Package) VolumeLiters() float64 {
	return p.lengthCm * p.widthCm * p.heightCm / 1000
}

func (p *Package) setWeight(weightKg float64) error {
	if weightKg <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("weight is invalid",
			fmt.Errorf("%g is not greater than 0", weightKg))
	}
	p.weightKg = weightKg
	return nil
}

func (p *Package) setDimensions(lengthCm, widthCm, heightCm float64) error {
	if lengthCm < 0 || widthCm < 0 || heightCm < 0 {
		return errs.NewValueIsInvalidError("dimensions are invalid")
	}
	p.lengthCm = lengthCm
	p.widthCm = widthCm
	p.heightCm = heightCm
	return nil
}

// Payment holds the commercial terms of the offer. The engine stores the
// terms only; settlement is driven by an external payment collaborator.
type Payment struct { //nolint:recvcheck //using for validation
	amount   int64
	currency string
	method   string

	guard guard.ConstructorGuard
}

// NewPayment creates validated payment terms. Amount is expressed in minor
// currency units and must be positive; currency is required.
func NewPayment(amount int64, currency, method string) (Payment, error) {
	payment := Payment{
		method: method,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		payment.setAmount(amount),
		payment.setCurrency(currency),
	); err != nil {
		return Payment{}, err
	}

	return payment, nil
}

// Validate checks that the Payment was created via NewPayment.
func (p Payment) Validate() error {
	return p.guard.Validate(ErrPaymentIsNotConstructed)
}

// Amount returns the price in minor currency units.
func (p Payment) Amount() int64 { return p.amount }

// Currency returns the ISO currency code.
func (p Payment) Currency() string { return p.currency }

// Method returns the agreed payment method, possibly empty.
func (p Payment) Method() string { return p.method }

func (p *Payment) setAmount(amount int64) error {
	if amount <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("amount is invalid",
			fmt.Errorf("%d is not greater than 0", amount))
	}
	p.amount = amount
	return nil
}

func (p *Payment) setCurrency(currency string) error {
	if currency == "" {
		return ErrCurrencyIsRequired
	}
	p.currency = currency
	return nil
}
