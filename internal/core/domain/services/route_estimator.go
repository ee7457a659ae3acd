package services

import (
	"errors"
	"fmt"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/offer"
	"lastmile/internal/core/domain/model/tracking"
)

// ErrUnknownVehicleType is returned when an estimate or capacity check is
// requested for a vehicle type the estimator does not know.
var ErrUnknownVehicleType = errors.New("unknown vehicle type")

// VehicleType names the rider's vehicle. The vehicle determines both the
// base travel speed for ETA computation and the carrying capacity used to
// decide whether a rider can take an offer at all.
type VehicleType string

const (
	VehicleBike    VehicleType = "bike"
	VehicleScooter VehicleType = "scooter"
	VehicleCar     VehicleType = "car"
	VehicleVan     VehicleType = "van"
)

// vehicleProfile bundles the per-vehicle constants.
type vehicleProfile struct {
	baseSpeedKmh   float64
	maxWeightKg    float64
	maxVolumeLiter float64
}

var vehicleProfiles = map[VehicleType]vehicleProfile{
	VehicleBike:    {baseSpeedKmh: 15, maxWeightKg: 5, maxVolumeLiter: 40},
	VehicleScooter: {baseSpeedKmh: 30, maxWeightKg: 15, maxVolumeLiter: 120},
	VehicleCar:     {baseSpeedKmh: 40, maxWeightKg: 50, maxVolumeLiter: 400},
	VehicleVan:     {baseSpeedKmh: 35, maxWeightKg: 200, maxVolumeLiter: 2000},
}

// Validate checks that the vehicle type is one of the supported values.
func (v VehicleType) Validate() error {
	if _, ok := vehicleProfiles[v]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownVehicleType, v)
	}
	return nil
}

// speedMultiplier tables. Each external factor scales the vehicle's base
// speed down; an unknown factor value falls back to the neutral 1.0 so a
// missing condition never breaks an estimate.
var (
	trafficMultipliers = map[tracking.TrafficLevel]float64{
		tracking.TrafficLight:    1.0,
		tracking.TrafficModerate: 0.75,
		tracking.TrafficHeavy:    0.5,
	}
	weatherMultipliers = map[tracking.WeatherCondition]float64{
		tracking.WeatherClear: 1.0,
		tracking.WeatherRain:  0.8,
		tracking.WeatherSnow:  0.6,
	}
	timeOfDayMultipliers = map[tracking.TimeOfDay]float64{
		tracking.TimeOffPeak:  1.0,
		tracking.TimeRushHour: 0.7,
		tracking.TimeNight:    0.9,
	}
)

// handlingBuffer is added to every travel time estimate to cover parking,
// building access, and the hand-over itself.
const handlingBuffer = 10 * time.Minute

// RouteEstimator is a domain service that computes delivery time estimates
// and checks vehicle capacity against a package.
//
// Estimation model: great-circle distance between two points, divided by
// the vehicle's base speed scaled down by traffic, weather, and time-of-day
// multipliers, plus a fixed handling buffer. The buffer guarantees no
// estimate ever promises less than ten minutes.
type RouteEstimator struct{}

// NewRouteEstimator creates a new RouteEstimator instance.
func NewRouteEstimator() RouteEstimator {
	return RouteEstimator{}
}

// EstimateDuration computes the expected travel time from one point to
// another under the given conditions.
func (e RouteEstimator) EstimateDuration(
	from, to kernel.GeoPoint, vehicle VehicleType, factors tracking.EstimateFactors,
) (time.Duration, error) {
	speed, err := e.effectiveSpeedKmh(vehicle, factors)
	if err != nil {
		return 0, err
	}

	meters, err := from.DistanceTo(to)
	if err != nil {
		return 0, err
	}

	travel := time.Duration(float64(time.Hour) * (meters / 1000.0) / speed)
	return travel + handlingBuffer, nil
}

// Estimate computes the full delivery estimate for the remaining leg of a
// route: the distance, the duration under current conditions, and the
// factors the figure was computed with.
func (e RouteEstimator) Estimate(
	from, to kernel.GeoPoint, vehicle VehicleType, factors tracking.EstimateFactors,
) (float64, time.Duration, error) {
	duration, err := e.EstimateDuration(from, to, vehicle, factors)
	if err != nil {
		return 0, 0, err
	}
	meters, err := from.DistanceTo(to)
	if err != nil {
		return 0, 0, err
	}
	return meters / 1000.0, duration, nil
}

// CanCarry reports whether a vehicle can take the given package, by weight
// and by volume.
func (e RouteEstimator) CanCarry(pkg offer.Package, vehicle VehicleType) (bool, error) {
	profile, ok := vehicleProfiles[vehicle]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownVehicleType, vehicle)
	}
	if pkg.WeightKg() > profile.maxWeightKg {
		return false, nil
	}
	if pkg.VolumeLiters() > profile.maxVolumeLiter {
		return false, nil
	}
	return true, nil
}

func (e RouteEstimator) effectiveSpeedKmh(
	vehicle VehicleType, factors tracking.EstimateFactors,
) (float64, error) {
	profile, ok := vehicleProfiles[vehicle]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownVehicleType, vehicle)
	}

	speed := profile.baseSpeedKmh
	speed *= multiplierOr(trafficMultipliers, factors.Traffic)
	speed *= multiplierOr(weatherMultipliers, factors.Weather)
	speed *= multiplierOr(timeOfDayMultipliers, factors.TimeOfDay)
	return speed, nil
}

func multiplierOr[K comparable](table map[K]float64, key K) float64 {
	if m, ok := table[key]; ok {
		return m
	}
	return 1.0
}
