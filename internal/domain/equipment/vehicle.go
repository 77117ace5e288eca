package equipment

import (
	"math"
)

const (
	fuelOverfillTolerance = 1.1
	lowFuelFraction       = 0.10
	maxTripDistance       = 1000.0
	distanceDepreciation  = 1e-5
	highMileageDistance   = 300000.0
	wornEngineDistance    = 150000.0
	wornEngineRangeFactor = 0.9
	oilChangeInterval     = 5000.0
	oilChangeWindow       = 100.0
	nominalTripDistance   = 10.0
	maxRefuelFactor       = 2.0
)

// FuelKind is the energy source of a powered vehicle.
type FuelKind string

const (
	FuelDiesel   FuelKind = "diesel"
	FuelGasoline FuelKind = "gasoline"
	FuelElectric FuelKind = "electric"
)

// FuelTank is the fuel reservoir module. Efficiency is consumption per 100
// distance units.
type FuelTank struct {
	kind       FuelKind
	capacity   float64
	level      float64
	efficiency float64
}

func (t FuelTank) Kind() FuelKind      { return t.kind }
func (t FuelTank) Capacity() float64   { return t.capacity }
func (t FuelTank) Level() float64      { return t.level }
func (t FuelTank) Efficiency() float64 { return t.efficiency }

func (t FuelTank) needed(distance float64) float64 {
	return distance * t.efficiency / 100
}

func (t FuelTank) low() bool {
	return t.level < t.capacity*lowFuelFraction
}

// VehicleSpec adds the fuel and mileage configuration to RecordSpec.
// FuelLevel may exceed capacity by 10% and is clamped on construction.
type VehicleSpec struct {
	RecordSpec

	FuelKind         FuelKind `json:"fuel_kind" validate:"omitempty,oneof=diesel gasoline electric"`
	FuelCapacity     float64  `json:"fuel_capacity" validate:"gt=0,lte=1000"`
	FuelLevel        float64  `json:"fuel_level" validate:"gte=0"`
	FuelEfficiency   float64  `json:"fuel_efficiency" validate:"gt=0,lte=100"`
	DistanceTraveled float64  `json:"distance_traveled" validate:"gte=0"`
	Insured          bool     `json:"insured"`
}

// Vehicle is a self-propelled piece of equipment.
type Vehicle struct {
	Record

	fuel             FuelTank
	distanceTraveled float64
	insured          bool
}

// NewVehicle builds a powered vehicle.
func NewVehicle(env *Env, spec VehicleSpec) (*Vehicle, error) {
	v, err := newVehicle(env, KindVehicle, spec)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func newVehicle(env *Env, kind Kind, spec VehicleSpec) (Vehicle, error) {
	if env == nil {
		env = NewEnv()
	}
	if err := env.validateStruct(spec); err != nil {
		return Vehicle{}, err
	}
	if spec.FuelLevel > spec.FuelCapacity*fuelOverfillTolerance {
		return Vehicle{}, invalid("fuel_level", "%.1f exceeds capacity %.1f beyond tolerance", spec.FuelLevel, spec.FuelCapacity)
	}

	base, err := newRecord(env, kind, spec.RecordSpec)
	if err != nil {
		return Vehicle{}, err
	}

	fuelKind := spec.FuelKind
	if fuelKind == "" {
		fuelKind = FuelDiesel
	}

	return Vehicle{
		Record: base,
		fuel: FuelTank{
			kind:       fuelKind,
			capacity:   spec.FuelCapacity,
			level:      math.Min(spec.FuelLevel, spec.FuelCapacity),
			efficiency: spec.FuelEfficiency,
		},
		distanceTraveled: spec.DistanceTraveled,
		insured:          spec.Insured,
	}, nil
}

func (v *Vehicle) Kind() Kind                { return KindVehicle }
func (v *Vehicle) Fuel() FuelTank            { return v.fuel }
func (v *Vehicle) FuelLevel() float64        { return v.fuel.level }
func (v *Vehicle) DistanceTraveled() float64 { return v.distanceTraveled }
func (v *Vehicle) HasInsurance() bool        { return v.insured }

// Use is a day of use that includes a short nominal trip. Overdue
// maintenance breaks the vehicle down before the trip itself is checked.
func (v *Vehicle) Use() error {
	if !v.operational {
		return v.breakdown("not operational")
	}
	if v.overdueBy(overdueBreakdownFactor) {
		return v.fail("overdue maintenance")
	}
	fuel, err := v.checkTrip(nominalTripDistance, 1)
	if err != nil {
		return err
	}
	if err := v.Record.Use(); err != nil {
		return err
	}
	return v.commitTrip(nominalTripDistance, fuel)
}

// Refuel adds fuel, spilling whatever does not fit.
func (v *Vehicle) Refuel(amount float64) error {
	if !v.operational {
		return invalid("operational", "%s is not operational and cannot be refuelled", v.serial)
	}
	if !(amount > 0) {
		return invalid("amount", "must be positive")
	}
	if amount > v.fuel.capacity*maxRefuelFactor {
		return invalid("amount", "%.1f is implausible for a %.1f tank", amount, v.fuel.capacity)
	}

	v.fuel.level = math.Min(v.fuel.capacity, v.fuel.level+amount)
	return nil
}

// Drive moves the vehicle the given distance.
func (v *Vehicle) Drive(distance float64) error {
	fuel, err := v.checkTrip(distance, 1)
	if err != nil {
		return err
	}
	return v.commitTrip(distance, fuel)
}

// checkTrip validates a trip and returns the fuel it burns. loadFactor
// scales consumption for towed or carried loads.
func (v *Vehicle) checkTrip(distance, loadFactor float64) (float64, error) {
	if !v.operational {
		return 0, invalid("operational", "%s is not operational", v.serial)
	}
	if !v.insured {
		return 0, invalid("insurance", "%s is not insured", v.serial)
	}
	if !(distance >= 0 && distance <= maxTripDistance) {
		return 0, invalid("distance", "%.1f is outside [0, %.0f]", distance, maxTripDistance)
	}
	if v.fuel.low() {
		return 0, invalid("fuel_level", "low fuel: %.1f of %.1f", v.fuel.level, v.fuel.capacity)
	}

	needed := v.fuel.needed(distance) * loadFactor
	if needed > v.fuel.level {
		return 0, invalid("fuel_level", "insufficient fuel: need %.1f, have %.1f", needed, v.fuel.level)
	}
	return needed, nil
}

func (v *Vehicle) commitTrip(distance, fuel float64) error {
	v.fuel.level = math.Max(0, v.fuel.level-fuel)
	v.distanceTraveled += distance
	v.depreciate(distance * distanceDepreciation)

	if v.distanceTraveled > highMileageDistance && v.env.occurs(HazardHighMileage) {
		return v.fail("high mileage failure")
	}
	return nil
}

// RenewInsurance reinstates road cover.
func (v *Vehicle) RenewInsurance() error {
	if !v.operational {
		return invalid("operational", "%s is not operational and cannot be insured", v.serial)
	}
	if float64(v.daysSinceMaintenance) > relocationOverdueFactor*float64(v.maintenanceIntervalDays) {
		return invalid("days_since_maintenance", "maintenance is far overdue (%d days), insurer refuses cover", v.daysSinceMaintenance)
	}
	v.insured = true
	return nil
}

// CancelInsurance drops road cover.
func (v *Vehicle) CancelInsurance() {
	v.insured = false
}

// Range is the distance the current fuel allows. Engines past 150,000
// units lose 10% of it.
func (v *Vehicle) Range() float64 {
	r := v.fuel.level / v.fuel.efficiency * 100
	if v.distanceTraveled > wornEngineDistance {
		r *= wornEngineRangeFactor
	}
	return r
}

// FuelCost prices the fuel a trip of the given distance burns.
func (v *Vehicle) FuelCost(distance, pricePerUnit float64) (float64, error) {
	if !(distance >= 0) {
		return 0, invalid("distance", "must not be negative")
	}
	if !(pricePerUnit >= 0) {
		return 0, invalid("price_per_unit", "must not be negative")
	}
	return v.fuel.needed(distance) * pricePerUnit, nil
}

// NeedsOilChange is true within 100 units after every 5,000 units driven.
// Electric vehicles never need one.
func (v *Vehicle) NeedsOilChange() bool {
	if v.fuel.kind == FuelElectric {
		return false
	}
	return v.distanceTraveled >= oilChangeInterval && math.Mod(v.distanceTraveled, oilChangeInterval) < oilChangeWindow
}
