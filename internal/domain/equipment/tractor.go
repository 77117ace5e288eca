package equipment

import (
	"math"
	"slices"
	"strings"
)

const (
	nominalPressureMin       = 180.0
	nominalPressureMax       = 220.0
	maxHydraulicPressure     = 300.0
	detachPressureCeiling    = 150.0
	hydraulicDamageLoss      = 40.0
	maxAttachedImplements    = 5
	frontLoaderMinPower      = 50.0
	heavyImplementMinPower   = 100.0
	loadPerPowerUnit         = 20.0
	heavyLoadFraction        = 0.8
	maxPlowArea              = 500.0
	plowPowerPerHectare      = 2.0
	plowPowerHoursPerHectare = 20.0
	plowFuelPerPowerHour     = 0.2
	plowHourDepreciation     = 0.0005
	maxPlowHours             = 4.0
)

var incompatibleImplements = []string{"combine", "harvester"}

// Hydraulics is the hydraulic subsystem module.
type Hydraulics struct {
	pressure float64
}

func (h Hydraulics) Pressure() float64 { return h.pressure }

// Nominal reports whether pressure sits in the [180, 220] operating window.
func (h Hydraulics) Nominal() bool {
	return h.pressure >= nominalPressureMin && h.pressure <= nominalPressureMax
}

// ImplementRack is the ordered set of attached implement names.
type ImplementRack struct {
	names []string
}

func (r ImplementRack) Names() []string { return slices.Clone(r.names) }
func (r ImplementRack) Len() int        { return len(r.names) }

func (r ImplementRack) Contains(name string) bool {
	return slices.Contains(r.names, name)
}

// Matching reports whether any attached implement name contains pattern,
// ignoring case.
func (r ImplementRack) Matching(pattern string) bool {
	return slices.ContainsFunc(r.names, func(n string) bool { return nameHas(n, pattern) })
}

func nameHas(name, pattern string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(pattern))
}

// TractorSpec adds engine, hydraulics and implement configuration to VehicleSpec.
type TractorSpec struct {
	VehicleSpec

	EnginePower       float64  `json:"engine_power" validate:"gte=10,lte=1000"`
	HydraulicPressure float64  `json:"hydraulic_pressure" validate:"gte=0,lte=300"`
	FrontLoader       bool     `json:"front_loader"`
	Implements        []string `json:"implements" validate:"max=5,unique,dive,required"`
}

// Tractor is an implement carrier: a vehicle that pulls and powers implements.
type Tractor struct {
	Vehicle

	enginePower float64
	frontLoader bool
	engineHours float64
	hydraulics  Hydraulics
	rack        ImplementRack
}

// NewTractor builds an implement carrier. Initial implements go through the
// same checks as AttachImplement.
func NewTractor(env *Env, spec TractorSpec) (*Tractor, error) {
	if env == nil {
		env = NewEnv()
	}
	if err := env.validateStruct(spec); err != nil {
		return nil, err
	}

	t := &Tractor{
		enginePower: spec.EnginePower,
		hydraulics:  Hydraulics{pressure: spec.HydraulicPressure},
	}
	if err := t.SetFrontLoader(spec.FrontLoader); err != nil {
		return nil, err
	}
	for _, name := range spec.Implements {
		if err := t.AttachImplement(name); err != nil {
			return nil, err
		}
	}

	v, err := newVehicle(env, KindTractor, spec.VehicleSpec)
	if err != nil {
		return nil, err
	}
	t.Vehicle = v
	return t, nil
}

func (t *Tractor) Kind() Kind                 { return KindTractor }
func (t *Tractor) EnginePower() float64       { return t.enginePower }
func (t *Tractor) HasFrontLoader() bool       { return t.frontLoader }
func (t *Tractor) EngineHours() float64       { return t.engineHours }
func (t *Tractor) Hydraulics() Hydraulics     { return t.hydraulics }
func (t *Tractor) HydraulicPressure() float64 { return t.hydraulics.pressure }
func (t *Tractor) Implements() []string       { return t.rack.Names() }

// CheckHydraulicSystem reports whether pressure is within the nominal window.
func (t *Tractor) CheckHydraulicSystem() bool {
	return t.hydraulics.Nominal()
}

// SetFrontLoader fits or removes the front loader.
func (t *Tractor) SetFrontLoader(fitted bool) error {
	if fitted && t.enginePower < frontLoaderMinPower {
		return invalid("front_loader", "insufficient power %.0f, minimum is %.0f", t.enginePower, frontLoaderMinPower)
	}
	t.frontLoader = fitted
	return nil
}

// SetHydraulicPressure pumps up or releases the hydraulic system.
func (t *Tractor) SetHydraulicPressure(pressure float64) error {
	if !(pressure >= 0 && pressure <= maxHydraulicPressure) {
		return invalid("hydraulic_pressure", "%.1f is outside [0, %.0f]", pressure, maxHydraulicPressure)
	}
	t.hydraulics.pressure = pressure
	return nil
}

// AttachImplement hitches an implement by name.
func (t *Tractor) AttachImplement(name string) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return invalid("implement", "name must not be empty")
	case t.rack.Contains(name):
		return invalid("implement", "%s is already attached", name)
	}

	for _, pattern := range incompatibleImplements {
		if nameHas(name, pattern) {
			return invalid("implement", "%s is self-propelled and cannot be attached", name)
		}
	}
	if nameHas(name, "heavy") && t.enginePower < heavyImplementMinPower {
		return invalid("engine_power", "%s needs at least %.0f power, have %.0f", name, heavyImplementMinPower, t.enginePower)
	}
	if nameHas(name, "hydraulic") && !t.hydraulics.Nominal() {
		return invalid("hydraulic_pressure", "%s needs pressure in [%.0f, %.0f], have %.1f",
			name, nominalPressureMin, nominalPressureMax, t.hydraulics.pressure)
	}
	if t.rack.Len() >= maxAttachedImplements {
		return invalid("implements", "capacity of %d implements reached", maxAttachedImplements)
	}

	t.rack.names = append(t.rack.names, name)
	return nil
}

// DetachImplement unhitches an implement. Pressure must be released first.
func (t *Tractor) DetachImplement(name string) error {
	name = strings.TrimSpace(name)
	idx := slices.Index(t.rack.names, name)
	if idx < 0 {
		return invalid("implement", "%s is not attached", name)
	}
	if t.hydraulics.pressure > detachPressureCeiling {
		return invalid("hydraulic_pressure", "release pressure below %.0f before detaching (now %.1f)",
			detachPressureCeiling, t.hydraulics.pressure)
	}

	t.rack.names = slices.Delete(t.rack.names, idx, idx+1)
	return nil
}

// PlowField plows the given area in hectares. Work longer than four hours
// overheats the engine: four hours of fuel are burnt and the tractor breaks down.
func (t *Tractor) PlowField(area float64) error {
	if !t.operational {
		return invalid("operational", "%s is not operational", t.serial)
	}
	if !(area > 0 && area <= maxPlowArea) {
		return invalid("area", "%.1f is outside (0, %.0f]", area, maxPlowArea)
	}
	if !t.rack.Matching("plow") {
		return invalid("implements", "no plow attached")
	}
	if !t.hydraulics.Nominal() {
		return invalid("hydraulic_pressure", "hydraulic system is not nominal (%.1f)", t.hydraulics.pressure)
	}
	if required := area * plowPowerPerHectare; required > t.enginePower {
		return invalid("engine_power", "plowing %.1f ha needs %.0f power, have %.0f", area, required, t.enginePower)
	}

	hours := t.PlowHours(area)
	fuel := hours * t.enginePower * plowFuelPerPowerHour
	if fuel > t.fuel.level {
		return invalid("fuel_level", "insufficient fuel: need %.1f, have %.1f", fuel, t.fuel.level)
	}

	if hours > maxPlowHours {
		t.work(maxPlowHours)
		return t.fail("engine overheating")
	}
	t.work(hours)
	return nil
}

// PlowHours is the time needed to plow the given area.
func (t *Tractor) PlowHours(area float64) float64 {
	return area * plowPowerHoursPerHectare / t.enginePower
}

func (t *Tractor) work(hours float64) {
	t.fuel.level = math.Max(0, t.fuel.level-hours*t.enginePower*plowFuelPerPowerHour)
	t.engineHours += hours
	t.depreciate(hours * plowHourDepreciation)
}

// MaxLoad is the heaviest load the tractor may haul.
func (t *Tractor) MaxLoad() float64 {
	return t.enginePower * loadPerPowerUnit
}

// TransportLoad hauls weight over distance. Loads above 80% of MaxLoad can
// damage the hydraulics, which drops pressure and breaks the tractor down.
func (t *Tractor) TransportLoad(weight, distance float64) error {
	if !(weight > 0) {
		return invalid("weight", "must be positive")
	}
	maxLoad := t.MaxLoad()
	if weight > maxLoad {
		return invalid("weight", "%.0f exceeds maximum load %.0f", weight, maxLoad)
	}

	fuel, err := t.checkTrip(distance, 1+weight/maxLoad)
	if err != nil {
		return err
	}

	if weight > maxLoad*heavyLoadFraction && t.env.occurs(HazardHydraulicDamage) {
		t.hydraulics.pressure = math.Max(0, t.hydraulics.pressure-hydraulicDamageLoss)
		return t.fail("hydraulic damage under heavy load")
	}
	return t.commitTrip(distance, fuel)
}
