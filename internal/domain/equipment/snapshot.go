package equipment

import (
	"fmt"
	"slices"
)

// Snapshot is the persisted form of any equipment variant. Fields that do
// not apply to Kind are left zero.
type Snapshot struct {
	Serial                  string  `bson:"_id" json:"serial"`
	Kind                    Kind    `bson:"kind" json:"kind"`
	Name                    string  `bson:"name" json:"name"`
	Manufacturer            string  `bson:"manufacturer" json:"manufacturer"`
	ManufactureYear         int     `bson:"manufacture_year" json:"manufacture_year"`
	PurchasePrice           float64 `bson:"purchase_price" json:"purchase_price"`
	CurrentValue            float64 `bson:"current_value" json:"current_value"`
	Operational             bool    `bson:"operational" json:"operational"`
	MaintenanceIntervalDays int     `bson:"maintenance_interval_days" json:"maintenance_interval_days"`
	DaysSinceMaintenance    int     `bson:"days_since_maintenance" json:"days_since_maintenance"`
	UseCount                int     `bson:"use_count" json:"use_count"`
	Location                string  `bson:"location" json:"location"`

	FuelKind         FuelKind `bson:"fuel_kind,omitempty" json:"fuel_kind,omitempty"`
	FuelCapacity     float64  `bson:"fuel_capacity,omitempty" json:"fuel_capacity,omitempty"`
	FuelLevel        float64  `bson:"fuel_level,omitempty" json:"fuel_level,omitempty"`
	FuelEfficiency   float64  `bson:"fuel_efficiency,omitempty" json:"fuel_efficiency,omitempty"`
	DistanceTraveled float64  `bson:"distance_traveled,omitempty" json:"distance_traveled,omitempty"`
	Insured          bool     `bson:"insured,omitempty" json:"insured,omitempty"`

	EnginePower       float64  `bson:"engine_power,omitempty" json:"engine_power,omitempty"`
	HydraulicPressure float64  `bson:"hydraulic_pressure,omitempty" json:"hydraulic_pressure,omitempty"`
	FrontLoader       bool     `bson:"front_loader,omitempty" json:"front_loader,omitempty"`
	EngineHours       float64  `bson:"engine_hours,omitempty" json:"engine_hours,omitempty"`
	Implements        []string `bson:"implements,omitempty" json:"implements,omitempty"`

	BladeCount      int     `bson:"blade_count,omitempty" json:"blade_count,omitempty"`
	WorkingWidth    float64 `bson:"working_width,omitempty" json:"working_width,omitempty"`
	MaxWorkingDepth float64 `bson:"max_working_depth,omitempty" json:"max_working_depth,omitempty"`
	WorkingDepth    float64 `bson:"working_depth,omitempty" json:"working_depth,omitempty"`
	WearLevel       int     `bson:"wear_level,omitempty" json:"wear_level,omitempty"`
	Reversible      bool    `bson:"reversible,omitempty" json:"reversible,omitempty"`
}

func (r *Record) Snapshot() Snapshot {
	return Snapshot{
		Serial:                  r.serial,
		Kind:                    KindRecord,
		Name:                    r.name,
		Manufacturer:            r.manufacturer,
		ManufactureYear:         r.manufactureYear,
		PurchasePrice:           r.purchasePrice,
		CurrentValue:            r.currentValue,
		Operational:             r.operational,
		MaintenanceIntervalDays: r.maintenanceIntervalDays,
		DaysSinceMaintenance:    r.daysSinceMaintenance,
		UseCount:                r.useCount,
		Location:                r.location,
	}
}

func (v *Vehicle) Snapshot() Snapshot {
	s := v.Record.Snapshot()
	s.Kind = KindVehicle
	s.FuelKind = v.fuel.kind
	s.FuelCapacity = v.fuel.capacity
	s.FuelLevel = v.fuel.level
	s.FuelEfficiency = v.fuel.efficiency
	s.DistanceTraveled = v.distanceTraveled
	s.Insured = v.insured
	return s
}

func (t *Tractor) Snapshot() Snapshot {
	s := t.Vehicle.Snapshot()
	s.Kind = KindTractor
	s.EnginePower = t.enginePower
	s.HydraulicPressure = t.hydraulics.pressure
	s.FrontLoader = t.frontLoader
	s.EngineHours = t.engineHours
	s.Implements = t.rack.Names()
	return s
}

func (i *Implement) Snapshot() Snapshot {
	s := i.Record.Snapshot()
	s.Kind = KindImplement
	s.BladeCount = i.blades.count
	s.WorkingWidth = i.blades.width
	s.MaxWorkingDepth = i.blades.maxDepth
	s.WorkingDepth = i.blades.depth
	s.WearLevel = i.blades.wear
	s.Reversible = i.blades.reversible
	return s
}

// Restore rebuilds equipment from a snapshot, running the same validation
// as construction and re-claiming the serial in env.
func Restore(env *Env, s Snapshot) (Equipment, error) {
	if env == nil {
		env = NewEnv()
	}
	if s.UseCount < 0 || s.EngineHours < 0 {
		return nil, invalid("snapshot", "%s carries negative counters", s.Serial)
	}

	base := RecordSpec{
		Name:                    s.Name,
		Manufacturer:            s.Manufacturer,
		ManufactureYear:         s.ManufactureYear,
		Serial:                  s.Serial,
		PurchasePrice:           s.PurchasePrice,
		CurrentValue:            s.CurrentValue,
		MaintenanceIntervalDays: s.MaintenanceIntervalDays,
		DaysSinceMaintenance:    s.DaysSinceMaintenance,
		Location:                s.Location,
	}
	vehicle := VehicleSpec{
		RecordSpec:       base,
		FuelKind:         s.FuelKind,
		FuelCapacity:     s.FuelCapacity,
		FuelLevel:        s.FuelLevel,
		FuelEfficiency:   s.FuelEfficiency,
		DistanceTraveled: s.DistanceTraveled,
		Insured:          s.Insured,
	}

	var (
		eq  Equipment
		err error
	)
	switch s.Kind {
	case KindRecord:
		eq, err = NewRecord(env, base)
	case KindVehicle:
		eq, err = NewVehicle(env, vehicle)
	case KindTractor:
		eq, err = restoreTractor(env, vehicle, s)
	case KindImplement:
		eq, err = NewImplement(env, ImplementSpec{
			RecordSpec:      base,
			BladeCount:      s.BladeCount,
			WorkingWidth:    s.WorkingWidth,
			MaxWorkingDepth: s.MaxWorkingDepth,
			WorkingDepth:    s.WorkingDepth,
			WearLevel:       s.WearLevel,
			Reversible:      s.Reversible,
		})
	default:
		return nil, invalid("kind", "unknown equipment kind %q", s.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", s.Serial, err)
	}

	r := eq.Base()
	r.operational = s.Operational
	r.useCount = s.UseCount
	return eq, nil
}

// restoreTractor loads the implement rack as stored: attach preconditions
// describe the moment of attaching and do not apply to a saved rack.
func restoreTractor(env *Env, vehicle VehicleSpec, s Snapshot) (*Tractor, error) {
	if len(s.Implements) > maxAttachedImplements {
		return nil, invalid("implements", "%d implements exceed capacity %d", len(s.Implements), maxAttachedImplements)
	}
	for idx, name := range s.Implements {
		if name == "" || slices.Contains(s.Implements[:idx], name) {
			return nil, invalid("implements", "invalid or duplicate implement %q", name)
		}
	}

	t, err := NewTractor(env, TractorSpec{
		VehicleSpec:       vehicle,
		EnginePower:       s.EnginePower,
		HydraulicPressure: s.HydraulicPressure,
		FrontLoader:       s.FrontLoader,
	})
	if err != nil {
		return nil, err
	}

	t.rack.names = slices.Clone(s.Implements)
	t.engineHours = s.EngineHours
	return t, nil
}
