package equipment

import (
	"fmt"
	"math"
	"strings"
)

const (
	useDepreciationRate       = 0.001
	ageCheckInterval          = 100
	ageWearFactor             = 0.02
	ageWearThreshold          = 0.30
	overdueBreakdownFactor    = 2.0
	relocationOverdueFactor   = 1.5
	minDaysBetweenMaintenance = 7
	maintenanceValueGain      = 0.01
	oldEquipmentYears         = 10
	maintenancePartWaitDays   = 14
	repairValueRatioLimit     = 5.0
	repairMaxAgeYears         = 15
	repairPartWaitDays        = 30
	repairValueGain           = 0.05
	annualDepreciationRate    = 0.10
	residualDecayRate         = 0.15
	warrantyYears             = 3
	baseMaintenanceCost       = 100.0
	maintenanceCostPerYear    = 10.0
	overduePenaltyPerDay      = 5.0
	maxMaintenanceInterval    = 365
)

// RecordSpec carries the constructor arguments shared by every equipment kind.
// An empty Serial asks the Env's SerialRegistry for a new one.
type RecordSpec struct {
	Name                    string  `json:"name" validate:"required"`
	Manufacturer            string  `json:"manufacturer" validate:"required"`
	ManufactureYear         int     `json:"manufacture_year" validate:"required"`
	Serial                  string  `json:"serial"`
	PurchasePrice           float64 `json:"purchase_price" validate:"gt=0"`
	CurrentValue            float64 `json:"current_value" validate:"gte=0,ltefield=PurchasePrice"`
	MaintenanceIntervalDays int     `json:"maintenance_interval_days" validate:"gt=0,lte=365"`
	DaysSinceMaintenance    int     `json:"days_since_maintenance" validate:"gte=0"`
	Location                string  `json:"location" validate:"required"`
}

func (s RecordSpec) normalized() RecordSpec {
	s.Name = strings.TrimSpace(s.Name)
	s.Manufacturer = strings.TrimSpace(s.Manufacturer)
	s.Serial = strings.TrimSpace(s.Serial)
	s.Location = strings.TrimSpace(s.Location)
	return s
}

// Record is the base equipment record: identity, value, the
// operational/non-operational state machine and the maintenance schedule.
type Record struct {
	env *Env

	name            string
	manufacturer    string
	manufactureYear int
	serial          string

	purchasePrice float64
	currentValue  float64

	operational bool

	maintenanceIntervalDays int
	daysSinceMaintenance    int
	useCount                int

	location string
}

// NewRecord builds a generic equipment record.
func NewRecord(env *Env, spec RecordSpec) (*Record, error) {
	r, err := newRecord(env, KindRecord, spec)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func newRecord(env *Env, kind Kind, spec RecordSpec) (Record, error) {
	if env == nil {
		env = NewEnv()
	}

	spec = spec.normalized()
	if err := env.validateStruct(spec); err != nil {
		return Record{}, err
	}
	if err := env.checkYear(spec.ManufactureYear); err != nil {
		return Record{}, err
	}

	serial := spec.Serial
	if serial == "" {
		serial = env.serials().Next(kind)
	} else if err := env.serials().Claim(serial); err != nil {
		return Record{}, err
	}

	return Record{
		env:                     env,
		name:                    spec.Name,
		manufacturer:            spec.Manufacturer,
		manufactureYear:         spec.ManufactureYear,
		serial:                  serial,
		purchasePrice:           spec.PurchasePrice,
		currentValue:            spec.CurrentValue,
		operational:             true,
		maintenanceIntervalDays: spec.MaintenanceIntervalDays,
		daysSinceMaintenance:    spec.DaysSinceMaintenance,
		location:                spec.Location,
	}, nil
}

func (r *Record) Kind() Kind     { return KindRecord }
func (r *Record) Base() *Record  { return r }
func (r *Record) Name() string   { return r.name }
func (r *Record) Serial() string { return r.serial }

func (r *Record) Manufacturer() string         { return r.manufacturer }
func (r *Record) ManufactureYear() int         { return r.manufactureYear }
func (r *Record) PurchasePrice() float64       { return r.purchasePrice }
func (r *Record) CurrentValue() float64        { return r.currentValue }
func (r *Record) IsOperational() bool          { return r.operational }
func (r *Record) MaintenanceIntervalDays() int { return r.maintenanceIntervalDays }
func (r *Record) DaysSinceMaintenance() int    { return r.daysSinceMaintenance }
func (r *Record) UseCount() int                { return r.useCount }
func (r *Record) Location() string             { return r.location }

// Age is the number of whole years since manufacture.
func (r *Record) Age() int {
	return r.env.CurrentYear() - r.manufactureYear
}

func (r *Record) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name", "must not be empty")
	}
	r.name = name
	return nil
}

func (r *Record) SetManufacturer(manufacturer string) error {
	manufacturer = strings.TrimSpace(manufacturer)
	if manufacturer == "" {
		return invalid("manufacturer", "must not be empty")
	}
	r.manufacturer = manufacturer
	return nil
}

func (r *Record) SetManufactureYear(year int) error {
	if err := r.env.checkYear(year); err != nil {
		return err
	}
	r.manufactureYear = year
	return nil
}

func (r *Record) SetMaintenanceInterval(days int) error {
	if days <= 0 || days > maxMaintenanceInterval {
		return invalid("maintenance_interval_days", "%d is outside (0, %d]", days, maxMaintenanceInterval)
	}
	r.maintenanceIntervalDays = days
	return nil
}

// Use records one day of generic use.
func (r *Record) Use() error {
	if !r.operational {
		return r.breakdown("not operational")
	}
	if r.overdueBy(overdueBreakdownFactor) {
		return r.fail("overdue maintenance")
	}

	r.daysSinceMaintenance++
	r.depreciate(useDepreciationRate)
	r.useCount++

	if r.useCount%ageCheckInterval == 0 && float64(r.Age())*ageWearFactor > ageWearThreshold {
		return r.fail("age-related wear")
	}
	return nil
}

// ScheduleMaintain performs routine maintenance.
func (r *Record) ScheduleMaintain() error {
	if !r.operational {
		return invalid("operational", "%s is not operational, repair it before maintenance", r.serial)
	}
	if r.daysSinceMaintenance < minDaysBetweenMaintenance {
		return invalid("days_since_maintenance", "too soon: last maintenance %d days ago, minimum is %d",
			r.daysSinceMaintenance, minDaysBetweenMaintenance)
	}
	if r.Age() > oldEquipmentYears && r.env.occurs(HazardMissingPart) {
		return &MissingPartsError{Equipment: r.label(), Part: "OEM service kit", WaitDays: maintenancePartWaitDays}
	}

	r.daysSinceMaintenance = 0
	r.appreciate(maintenanceValueGain)
	return nil
}

// Repair returns broken equipment to service. It includes a full service,
// so the maintenance counter restarts.
func (r *Record) Repair() error {
	if r.operational {
		return invalid("operational", "%s is operational, nothing to repair", r.serial)
	}
	if r.currentValue <= 0 || r.purchasePrice/r.currentValue > repairValueRatioLimit {
		return invalid("current_value", "repair exceeds value: purchase/current ratio above %.0f", repairValueRatioLimit)
	}
	if r.Age() > repairMaxAgeYears {
		return &MissingPartsError{Equipment: r.label(), Part: "discontinued replacement parts", WaitDays: repairPartWaitDays}
	}

	r.operational = true
	r.daysSinceMaintenance = 0
	r.appreciate(repairValueGain)
	return nil
}

// Relocate moves the equipment. Moving a machine whose maintenance is far
// overdue can break it on the way; the move itself still happens.
func (r *Record) Relocate(location string) error {
	location = strings.TrimSpace(location)
	if location == "" {
		return invalid("location", "must not be empty")
	}
	if !r.operational {
		return invalid("operational", "%s is not operational and cannot be relocated", r.serial)
	}

	r.location = location
	farOverdue := float64(r.daysSinceMaintenance) > relocationOverdueFactor*float64(r.maintenanceIntervalDays)
	if farOverdue && r.env.occurs(HazardRelocationBreakdown) {
		return r.fail("breakdown during relocation")
	}
	return nil
}

// Depreciation is the straight-line value lost since manufacture.
func (r *Record) Depreciation() float64 {
	return r.purchasePrice * annualDepreciationRate * float64(r.Age())
}

// ResidualValue is the declining-balance value, halved for broken equipment.
func (r *Record) ResidualValue() (float64, error) {
	age := r.Age()
	if age < 0 {
		return 0, invalid("manufacture_year", "%d lies in the future", r.manufactureYear)
	}

	value := r.purchasePrice * math.Pow(1-residualDecayRate, float64(age))
	if !r.operational {
		value /= 2
	}
	return value, nil
}

func (r *Record) NeedsMaintenance() bool {
	return r.daysSinceMaintenance >= r.maintenanceIntervalDays
}

// UnderWarranty reports whether the equipment is at most three years old in the given year.
func (r *Record) UnderWarranty(year int) bool {
	age := year - r.manufactureYear
	return age >= 0 && age <= warrantyYears
}

// MaintenanceCost estimates the next service bill.
func (r *Record) MaintenanceCost() float64 {
	cost := baseMaintenanceCost + float64(r.Age())*maintenanceCostPerYear
	if overdue := r.daysSinceMaintenance - r.maintenanceIntervalDays; overdue > 0 {
		cost += float64(overdue) * overduePenaltyPerDay
	}
	return cost
}

func (r *Record) overdueBy(factor float64) bool {
	return float64(r.daysSinceMaintenance) >= factor*float64(r.maintenanceIntervalDays)
}

func (r *Record) depreciate(rate float64) {
	r.currentValue = math.Max(0, r.currentValue*(1-rate))
}

func (r *Record) appreciate(rate float64) {
	r.currentValue = math.Min(r.purchasePrice, r.currentValue*(1+rate))
}

// fail moves the record to the non-operational state and reports why.
func (r *Record) fail(kind string) error {
	r.operational = false
	return r.breakdown(kind)
}

func (r *Record) breakdown(kind string) *BreakdownError {
	return &BreakdownError{Equipment: r.label(), FailureKind: kind, LastMaintenance: r.lastMaintenanceLabel()}
}

func (r *Record) label() string {
	return fmt.Sprintf("%s (%s)", r.name, r.serial)
}

func (r *Record) lastMaintenanceLabel() string {
	switch r.daysSinceMaintenance {
	case 0:
		return "today"
	case 1:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", r.daysSinceMaintenance)
	}
}
