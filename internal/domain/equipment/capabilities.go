// Package equipment models farm machinery as bookkeeping records: a shared
// base record with an operational/non-operational state machine, and
// vehicles, tractors and implements that compose fuel, hydraulic, implement
// rack and blade wear modules on top of it.
//
// Every operation runs synchronously and either succeeds or returns one of
// *ValidationError, *BreakdownError or *MissingPartsError. A BreakdownError
// is returned after the record has already moved to non-operational.
package equipment

// Usable is equipment that can be put to work.
type Usable interface {
	Use() error
}

// Maintainable is equipment on a maintenance schedule.
type Maintainable interface {
	ScheduleMaintain() error
	NeedsMaintenance() bool
	MaintenanceCost() float64
}

// Repairable is equipment that can be brought back into service.
type Repairable interface {
	Repair() error
}

// Relocatable is equipment that can be moved between locations.
type Relocatable interface {
	Relocate(location string) error
}

// Equipment is the full capability set shared by every variant.
type Equipment interface {
	Usable
	Maintainable
	Repairable
	Relocatable

	Kind() Kind
	Base() *Record
	Snapshot() Snapshot
}

var (
	_ Equipment = (*Record)(nil)
	_ Equipment = (*Vehicle)(nil)
	_ Equipment = (*Tractor)(nil)
	_ Equipment = (*Implement)(nil)
)
