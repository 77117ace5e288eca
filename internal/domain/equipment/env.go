package equipment

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DefaultMinYear is the oldest manufacture year accepted when Env.MinYear is unset.
const DefaultMinYear = 1950

// Kind identifies the concrete equipment variant.
type Kind string

const (
	KindRecord    Kind = "equipment"
	KindVehicle   Kind = "vehicle"
	KindTractor   Kind = "tractor"
	KindImplement Kind = "implement"
)

func (k Kind) serialPrefix() string {
	switch k {
	case KindVehicle:
		return "VH"
	case KindTractor:
		return "TR"
	case KindImplement:
		return "IM"
	default:
		return "EQ"
	}
}

// Hazard names a condition whose occurrence is decided by an Odds table.
type Hazard string

const (
	HazardMissingPart         Hazard = "missing_part"
	HazardHighMileage         Hazard = "high_mileage"
	HazardHydraulicDamage     Hazard = "hydraulic_damage"
	HazardRelocationBreakdown Hazard = "relocation_breakdown"
)

var hazardThresholds = map[Hazard]float64{
	HazardMissingPart:         0.15,
	HazardHighMileage:         0.10,
	HazardHydraulicDamage:     0.25,
	HazardRelocationBreakdown: 0.30,
}

// Odds returns the chance assigned to a hazard. A hazard occurs when its
// chance is strictly above the hazard threshold.
type Odds interface {
	Chance(h Hazard) float64
}

// FixedOdds is a static hazard table. Hazards absent from the map never occur.
type FixedOdds map[Hazard]float64

func (o FixedOdds) Chance(h Hazard) float64 {
	return o[h]
}

// DeterministicOdds mirrors the fixed constants every chance check was
// calibrated with; all four hazards occur whenever their condition holds.
func DeterministicOdds() FixedOdds {
	return FixedOdds{
		HazardMissingPart:         0.20,
		HazardHighMileage:         0.15,
		HazardHydraulicDamage:     0.30,
		HazardRelocationBreakdown: 0.40,
	}
}

// NoHazards disables every chance check.
func NoHazards() FixedOdds {
	return FixedOdds{}
}

// SerialRegistry issues and reserves serial identifiers. It is shared by
// every record built from the same Env.
type SerialRegistry struct {
	mu      sync.Mutex
	next    map[Kind]int
	claimed map[string]struct{}
	useUUID bool
}

// NewSequenceSerials issues serials such as TR-000001, counted per kind.
func NewSequenceSerials() *SerialRegistry {
	return &SerialRegistry{
		next:    make(map[Kind]int),
		claimed: make(map[string]struct{}),
	}
}

// NewUUIDSerials issues serials such as TR-6f1c... backed by random UUIDs.
func NewUUIDSerials() *SerialRegistry {
	r := NewSequenceSerials()
	r.useUUID = true
	return r
}

// Next issues a fresh serial that has not been claimed yet.
func (r *SerialRegistry) Next(kind Kind) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		var serial string
		if r.useUUID {
			serial = fmt.Sprintf("%s-%s", kind.serialPrefix(), uuid.NewString())
		} else {
			r.next[kind]++
			serial = fmt.Sprintf("%s-%06d", kind.serialPrefix(), r.next[kind])
		}
		if _, taken := r.claimed[serial]; taken {
			continue
		}
		r.claimed[serial] = struct{}{}
		return serial
	}
}

// Claim reserves a caller supplied serial.
func (r *SerialRegistry) Claim(serial string) error {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return invalid("serial", "must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.claimed[serial]; taken {
		return invalid("serial", "%s is already registered", serial)
	}
	r.claimed[serial] = struct{}{}
	return nil
}

// Release frees a serial so it can be claimed again.
func (r *SerialRegistry) Release(serial string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.claimed, serial)
}

// Env is the construction context shared by all records of one simulation.
type Env struct {
	MinYear int
	Now     func() time.Time
	Serials *SerialRegistry
	Odds    Odds

	validate *validator.Validate
}

// NewEnv returns an Env with sequential serials, the wall clock and the
// deterministic hazard table.
func NewEnv() *Env {
	return &Env{
		MinYear: DefaultMinYear,
		Now:     time.Now,
		Serials: NewSequenceSerials(),
		Odds:    DeterministicOdds(),
	}
}

// CurrentYear is the simulation's notion of "this year".
func (e *Env) CurrentYear() int {
	if e.Now == nil {
		return time.Now().Year()
	}
	return e.Now().Year()
}

func (e *Env) minYear() int {
	if e.MinYear <= 0 {
		return DefaultMinYear
	}
	return e.MinYear
}

func (e *Env) occurs(h Hazard) bool {
	if e.Odds == nil {
		return false
	}
	return e.Odds.Chance(h) > hazardThresholds[h]
}

func (e *Env) serials() *SerialRegistry {
	if e.Serials == nil {
		e.Serials = NewSequenceSerials()
	}
	return e.Serials
}

func (e *Env) checkYear(year int) error {
	if year < e.minYear() || year > e.CurrentYear() {
		return invalid("manufacture_year", "%d is outside [%d, %d]", year, e.minYear(), e.CurrentYear())
	}
	return nil
}

// validateStruct runs the validator tags of a spec struct and converts the
// first violation into a ValidationError.
func (e *Env) validateStruct(spec any) error {
	if e.validate == nil {
		e.validate = validator.New(validator.WithRequiredStructEnabled())
	}

	err := e.validate.Struct(spec)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return invalid(fe.Field(), "failed %q constraint (value %v)", describeTag(fe), fe.Value())
	}
	return invalid("", "%v", err)
}

func describeTag(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}
