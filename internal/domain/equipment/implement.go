package equipment

import (
	"math"
)

const (
	maxWear              = 100
	adjustWearLimit      = 80
	sharpenPartsLimit    = 90
	sharpenMinWear       = 20
	sharpenWearReduction = 20
	replaceMinWear       = 50
	replaceValueLoss     = 0.10
	breakdownWear        = 95
	fieldPassWear        = 5
	heavyWearThreshold   = 60
	heavyWearExtra       = 2
	adjustedWearLimit    = 70
	bladeWaitDays        = 10
	maxWorkingSpeed      = 25.0
	fieldEfficiency      = 0.8
	tractionPerMeterCm   = 0.6
	baseFuelPerHectare   = 10.0
	fuelPerHardnessPoint = 1.5
	minSoilHardness      = 1.0
	maxSoilHardness      = 10.0
)

// BladeSet is the wear module of a blade-bearing implement. Width is in
// meters, depths in centimeters.
type BladeSet struct {
	count      int
	width      float64
	maxDepth   float64
	depth      float64
	wear       int
	reversible bool
}

func (b BladeSet) Count() int          { return b.count }
func (b BladeSet) Width() float64      { return b.width }
func (b BladeSet) MaxDepth() float64   { return b.maxDepth }
func (b BladeSet) Depth() float64      { return b.depth }
func (b BladeSet) Wear() int           { return b.wear }
func (b BladeSet) Reversible() bool    { return b.reversible }
func (b BladeSet) wearFactor() float64 { return float64(b.wear) / maxWear }

func (b BladeSet) effectiveDepth() float64 {
	if b.depth > 0 {
		return b.depth
	}
	return b.maxDepth
}

// ImplementSpec adds the blade configuration to RecordSpec.
type ImplementSpec struct {
	RecordSpec

	BladeCount      int     `json:"blade_count" validate:"gte=1,lte=24"`
	WorkingWidth    float64 `json:"working_width" validate:"gt=0,lte=15"`
	MaxWorkingDepth float64 `json:"max_working_depth" validate:"gt=0,lte=60"`
	WorkingDepth    float64 `json:"working_depth" validate:"gte=0,ltefield=MaxWorkingDepth"`
	WearLevel       int     `json:"wear_level" validate:"gte=0,lte=100"`
	Reversible      bool    `json:"reversible"`
}

// Implement is a wear-prone implement such as a plow or harrow.
type Implement struct {
	Record

	blades BladeSet
}

// NewImplement builds a wearable implement.
func NewImplement(env *Env, spec ImplementSpec) (*Implement, error) {
	if env == nil {
		env = NewEnv()
	}
	if err := env.validateStruct(spec); err != nil {
		return nil, err
	}

	base, err := newRecord(env, KindImplement, spec.RecordSpec)
	if err != nil {
		return nil, err
	}

	return &Implement{
		Record: base,
		blades: BladeSet{
			count:      spec.BladeCount,
			width:      spec.WorkingWidth,
			maxDepth:   spec.MaxWorkingDepth,
			depth:      spec.WorkingDepth,
			wear:       spec.WearLevel,
			reversible: spec.Reversible,
		},
	}, nil
}

func (i *Implement) Kind() Kind       { return KindImplement }
func (i *Implement) Blades() BladeSet { return i.blades }
func (i *Implement) WearLevel() int   { return i.blades.wear }

// AdjustDepth sets the working depth. Every adjustment wears the blades a little.
func (i *Implement) AdjustDepth(depth float64) error {
	if !i.operational {
		return invalid("operational", "%s is not operational", i.serial)
	}
	if !(depth > 0 && depth <= i.blades.maxDepth) {
		return invalid("working_depth", "%.1f is outside (0, %.1f]", depth, i.blades.maxDepth)
	}
	if i.blades.wear+1 > adjustWearLimit {
		return invalid("wear_level", "too worn to adjust (%d)", i.blades.wear)
	}

	i.blades.depth = depth
	i.blades.wear++
	return nil
}

// SharpenBlades takes 20 points of wear off. Blades past 90 cannot be
// sharpened and need replacement parts.
func (i *Implement) SharpenBlades() error {
	if i.blades.wear > sharpenPartsLimit {
		return &MissingPartsError{Equipment: i.label(), Part: "replacement blades", WaitDays: bladeWaitDays}
	}
	if i.blades.wear <= sharpenMinWear {
		return invalid("wear_level", "no need to sharpen at wear %d", i.blades.wear)
	}

	i.blades.wear = max(0, i.blades.wear-sharpenWearReduction)
	return nil
}

// ReplaceBlades fits a new blade set, writing 10% off the implement's value.
func (i *Implement) ReplaceBlades() error {
	if i.blades.wear <= replaceMinWear {
		return invalid("wear_level", "blades at wear %d do not need replacing yet (above %d required)", i.blades.wear, replaceMinWear)
	}

	i.blades.wear = 0
	i.depreciate(replaceValueLoss)
	return nil
}

// Use is one field pass: 5 points of wear, 7 once the blades are past 60.
func (i *Implement) Use() error {
	if i.operational && i.blades.wear > breakdownWear {
		return i.fail("excessive blade wear")
	}
	if err := i.Record.Use(); err != nil {
		return err
	}

	step := fieldPassWear
	if i.blades.wear > heavyWearThreshold {
		step += heavyWearExtra
	}
	i.blades.wear = min(maxWear, i.blades.wear+step)

	if i.blades.wear > breakdownWear {
		return i.fail("excessive blade wear")
	}
	return nil
}

// Repair refuses to return an implement to service on worn-out blades.
func (i *Implement) Repair() error {
	if i.blades.wear > breakdownWear {
		return invalid("wear_level", "replace blades before repair (wear %d)", i.blades.wear)
	}
	return i.Record.Repair()
}

// AreaPerHour is the hectares worked per hour at the given speed in km/h.
func (i *Implement) AreaPerHour(speed float64) (float64, error) {
	if !(speed > 0 && speed <= maxWorkingSpeed) {
		return 0, invalid("speed", "%.1f is outside (0, %.0f]", speed, maxWorkingSpeed)
	}
	return i.blades.width * speed / 10 * fieldEfficiency, nil
}

// RequiredTraction is the pulling force the implement needs at its working
// depth, in kN. Dull blades drag more.
func (i *Implement) RequiredTraction() float64 {
	return i.blades.width * i.blades.effectiveDepth() * tractionPerMeterCm * (1 + i.blades.wearFactor()/2)
}

// FuelConsumption estimates the litres a tractor burns pulling the implement
// over area hectares of soil with hardness in [1, 10].
func (i *Implement) FuelConsumption(area, soilHardness float64) (float64, error) {
	if !(area > 0) {
		return 0, invalid("area", "must be positive")
	}
	if !(soilHardness >= minSoilHardness && soilHardness <= maxSoilHardness) {
		return 0, invalid("soil_hardness", "%.1f is outside [%.0f, %.0f]", soilHardness, minSoilHardness, maxSoilHardness)
	}

	perHectare := baseFuelPerHectare + soilHardness*fuelPerHardnessPoint
	depthFactor := i.blades.effectiveDepth() / i.blades.maxDepth
	return math.Round(area*perHectare*depthFactor*(1+i.blades.wearFactor())*100) / 100, nil
}

func (i *Implement) IsProperlyAdjusted() bool {
	return i.operational && i.blades.wear < adjustedWearLimit
}
