package fleet

import (
	"fmt"

	"github.com/mamadbah2/agrifleet/internal/domain/equipment"
)

// Operation is one named core operation applied to a registered record.
type Operation struct {
	Name string
	run  func(equipment.Equipment) error
}

// capability builds an operation that only applies to equipment implementing T.
func capability[T any](name string, fn func(T) error) Operation {
	return Operation{Name: name, run: func(e equipment.Equipment) error {
		target, ok := e.(T)
		if !ok {
			return fmt.Errorf("%w: %s on %s", ErrUnsupportedOperation, name, e.Kind())
		}
		return fn(target)
	}}
}

type (
	driver interface {
		Drive(distance float64) error
		Refuel(amount float64) error
		RenewInsurance() error
	}
	carrier interface {
		AttachImplement(name string) error
		DetachImplement(name string) error
		PlowField(area float64) error
		TransportLoad(weight, distance float64) error
		SetHydraulicPressure(pressure float64) error
	}
	bladed interface {
		AdjustDepth(depth float64) error
		SharpenBlades() error
		ReplaceBlades() error
	}
)

func Use() Operation {
	return Operation{Name: "use", run: func(e equipment.Equipment) error { return e.Use() }}
}

func Maintain() Operation {
	return Operation{Name: "maintain", run: func(e equipment.Equipment) error { return e.ScheduleMaintain() }}
}

func Repair() Operation {
	return Operation{Name: "repair", run: func(e equipment.Equipment) error { return e.Repair() }}
}

func Relocate(location string) Operation {
	return Operation{Name: "relocate", run: func(e equipment.Equipment) error { return e.Relocate(location) }}
}

func Drive(distance float64) Operation {
	return capability("drive", func(v driver) error { return v.Drive(distance) })
}

func Refuel(amount float64) Operation {
	return capability("refuel", func(v driver) error { return v.Refuel(amount) })
}

func RenewInsurance() Operation {
	return capability("insure", func(v driver) error { return v.RenewInsurance() })
}

func Attach(implement string) Operation {
	return capability("attach", func(t carrier) error { return t.AttachImplement(implement) })
}

func Detach(implement string) Operation {
	return capability("detach", func(t carrier) error { return t.DetachImplement(implement) })
}

func Plow(area float64) Operation {
	return capability("plow", func(t carrier) error { return t.PlowField(area) })
}

func Transport(weight, distance float64) Operation {
	return capability("transport", func(t carrier) error { return t.TransportLoad(weight, distance) })
}

func SetPressure(pressure float64) Operation {
	return capability("pressure", func(t carrier) error { return t.SetHydraulicPressure(pressure) })
}

func AdjustDepth(depth float64) Operation {
	return capability("depth", func(i bladed) error { return i.AdjustDepth(depth) })
}

func Sharpen() Operation {
	return capability("sharpen", func(i bladed) error { return i.SharpenBlades() })
}

func ReplaceBlades() Operation {
	return capability("replace", func(i bladed) error { return i.ReplaceBlades() })
}
