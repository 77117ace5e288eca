package equipment

import (
	"time"
)

var simToday = time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)

func testEnv() *Env {
	return &Env{
		MinYear: 1950,
		Now:     func() time.Time { return simToday },
		Serials: NewSequenceSerials(),
		Odds:    DeterministicOdds(),
	}
}

func quietEnv() *Env {
	env := testEnv()
	env.Odds = NoHazards()
	return env
}

func recordSpec() RecordSpec {
	return RecordSpec{
		Name:                    "Utility trailer",
		Manufacturer:            "Krone",
		ManufactureYear:         2020,
		PurchasePrice:           10000,
		CurrentValue:            10000,
		MaintenanceIntervalDays: 30,
		Location:                "North barn",
	}
}

func vehicleSpec() VehicleSpec {
	rs := recordSpec()
	rs.Name = "Farm pickup"
	rs.Manufacturer = "Toyota"
	return VehicleSpec{
		RecordSpec:     rs,
		FuelKind:       FuelDiesel,
		FuelCapacity:   100,
		FuelLevel:      100,
		FuelEfficiency: 10,
		Insured:        true,
	}
}

func tractorSpec() TractorSpec {
	vs := vehicleSpec()
	vs.Name = "Fendt 516"
	vs.Manufacturer = "Fendt"
	vs.FuelCapacity = 200
	vs.FuelLevel = 200
	vs.FuelEfficiency = 20
	return TractorSpec{
		VehicleSpec:       vs,
		EnginePower:       120,
		HydraulicPressure: 200,
	}
}

func implementSpec() ImplementSpec {
	rs := recordSpec()
	rs.Name = "Plow-3"
	rs.Manufacturer = "Lemken"
	return ImplementSpec{
		RecordSpec:      rs,
		BladeCount:      6,
		WorkingWidth:    3,
		MaxWorkingDepth: 30,
		WearLevel:       10,
	}
}
