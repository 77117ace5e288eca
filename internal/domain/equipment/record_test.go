package equipment

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord_RejectsInvalidSpecs(t *testing.T) {
	cases := map[string]func(*RecordSpec){
		"empty name":            func(s *RecordSpec) { s.Name = "   " },
		"empty manufacturer":    func(s *RecordSpec) { s.Manufacturer = "" },
		"year before window":    func(s *RecordSpec) { s.ManufactureYear = 1949 },
		"year in the future":    func(s *RecordSpec) { s.ManufactureYear = 2026 },
		"zero purchase price":   func(s *RecordSpec) { s.PurchasePrice = 0 },
		"value above price":     func(s *RecordSpec) { s.CurrentValue = 10001 },
		"negative value":        func(s *RecordSpec) { s.CurrentValue = -1 },
		"zero interval":         func(s *RecordSpec) { s.MaintenanceIntervalDays = 0 },
		"negative days":         func(s *RecordSpec) { s.DaysSinceMaintenance = -3 },
		"empty location":        func(s *RecordSpec) { s.Location = "" },
		"interval above a year": func(s *RecordSpec) { s.MaintenanceIntervalDays = 400 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			spec := recordSpec()
			mutate(&spec)

			rec, err := NewRecord(testEnv(), spec)
			require.Error(t, err)
			assert.Nil(t, rec)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestNewRecord_IssuesUniqueSerials(t *testing.T) {
	env := testEnv()

	first, err := NewRecord(env, recordSpec())
	require.NoError(t, err)
	second, err := NewRecord(env, recordSpec())
	require.NoError(t, err)

	assert.Equal(t, "EQ-000001", first.Serial())
	assert.Equal(t, "EQ-000002", second.Serial())
	assert.True(t, first.IsOperational())

	spec := recordSpec()
	spec.Serial = "EQ-000002"
	_, err = NewRecord(env, spec)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecord_UseCountsDaysAndDepreciates(t *testing.T) {
	rec, err := NewRecord(testEnv(), recordSpec())
	require.NoError(t, err)

	require.NoError(t, rec.Use())

	assert.Equal(t, 1, rec.DaysSinceMaintenance())
	assert.Equal(t, 1, rec.UseCount())
	assert.InDelta(t, 9990.0, rec.CurrentValue(), 1e-9)
}

func TestRecord_UseOverdueMaintenanceBreaksDown(t *testing.T) {
	spec := recordSpec()
	spec.DaysSinceMaintenance = 61
	rec, err := NewRecord(testEnv(), spec)
	require.NoError(t, err)

	err = rec.Use()

	var breakdown *BreakdownError
	require.True(t, errors.As(err, &breakdown))
	assert.Equal(t, "overdue maintenance", breakdown.FailureKind)
	assert.Equal(t, "61 days ago", breakdown.LastMaintenance)
	assert.False(t, rec.IsOperational())
	assert.Equal(t, 61, rec.DaysSinceMaintenance())

	err = rec.Use()
	require.True(t, errors.As(err, &breakdown))
	assert.Equal(t, "not operational", breakdown.FailureKind)
}

func TestRecord_AgeCheckOnEveryHundredthUse(t *testing.T) {
	spec := recordSpec()
	spec.ManufactureYear = 2005
	spec.MaintenanceIntervalDays = 365
	old, err := NewRecord(testEnv(), spec)
	require.NoError(t, err)

	for i := 1; i < 100; i++ {
		require.NoError(t, old.Use(), "use %d", i)
	}
	err = old.Use()
	assert.ErrorIs(t, err, ErrBreakdown)
	assert.Contains(t, err.Error(), "age-related wear")
	assert.False(t, old.IsOperational())

	spec.ManufactureYear = 2020
	young, err := NewRecord(testEnv(), spec)
	require.NoError(t, err)
	for i := 1; i <= 100; i++ {
		require.NoError(t, young.Use(), "use %d", i)
	}
	assert.True(t, young.IsOperational())
}

func TestRecord_ScheduleMaintainTwiceIsTooSoon(t *testing.T) {
	spec := recordSpec()
	spec.CurrentValue = 9000
	spec.DaysSinceMaintenance = 10
	rec, err := NewRecord(testEnv(), spec)
	require.NoError(t, err)

	require.NoError(t, rec.ScheduleMaintain())
	assert.Equal(t, 0, rec.DaysSinceMaintenance())
	assert.InDelta(t, 9090.0, rec.CurrentValue(), 1e-9)

	err = rec.ScheduleMaintain()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "too soon")
	assert.Equal(t, 0, rec.DaysSinceMaintenance())
	assert.InDelta(t, 9090.0, rec.CurrentValue(), 1e-9)
}

func TestRecord_ScheduleMaintainCapsValueAtPurchasePrice(t *testing.T) {
	spec := recordSpec()
	spec.DaysSinceMaintenance = 8
	rec, err := NewRecord(testEnv(), spec)
	require.NoError(t, err)

	require.NoError(t, rec.ScheduleMaintain())
	assert.Equal(t, 10000.0, rec.CurrentValue())
}

func TestRecord_ScheduleMaintainOldEquipmentWaitsForParts(t *testing.T) {
	spec := recordSpec()
	spec.ManufactureYear = 2010
	spec.DaysSinceMaintenance = 10

	rec, err := NewRecord(testEnv(), spec)
	require.NoError(t, err)

	err = rec.ScheduleMaintain()
	var missing *MissingPartsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, 14, missing.WaitDays)
	assert.Equal(t, 10, rec.DaysSinceMaintenance())
	assert.True(t, rec.IsOperational())

	spec.Serial = ""
	lucky, err := NewRecord(quietEnv(), spec)
	require.NoError(t, err)
	assert.NoError(t, lucky.ScheduleMaintain())
}

func TestRecord_ScheduleMaintainRequiresOperational(t *testing.T) {
	spec := recordSpec()
	spec.DaysSinceMaintenance = 60
	rec, err := NewRecord(testEnv(), spec)
	require.NoError(t, err)
	require.Error(t, rec.Use())

	assert.ErrorIs(t, rec.ScheduleMaintain(), ErrValidation)
}

func TestRecord_Repair(t *testing.T) {
	t.Run("operational equipment", func(t *testing.T) {
		rec, err := NewRecord(testEnv(), recordSpec())
		require.NoError(t, err)
		assert.ErrorIs(t, rec.Repair(), ErrValidation)
	})

	t.Run("repair exceeds value", func(t *testing.T) {
		spec := recordSpec()
		spec.CurrentValue = 1000
		spec.DaysSinceMaintenance = 61
		rec, err := NewRecord(testEnv(), spec)
		require.NoError(t, err)
		require.ErrorIs(t, rec.Use(), ErrBreakdown)

		err = rec.Repair()
		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "repair exceeds value")
		assert.False(t, rec.IsOperational())
		assert.Equal(t, 1000.0, rec.CurrentValue())
	})

	t.Run("restores service", func(t *testing.T) {
		spec := recordSpec()
		spec.CurrentValue = 5000
		spec.DaysSinceMaintenance = 61
		rec, err := NewRecord(testEnv(), spec)
		require.NoError(t, err)
		require.ErrorIs(t, rec.Use(), ErrBreakdown)

		require.NoError(t, rec.Repair())
		assert.True(t, rec.IsOperational())
		assert.Equal(t, 0, rec.DaysSinceMaintenance())
		assert.InDelta(t, 5250.0, rec.CurrentValue(), 1e-9)
	})

	t.Run("parts discontinued", func(t *testing.T) {
		spec := recordSpec()
		spec.ManufactureYear = 2005
		spec.DaysSinceMaintenance = 61
		rec, err := NewRecord(testEnv(), spec)
		require.NoError(t, err)
		require.ErrorIs(t, rec.Use(), ErrBreakdown)

		assert.ErrorIs(t, rec.Repair(), ErrMissingParts)
		assert.False(t, rec.IsOperational())
	})
}

func TestRecord_Relocate(t *testing.T) {
	rec, err := NewRecord(testEnv(), recordSpec())
	require.NoError(t, err)

	assert.ErrorIs(t, rec.Relocate("  "), ErrValidation)
	require.NoError(t, rec.Relocate("South field"))
	assert.Equal(t, "South field", rec.Location())

	spec := recordSpec()
	spec.DaysSinceMaintenance = 46
	overdue, err := NewRecord(testEnv(), spec)
	require.NoError(t, err)

	err = overdue.Relocate("Workshop")
	assert.ErrorIs(t, err, ErrBreakdown)
	assert.Equal(t, "Workshop", overdue.Location())
	assert.False(t, overdue.IsOperational())

	assert.ErrorIs(t, overdue.Relocate("North barn"), ErrValidation)
	assert.Equal(t, "Workshop", overdue.Location())
}

func TestRecord_Queries(t *testing.T) {
	spec := recordSpec()
	spec.DaysSinceMaintenance = 40
	rec, err := NewRecord(testEnv(), spec)
	require.NoError(t, err)

	assert.Equal(t, 5, rec.Age())
	assert.InDelta(t, 5000.0, rec.Depreciation(), 1e-9)
	assert.True(t, rec.NeedsMaintenance())
	assert.True(t, rec.UnderWarranty(2023))
	assert.False(t, rec.UnderWarranty(2024))
	assert.False(t, rec.UnderWarranty(2019))
	assert.InDelta(t, 200.0, rec.MaintenanceCost(), 1e-9)

	residual, err := rec.ResidualValue()
	require.NoError(t, err)
	assert.InDelta(t, 4437.053125, residual, 1e-6)

	rec.operational = false
	halved, err := rec.ResidualValue()
	require.NoError(t, err)
	assert.InDelta(t, residual/2, halved, 1e-9)
}

func TestRecord_ResidualValueFailsForFutureYear(t *testing.T) {
	env := testEnv()
	rec, err := NewRecord(env, recordSpec())
	require.NoError(t, err)

	env.Now = func() time.Time { return simToday.AddDate(-6, 0, 0) }
	_, err = rec.ResidualValue()
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecord_Setters(t *testing.T) {
	rec, err := NewRecord(testEnv(), recordSpec())
	require.NoError(t, err)

	assert.ErrorIs(t, rec.SetName(""), ErrValidation)
	assert.ErrorIs(t, rec.SetManufacturer(" "), ErrValidation)
	assert.ErrorIs(t, rec.SetManufactureYear(2030), ErrValidation)
	assert.ErrorIs(t, rec.SetMaintenanceInterval(0), ErrValidation)

	require.NoError(t, rec.SetName("Bale trailer"))
	require.NoError(t, rec.SetManufactureYear(2018))
	require.NoError(t, rec.SetMaintenanceInterval(60))
	assert.Equal(t, "Bale trailer", rec.Name())
	assert.Equal(t, 2018, rec.ManufactureYear())
	assert.Equal(t, 60, rec.MaintenanceIntervalDays())
}

func TestRecord_ValueAndDaysNeverNegative(t *testing.T) {
	spec := recordSpec()
	spec.CurrentValue = 2500
	rec, err := NewRecord(testEnv(), spec)
	require.NoError(t, err)

	for i := 0; i < 2000; i++ {
		_ = rec.Use()
		if i%25 == 0 {
			_ = rec.ScheduleMaintain()
		}
		if !rec.IsOperational() {
			_ = rec.Repair()
		}
		_ = rec.Relocate("Yard")

		require.GreaterOrEqual(t, rec.CurrentValue(), 0.0)
		require.GreaterOrEqual(t, rec.DaysSinceMaintenance(), 0)
	}
}
