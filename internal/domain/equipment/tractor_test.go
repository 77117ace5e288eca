package equipment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTractor_FrontLoaderNeedsPower(t *testing.T) {
	spec := tractorSpec()
	spec.EnginePower = 40
	spec.FrontLoader = true

	tr, err := NewTractor(testEnv(), spec)
	require.Error(t, err)
	assert.Nil(t, tr)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "front_loader", verr.Field)
	assert.Contains(t, verr.Message, "minimum is 50")

	spec.FrontLoader = false
	weak, err := NewTractor(testEnv(), spec)
	require.NoError(t, err)
	assert.ErrorIs(t, weak.SetFrontLoader(true), ErrValidation)
	assert.False(t, weak.HasFrontLoader())
	assert.Equal(t, "TR-000001", weak.Serial())
}

func TestNewTractor_InitialImplements(t *testing.T) {
	spec := tractorSpec()
	spec.Implements = []string{"Plow-3", "Hydraulic Seeder"}

	tr, err := NewTractor(testEnv(), spec)
	require.NoError(t, err)
	assert.Equal(t, []string{"Plow-3", "Hydraulic Seeder"}, tr.Implements())

	spec.Implements = []string{"Plow-3", "Plow-3"}
	_, err = NewTractor(testEnv(), spec)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTractor_AttachImplement(t *testing.T) {
	tr, err := NewTractor(testEnv(), tractorSpec())
	require.NoError(t, err)

	require.NoError(t, tr.AttachImplement("Plow-3"))
	assert.ErrorIs(t, tr.AttachImplement("Plow-3"), ErrValidation)
	assert.ErrorIs(t, tr.AttachImplement(""), ErrValidation)
	assert.ErrorIs(t, tr.AttachImplement("Combine header"), ErrValidation)

	spec := tractorSpec()
	spec.EnginePower = 80
	small, err := NewTractor(testEnv(), spec)
	require.NoError(t, err)
	assert.ErrorIs(t, small.AttachImplement("Heavy disc harrow"), ErrValidation)
	require.NoError(t, tr.AttachImplement("Heavy disc harrow"))

	require.NoError(t, tr.SetHydraulicPressure(100))
	assert.ErrorIs(t, tr.AttachImplement("Hydraulic seeder"), ErrValidation)
	require.NoError(t, tr.SetHydraulicPressure(190))
	require.NoError(t, tr.AttachImplement("Hydraulic seeder"))

	require.NoError(t, tr.AttachImplement("Roller"))
	require.NoError(t, tr.AttachImplement("Sprayer"))
	err = tr.AttachImplement("Mower")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "capacity")
	assert.Len(t, tr.Implements(), 5)
}

func TestTractor_DetachImplement(t *testing.T) {
	spec := tractorSpec()
	spec.Implements = []string{"Plow-3", "Roller"}
	tr, err := NewTractor(testEnv(), spec)
	require.NoError(t, err)

	assert.ErrorIs(t, tr.DetachImplement("Mower"), ErrValidation)

	err = tr.DetachImplement("Plow-3")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "release pressure")

	require.NoError(t, tr.SetHydraulicPressure(120))
	require.NoError(t, tr.DetachImplement("Plow-3"))
	assert.Equal(t, []string{"Roller"}, tr.Implements())

	assert.ErrorIs(t, tr.SetHydraulicPressure(301), ErrValidation)
}

func TestTractor_PlowField(t *testing.T) {
	spec := tractorSpec()
	spec.Implements = []string{"Plow-3"}
	tr, err := NewTractor(testEnv(), spec)
	require.NoError(t, err)

	require.NoError(t, tr.PlowField(10))

	assert.InDelta(t, 10*20/120.0, tr.EngineHours(), 1e-9)
	assert.InDelta(t, 160.0, tr.FuelLevel(), 1e-9)
	assert.True(t, tr.IsOperational())
}

func TestTractor_PlowFieldRejections(t *testing.T) {
	noPlow, err := NewTractor(testEnv(), tractorSpec())
	require.NoError(t, err)
	assert.ErrorIs(t, noPlow.PlowField(5), ErrValidation)

	spec := tractorSpec()
	spec.Implements = []string{"Plow-3"}
	tr, err := NewTractor(testEnv(), spec)
	require.NoError(t, err)

	assert.ErrorIs(t, tr.PlowField(0), ErrValidation)
	assert.ErrorIs(t, tr.PlowField(70), ErrValidation)

	require.NoError(t, tr.SetHydraulicPressure(150))
	assert.ErrorIs(t, tr.PlowField(5), ErrValidation)
	require.NoError(t, tr.SetHydraulicPressure(200))

	spec.FuelLevel = 30
	spec.Serial = "TR-LOWFUEL"
	thirsty, err := NewTractor(testEnv(), spec)
	require.NoError(t, err)
	err = thirsty.PlowField(10)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "insufficient fuel")

	assert.Equal(t, 0.0, tr.EngineHours())
	assert.Equal(t, 200.0, tr.FuelLevel())
}

func TestTractor_PlowFieldOverheats(t *testing.T) {
	spec := tractorSpec()
	spec.Implements = []string{"Plow-3"}
	tr, err := NewTractor(testEnv(), spec)
	require.NoError(t, err)

	err = tr.PlowField(30)

	var breakdown *BreakdownError
	require.True(t, errors.As(err, &breakdown))
	assert.Equal(t, "engine overheating", breakdown.FailureKind)
	assert.False(t, tr.IsOperational())
	assert.InDelta(t, 4.0, tr.EngineHours(), 1e-9)
	assert.InDelta(t, 200-4*120*0.2, tr.FuelLevel(), 1e-9)
}

func TestTractor_TransportLoad(t *testing.T) {
	tr, err := NewTractor(testEnv(), tractorSpec())
	require.NoError(t, err)
	assert.InDelta(t, 2400.0, tr.MaxLoad(), 1e-9)

	assert.ErrorIs(t, tr.TransportLoad(3000, 10), ErrValidation)
	assert.ErrorIs(t, tr.TransportLoad(0, 10), ErrValidation)

	require.NoError(t, tr.TransportLoad(1200, 100))
	assert.InDelta(t, 200-20*1.5, tr.FuelLevel(), 1e-9)
	assert.InDelta(t, 100.0, tr.DistanceTraveled(), 1e-9)
}

func TestTractor_HeavyLoadDamagesHydraulics(t *testing.T) {
	tr, err := NewTractor(testEnv(), tractorSpec())
	require.NoError(t, err)

	err = tr.TransportLoad(2000, 50)

	assert.ErrorIs(t, err, ErrBreakdown)
	assert.Contains(t, err.Error(), "hydraulic damage")
	assert.InDelta(t, 160.0, tr.HydraulicPressure(), 1e-9)
	assert.False(t, tr.CheckHydraulicSystem())
	assert.False(t, tr.IsOperational())
	assert.Equal(t, 200.0, tr.FuelLevel())

	calm, err := NewTractor(quietEnv(), tractorSpec())
	require.NoError(t, err)
	require.NoError(t, calm.TransportLoad(2000, 50))
	assert.True(t, calm.CheckHydraulicSystem())
}

func TestTractor_UsesVehicleBehaviour(t *testing.T) {
	tr, err := NewTractor(testEnv(), tractorSpec())
	require.NoError(t, err)

	require.NoError(t, tr.Use())
	assert.InDelta(t, 10.0, tr.DistanceTraveled(), 1e-9)
	assert.Equal(t, KindTractor, tr.Kind())

	var eq Equipment = tr
	assert.Equal(t, tr.Serial(), eq.Base().Serial())
}
