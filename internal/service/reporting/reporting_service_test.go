package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/agrifleet/internal/domain/equipment"
	"github.com/mamadbah2/agrifleet/internal/domain/models"
)

var today = time.Date(2025, time.June, 5, 18, 0, 0, 0, time.UTC)

type fleetStub []equipment.Equipment

func (f fleetStub) Each(fn func(equipment.Equipment)) {
	for _, e := range f {
		fn(e)
	}
}

type ledgerStub struct {
	entries    []models.LedgerEntry
	err        error
	start, end time.Time
}

func (l *ledgerStub) Entries(_ context.Context, start, end time.Time) ([]models.LedgerEntry, error) {
	l.start, l.end = start, end
	return l.entries, l.err
}

func testEnv() *equipment.Env {
	return &equipment.Env{
		MinYear: 1950,
		Now:     func() time.Time { return today },
		Serials: equipment.NewSequenceSerials(),
		Odds:    equipment.NoHazards(),
	}
}

func recordSpec(name string) equipment.RecordSpec {
	return equipment.RecordSpec{
		Name:                    name,
		Manufacturer:            "Krone",
		ManufactureYear:         2020,
		PurchasePrice:           10000,
		CurrentValue:            10000,
		MaintenanceIntervalDays: 30,
		Location:                "North barn",
	}
}

func newTractor(t *testing.T, env *equipment.Env) *equipment.Tractor {
	t.Helper()
	rs := recordSpec("Fendt 516")
	rs.Manufacturer = "Fendt"
	tr, err := equipment.NewTractor(env, equipment.TractorSpec{
		VehicleSpec: equipment.VehicleSpec{
			RecordSpec:     rs,
			FuelKind:       equipment.FuelDiesel,
			FuelCapacity:   200,
			FuelLevel:      200,
			FuelEfficiency: 20,
			Insured:        true,
		},
		EnginePower:       120,
		HydraulicPressure: 200,
	})
	require.NoError(t, err)
	return tr
}

func newImplement(t *testing.T, env *equipment.Env) *equipment.Implement {
	t.Helper()
	rs := recordSpec("Plow-3")
	rs.Manufacturer = "Lemken"
	im, err := equipment.NewImplement(env, equipment.ImplementSpec{
		RecordSpec:      rs,
		BladeCount:      6,
		WorkingWidth:    3,
		MaxWorkingDepth: 30,
		WearLevel:       10,
	})
	require.NoError(t, err)
	return im
}

func TestEquipmentSummary_Record(t *testing.T) {
	r, err := equipment.NewRecord(testEnv(), recordSpec("Utility trailer"))
	require.NoError(t, err)

	summary := NewService(nil, fleetStub{}, nil).EquipmentSummary(r)

	assert.Equal(t, "Utility trailer (EQ-000001), equipment by Krone (2020), at North barn\n"+
		"State: operational, value 10000.00 of 10000.00\n"+
		"Depreciation 5000.00 | residual 4437.05 | next service 150.00 | service due: no | warranty: no", summary)
}

func TestEquipmentSummary_Tractor(t *testing.T) {
	summary := NewService(nil, fleetStub{}, nil).EquipmentSummary(newTractor(t, testEnv()))

	assert.Contains(t, summary, "Fendt 516 (TR-000001), tractor by Fendt (2020), at North barn")
	assert.Contains(t, summary, "Fuel 200.0/200.0 diesel | range 1000.0 | distance 0.0 | oil change: no | insured: yes")
	assert.Contains(t, summary, "Engine 120 hp, 0.0 h | hydraulics 200.0 nominal | front loader: no | implements: none")
}

func TestEquipmentSummary_Implement(t *testing.T) {
	summary := NewService(nil, fleetStub{}, nil).EquipmentSummary(newImplement(t, testEnv()))

	assert.Contains(t, summary, "Plow-3 (IM-000001), implement by Lemken (2020), at North barn")
	assert.Contains(t, summary, "Blades 6 x 3.0 m")
	assert.Contains(t, summary, "wear 10 | adjusted: yes")
	assert.Contains(t, summary, "Area/h at 8 km/h 1.92")
}

func TestEquipmentSummary_FailedQueriesShowNA(t *testing.T) {
	env := testEnv()
	r, err := equipment.NewRecord(env, recordSpec("Utility trailer"))
	require.NoError(t, err)

	env.Now = func() time.Time { return time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC) }

	summary := NewService(nil, fleetStub{}, nil).EquipmentSummary(r)
	assert.Contains(t, summary, "residual n/a")
	assert.Contains(t, summary, "warranty: no")
}

func TestFleetReport(t *testing.T) {
	env := testEnv()
	svc := NewService(nil, fleetStub{newImplement(t, env), newTractor(t, env)}, nil)

	report := svc.FleetReport()
	assert.Contains(t, report, "Fleet report: 2 records\n\nPlow-3 (IM-000001)")
	assert.Contains(t, report, "\n\nFendt 516 (TR-000001)")

	assert.Equal(t, "No equipment registered yet.", NewService(nil, fleetStub{}, nil).FleetReport())
}

func TestLedgerSummary(t *testing.T) {
	start := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	ledger := &ledgerStub{entries: []models.LedgerEntry{
		{Serial: "TR-000001", Operation: "plow", Outcome: models.OutcomeOK},
		{Serial: "TR-000001", Operation: "plow", Outcome: models.OutcomeBreakdown},
		{Serial: "IM-000001", Operation: "sharpen", Outcome: models.OutcomeMissingParts},
		{Serial: "IM-000001", Operation: "depth", Outcome: models.OutcomeValidation},
		{Serial: "TR-000001", Operation: "use", Outcome: models.OutcomeBreakdown},
	}}
	svc := NewService(ledger, fleetStub{}, nil)

	summary, err := svc.LedgerSummary(context.Background(), start, today)
	require.NoError(t, err)
	assert.Equal(t, "Ledger (2025-06-02 to 2025-06-05): 5 operations, 2 breakdowns, 1 waiting for parts, 1 rejected. "+
		"Needs attention: IM-000001, TR-000001.", summary)
	assert.Equal(t, start, ledger.start)
	assert.Equal(t, today, ledger.end)

	ledger.entries = nil
	summary, err = svc.LedgerSummary(context.Background(), start, today)
	require.NoError(t, err)
	assert.Equal(t, "Ledger (2025-06-02 to 2025-06-05): no operations logged.", summary)
}

func TestLedgerSummary_Errors(t *testing.T) {
	_, err := NewService(nil, fleetStub{}, nil).LedgerSummary(context.Background(), today, today)
	require.Error(t, err)

	boom := errors.New("sheets unavailable")
	_, err = NewService(&ledgerStub{err: boom}, fleetStub{}, nil).LedgerSummary(context.Background(), today, today)
	require.ErrorIs(t, err, boom)
}

func TestGenerateWeeklyReport(t *testing.T) {
	env := testEnv()
	broken := recordSpec("Old trailer")
	broken.DaysSinceMaintenance = 60
	r, err := equipment.NewRecord(env, broken)
	require.NoError(t, err)
	require.ErrorIs(t, r.Use(), equipment.ErrBreakdown)

	ledger := &ledgerStub{entries: []models.LedgerEntry{
		{Serial: r.Serial(), Operation: "use", Outcome: models.OutcomeBreakdown},
		{Serial: "TR-000001", Operation: "register", Outcome: models.OutcomeOK},
	}}
	svc := NewService(ledger, fleetStub{r, newTractor(t, env)}, nil)

	report, err := svc.GenerateWeeklyReport(context.Background(), today)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC), report.Start)
	assert.Equal(t, today, report.End)
	assert.Equal(t, 2, report.FleetSize)
	assert.Equal(t, []string{"EQ-000001"}, report.NonOperational)
	assert.Equal(t, []string{"EQ-000001"}, report.DueMaintenance)
	assert.InDelta(t, 20000, report.FleetValue, 0.001)
	assert.Equal(t, 2, report.Operations)
	assert.Equal(t, map[models.Outcome]int{models.OutcomeBreakdown: 1, models.OutcomeOK: 1}, report.Outcomes)
	assert.Equal(t, "ok", report.LedgerStatus)
	assert.Contains(t, report.Text, "Weekly fleet report (2025-06-02 to 2025-06-05)")
	assert.Contains(t, report.Text, "Out of service: EQ-000001")
	assert.Contains(t, report.Text, "Needs attention: EQ-000001.")
}

func TestGenerateWeeklyReport_LedgerUnavailable(t *testing.T) {
	svc := NewService(&ledgerStub{err: errors.New("quota exceeded")}, fleetStub{}, nil)

	report, err := svc.GenerateWeeklyReport(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, "n/a", report.LedgerStatus)
	assert.Zero(t, report.Operations)
	assert.Contains(t, report.Text, "Ledger: n/a")
	assert.Contains(t, report.Text, "Out of service: none")
}

func TestMondayStart(t *testing.T) {
	sunday := time.Date(2025, time.June, 8, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC), mondayStart(sunday))

	monday := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC), mondayStart(monday))
}
