package reporting

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/agrifleet/internal/domain/equipment"
	"github.com/mamadbah2/agrifleet/internal/domain/models"
)

const (
	dateLayout = "2006-01-02"
	// unavailable replaces any figure whose query failed.
	unavailable = "n/a"

	summarySpeed    = 8.0
	summaryHardness = 5.0
)

// LedgerReader reads operations from the ledger.
type LedgerReader interface {
	Entries(ctx context.Context, start, end time.Time) ([]models.LedgerEntry, error)
}

// FleetReader walks the registered equipment.
type FleetReader interface {
	Each(fn func(equipment.Equipment))
}

// Service renders human readable fleet summaries for chat and the weekly digest.
type Service struct {
	ledger LedgerReader
	fleet  FleetReader
	logger *zap.Logger
}

// NewService wires a new reporting service instance. ledger may be nil.
func NewService(ledger LedgerReader, fleet FleetReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: ledger, fleet: fleet, logger: logger}
}

// EquipmentSummary describes one record. Figures whose query fails are
// shown as n/a instead of aborting the summary.
func (s *Service) EquipmentSummary(e equipment.Equipment) string {
	r := e.Base()
	year := r.ManufactureYear() + r.Age()

	lines := []string{
		fmt.Sprintf("%s (%s), %s by %s (%d), at %s", r.Name(), r.Serial(), e.Kind(), r.Manufacturer(), r.ManufactureYear(), r.Location()),
		fmt.Sprintf("State: %s, value %.2f of %.2f", stateLabel(r.IsOperational()), r.CurrentValue(), r.PurchasePrice()),
		fmt.Sprintf("Depreciation %.2f | residual %s | next service %.2f | service due: %s | warranty: %s",
			r.Depreciation(), figure(r.ResidualValue()), e.MaintenanceCost(), yesNo(e.NeedsMaintenance()), yesNo(r.UnderWarranty(year))),
	}

	switch v := e.(type) {
	case *equipment.Tractor:
		lines = append(lines, vehicleLine(&v.Vehicle),
			fmt.Sprintf("Engine %.0f hp, %.1f h | hydraulics %.1f %s | front loader: %s | implements: %s",
				v.EnginePower(), v.EngineHours(), v.HydraulicPressure(), nominalLabel(v.CheckHydraulicSystem()),
				yesNo(v.HasFrontLoader()), listOrNone(v.Implements())))
	case *equipment.Vehicle:
		lines = append(lines, vehicleLine(v))
	case *equipment.Implement:
		b := v.Blades()
		lines = append(lines,
			fmt.Sprintf("Blades %d x %.1f m, depth %.1f/%.1f cm, wear %d | adjusted: %s",
				b.Count(), b.Width(), b.Depth(), b.MaxDepth(), b.Wear(), yesNo(v.IsProperlyAdjusted())),
			fmt.Sprintf("Area/h at %.0f km/h %s | traction %.1f kN | fuel/ha on soil %.0f %s",
				summarySpeed, figure(v.AreaPerHour(summarySpeed)), v.RequiredTraction(),
				summaryHardness, figure(v.FuelConsumption(1, summaryHardness))))
	}

	return strings.Join(lines, "\n")
}

func vehicleLine(v *equipment.Vehicle) string {
	fuel := v.Fuel()
	return fmt.Sprintf("Fuel %.1f/%.1f %s | range %.1f | distance %.1f | oil change: %s | insured: %s",
		fuel.Level(), fuel.Capacity(), fuel.Kind(), v.Range(), v.DistanceTraveled(),
		yesNo(v.NeedsOilChange()), yesNo(v.HasInsurance()))
}

// FleetReport concatenates the summary of every record.
func (s *Service) FleetReport() string {
	var summaries []string
	s.fleet.Each(func(e equipment.Equipment) {
		summaries = append(summaries, s.EquipmentSummary(e))
	})

	if len(summaries) == 0 {
		return "No equipment registered yet."
	}
	return fmt.Sprintf("Fleet report: %d records\n\n%s", len(summaries), strings.Join(summaries, "\n\n"))
}

// LedgerSummary counts ledger operations and failures within [start, end].
func (s *Service) LedgerSummary(ctx context.Context, start, end time.Time) (string, error) {
	entries, err := s.entries(ctx, start, end)
	if err != nil {
		return "", err
	}
	return describeLedger(start, end, entries), nil
}

// GenerateWeeklyReport builds the digest for the week containing now.
// A ledger that cannot be read leaves its figures as n/a.
func (s *Service) GenerateWeeklyReport(ctx context.Context, now time.Time) (models.WeeklyReport, error) {
	report := models.WeeklyReport{
		Start:     mondayStart(now),
		End:       now,
		Outcomes:  map[models.Outcome]int{},
		CreatedAt: now,
	}

	s.fleet.Each(func(e equipment.Equipment) {
		r := e.Base()
		report.FleetSize++
		report.FleetValue += r.CurrentValue()
		if !r.IsOperational() {
			report.NonOperational = append(report.NonOperational, r.Serial())
		}
		if e.NeedsMaintenance() {
			report.DueMaintenance = append(report.DueMaintenance, r.Serial())
		}
	})

	ledgerLine := "Ledger: " + unavailable
	report.LedgerStatus = unavailable
	entries, err := s.entries(ctx, report.Start, report.End)
	if err != nil {
		s.logger.Warn("weekly report without ledger figures", zap.Error(err))
	} else {
		report.Operations = len(entries)
		report.Outcomes = countOutcomes(entries)
		report.LedgerStatus = "ok"
		ledgerLine = describeLedger(report.Start, report.End, entries)
	}

	report.Text = strings.Join([]string{
		fmt.Sprintf("Weekly fleet report (%s to %s)", report.Start.Format(dateLayout), report.End.Format(dateLayout)),
		fmt.Sprintf("Fleet: %d records worth %.2f", report.FleetSize, report.FleetValue),
		"Out of service: " + listOrNone(report.NonOperational),
		"Maintenance due: " + listOrNone(report.DueMaintenance),
		ledgerLine,
	}, "\n")

	return report, nil
}

func (s *Service) entries(ctx context.Context, start, end time.Time) ([]models.LedgerEntry, error) {
	if s.ledger == nil {
		return nil, errors.New("ledger is not configured")
	}
	entries, err := s.ledger.Entries(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return entries, nil
}

func describeLedger(start, end time.Time, entries []models.LedgerEntry) string {
	period := fmt.Sprintf("%s to %s", start.Format(dateLayout), end.Format(dateLayout))
	if len(entries) == 0 {
		return fmt.Sprintf("Ledger (%s): no operations logged.", period)
	}

	counts := countOutcomes(entries)
	summary := fmt.Sprintf("Ledger (%s): %d operations, %d breakdowns, %d waiting for parts, %d rejected.",
		period, len(entries), counts[models.OutcomeBreakdown], counts[models.OutcomeMissingParts], counts[models.OutcomeValidation])

	if failed := failedSerials(entries); len(failed) > 0 {
		summary += " Needs attention: " + strings.Join(failed, ", ") + "."
	}
	return summary
}

func countOutcomes(entries []models.LedgerEntry) map[models.Outcome]int {
	counts := make(map[models.Outcome]int)
	for _, e := range entries {
		counts[e.Outcome]++
	}
	return counts
}

// failedSerials lists equipment that broke down or waits for parts.
func failedSerials(entries []models.LedgerEntry) []string {
	var serials []string
	for _, e := range entries {
		if e.Outcome != models.OutcomeBreakdown && e.Outcome != models.OutcomeMissingParts {
			continue
		}
		if !slices.Contains(serials, e.Serial) {
			serials = append(serials, e.Serial)
		}
	}
	slices.Sort(serials)
	return serials
}

func figure(v float64, err error) string {
	if err != nil {
		return unavailable
	}
	return fmt.Sprintf("%.2f", v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func stateLabel(operational bool) string {
	if operational {
		return "operational"
	}
	return "out of service"
}

func nominalLabel(nominal bool) string {
	if nominal {
		return "nominal"
	}
	return "out of range"
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func mondayStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	daysSinceMonday := (weekday + 6) % 7
	start := t.AddDate(0, 0, -daysSinceMonday)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, t.Location())
}
