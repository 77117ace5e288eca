package fleet

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/agrifleet/internal/config"
	"github.com/mamadbah2/agrifleet/internal/domain/equipment"
	"github.com/mamadbah2/agrifleet/internal/domain/models"
)

var (
	// ErrUnknownEquipment indicates no record is registered under the serial.
	ErrUnknownEquipment = errors.New("unknown equipment")
	// ErrUnsupportedOperation indicates the operation does not apply to the equipment kind.
	ErrUnsupportedOperation = errors.New("operation not supported")
)

// SnapshotStore persists equipment state between restarts.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot equipment.Snapshot) error
	LoadSnapshots(ctx context.Context) ([]equipment.Snapshot, error)
	DeleteSnapshot(ctx context.Context, serial string) error
}

// Ledger receives one entry per attempted operation.
type Ledger interface {
	Append(ctx context.Context, entry models.LedgerEntry) error
}

// Notifier alerts the fleet manager.
type Notifier interface {
	NotifyManager(ctx context.Context, message string) error
}

// Observer records operation and alert outcomes.
type Observer interface {
	ObserveOperation(kind, operation, outcome string)
	ObserveAlert(outcome string)
}

// Service owns the registered equipment. Every record is mutated under the
// service lock, so callers never touch live records directly. Store writes
// are serialized by storeMu, which is always taken before mu.
type Service struct {
	mu    sync.Mutex
	env   *equipment.Env
	items map[string]equipment.Equipment

	storeMu sync.Mutex

	store    SnapshotStore
	ledger   Ledger
	notifier Notifier
	observer Observer
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a fleet service. store, ledger and notifier are optional.
func NewService(env *equipment.Env, store SnapshotStore, ledger Ledger, notifier Notifier, logger *zap.Logger) *Service {
	if env == nil {
		env = equipment.NewEnv()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		env:      env,
		items:    make(map[string]equipment.Equipment),
		store:    store,
		ledger:   ledger,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// NewEnv builds the equipment environment described by the simulation settings.
func NewEnv(cfg config.SimulationConfig) *equipment.Env {
	env := equipment.NewEnv()
	env.MinYear = cfg.MinYear
	if cfg.SerialStrategy == config.SerialUUID {
		env.Serials = equipment.NewUUIDSerials()
	}
	if cfg.Hazards == config.HazardsNone {
		env.Odds = equipment.NoHazards()
	}
	if cfg.CurrentYear > 0 {
		year := cfg.CurrentYear
		env.Now = func() time.Time {
			now := time.Now()
			return now.AddDate(year-now.Year(), 0, 0)
		}
	}
	return env
}

// WithObserver attaches an outcome observer and returns s.
func (s *Service) WithObserver(o Observer) *Service {
	s.observer = o
	return s
}

// RegisterRecord adds a generic equipment record.
func (s *Service) RegisterRecord(ctx context.Context, spec equipment.RecordSpec) (equipment.Snapshot, error) {
	return s.register(ctx, func(env *equipment.Env) (equipment.Equipment, error) {
		r, err := equipment.NewRecord(env, spec)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RegisterVehicle adds a powered vehicle.
func (s *Service) RegisterVehicle(ctx context.Context, spec equipment.VehicleSpec) (equipment.Snapshot, error) {
	return s.register(ctx, func(env *equipment.Env) (equipment.Equipment, error) {
		v, err := equipment.NewVehicle(env, spec)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
}

// RegisterTractor adds an implement carrier.
func (s *Service) RegisterTractor(ctx context.Context, spec equipment.TractorSpec) (equipment.Snapshot, error) {
	return s.register(ctx, func(env *equipment.Env) (equipment.Equipment, error) {
		t, err := equipment.NewTractor(env, spec)
		if err != nil {
			return nil, err
		}
		return t, nil
	})
}

// RegisterImplement adds a wearable implement.
func (s *Service) RegisterImplement(ctx context.Context, spec equipment.ImplementSpec) (equipment.Snapshot, error) {
	return s.register(ctx, func(env *equipment.Env) (equipment.Equipment, error) {
		i, err := equipment.NewImplement(env, spec)
		if err != nil {
			return nil, err
		}
		return i, nil
	})
}

func (s *Service) register(ctx context.Context, build func(*equipment.Env) (equipment.Equipment, error)) (equipment.Snapshot, error) {
	s.mu.Lock()
	eq, err := build(s.env)
	if err != nil {
		s.mu.Unlock()
		return equipment.Snapshot{}, err
	}
	snap := eq.Snapshot()
	s.items[snap.Serial] = eq
	s.mu.Unlock()

	s.logger.Info("equipment registered", zap.String("serial", snap.Serial), zap.String("kind", string(snap.Kind)))
	s.appendLedger(ctx, snap, "register", nil)
	s.persist(ctx, eq, snap)
	return snap, nil
}

// Retire removes a record and frees its serial.
// A save of the record still in flight completes before the stored snapshot
// is deleted.
func (s *Service) Retire(ctx context.Context, serial string) error {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	s.mu.Lock()
	eq, ok := s.items[serial]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownEquipment, serial)
	}
	snap := eq.Snapshot()
	delete(s.items, serial)
	s.env.Serials.Release(serial)
	s.mu.Unlock()

	s.logger.Info("equipment retired", zap.String("serial", serial))
	s.appendLedger(ctx, snap, "retire", nil)
	if s.store != nil {
		if err := s.store.DeleteSnapshot(ctx, serial); err != nil {
			s.logger.Error("failed to delete snapshot", zap.String("serial", serial), zap.Error(err))
		}
	}
	return nil
}

// Apply runs op against the record. The returned snapshot reflects the state
// after the attempt, including the partial effect of a breakdown. The ledger
// row, snapshot and alert are best effort and never change the result.
func (s *Service) Apply(ctx context.Context, serial string, op Operation) (equipment.Snapshot, error) {
	s.mu.Lock()
	eq, ok := s.items[serial]
	if !ok {
		s.mu.Unlock()
		return equipment.Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownEquipment, serial)
	}
	opErr := op.run(eq)
	snap := eq.Snapshot()
	s.mu.Unlock()

	if errors.Is(opErr, ErrUnsupportedOperation) {
		return snap, opErr
	}

	outcome := Classify(opErr)
	fields := []zap.Field{
		zap.String("serial", serial),
		zap.String("operation", op.Name),
		zap.String("outcome", string(outcome)),
	}
	if opErr != nil {
		s.logger.Warn("operation failed", append(fields, zap.Error(opErr))...)
	} else {
		s.logger.Info("operation applied", fields...)
	}

	s.appendLedger(ctx, snap, op.Name, opErr)
	if s.observer != nil {
		s.observer.ObserveOperation(string(snap.Kind), op.Name, string(outcome))
	}

	switch outcome {
	case models.OutcomeOK, models.OutcomeBreakdown:
		s.persist(ctx, eq, snap)
	}
	switch outcome {
	case models.OutcomeBreakdown:
		s.alert(ctx, fmt.Sprintf("ALERT %s during %s. Repair needed before further use.", opErr, op.Name))
	case models.OutcomeMissingParts:
		s.alert(ctx, fmt.Sprintf("PARTS %s, %s postponed.", opErr, op.Name))
	}

	return snap, opErr
}

// Classify maps an operation error onto a ledger outcome.
func Classify(err error) models.Outcome {
	switch {
	case err == nil:
		return models.OutcomeOK
	case errors.Is(err, equipment.ErrBreakdown):
		return models.OutcomeBreakdown
	case errors.Is(err, equipment.ErrMissingParts):
		return models.OutcomeMissingParts
	case errors.Is(err, equipment.ErrValidation):
		return models.OutcomeValidation
	default:
		return models.OutcomeError
	}
}

// Has reports whether serial is registered.
func (s *Service) Has(serial string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[serial]
	return ok
}

// Get returns the current snapshot of one record.
func (s *Service) Get(serial string) (equipment.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eq, ok := s.items[serial]
	if !ok {
		return equipment.Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownEquipment, serial)
	}
	return eq.Snapshot(), nil
}

// List returns snapshots of every record ordered by serial.
func (s *Service) List() []equipment.Snapshot {
	var out []equipment.Snapshot
	s.Each(func(e equipment.Equipment) {
		out = append(out, e.Snapshot())
	})
	return out
}

// Inspect calls fn with the live record under the service lock. fn must not
// keep the record or call back into the service.
func (s *Service) Inspect(serial string, fn func(equipment.Equipment)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	eq, ok := s.items[serial]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEquipment, serial)
	}
	fn(eq)
	return nil
}

// Each calls fn for every record in serial order, under the service lock.
func (s *Service) Each(fn func(equipment.Equipment)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	serials := make([]string, 0, len(s.items))
	for serial := range s.items {
		serials = append(serials, serial)
	}
	slices.Sort(serials)

	for _, serial := range serials {
		fn(s.items[serial])
	}
}

// Restore loads every stored snapshot that is not registered yet. Snapshots
// failing validation are logged and skipped.
func (s *Service) Restore(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}

	snapshots, err := s.store.LoadSnapshots(ctx)
	if err != nil {
		return 0, fmt.Errorf("load snapshots: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	restored := 0
	for _, snap := range snapshots {
		if _, exists := s.items[snap.Serial]; exists {
			continue
		}
		eq, err := equipment.Restore(s.env, snap)
		if err != nil {
			s.logger.Warn("skipping invalid snapshot", zap.String("serial", snap.Serial), zap.Error(err))
			continue
		}
		s.items[snap.Serial] = eq
		restored++
	}

	s.logger.Info("fleet restored", zap.Int("restored", restored), zap.Int("stored", len(snapshots)))
	return restored, nil
}

// PersistAll saves every record and deletes stored snapshots of records that
// are no longer registered. It keeps going after a failure and reports all of
// them.
func (s *Service) PersistAll(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	var errs []error
	for _, snap := range s.List() {
		if err := s.store.SaveSnapshot(ctx, snap); err != nil {
			errs = append(errs, fmt.Errorf("save %s: %w", snap.Serial, err))
		}
	}

	stored, err := s.store.LoadSnapshots(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("load snapshots: %w", err))
		return errors.Join(errs...)
	}
	for _, snap := range stored {
		if s.Has(snap.Serial) {
			continue
		}
		if err := s.store.DeleteSnapshot(ctx, snap.Serial); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", snap.Serial, err))
			continue
		}
		s.logger.Info("pruned stale snapshot", zap.String("serial", snap.Serial))
	}
	return errors.Join(errs...)
}

func (s *Service) appendLedger(ctx context.Context, snap equipment.Snapshot, operation string, opErr error) {
	if s.ledger == nil {
		return
	}

	entry := models.LedgerEntry{
		Date:      s.now(),
		Serial:    snap.Serial,
		Kind:      string(snap.Kind),
		Operation: operation,
		Outcome:   Classify(opErr),
	}
	if opErr != nil {
		entry.Detail = opErr.Error()
	}

	if err := s.ledger.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append ledger entry", zap.String("serial", snap.Serial), zap.Error(err))
	}
}

// persist saves snap unless eq has been retired or replaced meanwhile.
func (s *Service) persist(ctx context.Context, eq equipment.Equipment, snap equipment.Snapshot) {
	if s.store == nil {
		return
	}

	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	s.mu.Lock()
	current, ok := s.items[snap.Serial]
	s.mu.Unlock()
	if !ok || current != eq {
		s.logger.Debug("skipping snapshot of retired equipment", zap.String("serial", snap.Serial))
		return
	}

	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		s.logger.Error("failed to save snapshot", zap.String("serial", snap.Serial), zap.Error(err))
	}
}

func (s *Service) alert(ctx context.Context, message string) {
	if s.notifier == nil {
		return
	}
	outcome := "sent"
	if err := s.notifier.NotifyManager(ctx, message); err != nil {
		s.logger.Error("failed to alert fleet manager", zap.Error(err))
		outcome = "failed"
	}
	if s.observer != nil {
		s.observer.ObserveAlert(outcome)
	}
}
