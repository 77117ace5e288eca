package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/agrifleet/internal/domain/equipment"
	"github.com/mamadbah2/agrifleet/internal/domain/models"
	"github.com/mamadbah2/agrifleet/internal/service/fleet"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// Fleet is the part of the fleet service the dispatcher drives.
type Fleet interface {
	Has(serial string) bool
	Get(serial string) (equipment.Snapshot, error)
	List() []equipment.Snapshot
	Apply(ctx context.Context, serial string, op fleet.Operation) (equipment.Snapshot, error)
	Inspect(serial string, fn func(equipment.Equipment)) error
}

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	EquipmentSummary(e equipment.Equipment) string
	FleetReport() string
}

// Dispatcher executes parsed commands against the fleet.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	fleet     Fleet
	reporting ReportingAdapter
	sessions  *SessionManager
	logger    *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(fleet Fleet, reporting ReportingAdapter, sessions *SessionManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessions == nil {
		sessions = NewSessionManager()
	}
	return &Service{
		fleet:     fleet,
		reporting: reporting,
		sessions:  sessions,
		logger:    logger,
	}
}

var usage = map[models.CommandType]string{
	models.CommandHelp:      "/help",
	models.CommandList:      "/list",
	models.CommandSelect:    "/select SERIAL",
	models.CommandStatus:    "/status [SERIAL]",
	models.CommandReport:    "/report",
	models.CommandUse:       "/use [SERIAL]",
	models.CommandMaintain:  "/maintain [SERIAL]",
	models.CommandRepair:    "/repair [SERIAL]",
	models.CommandRelocate:  "/relocate [SERIAL] LOCATION",
	models.CommandDrive:     "/drive [SERIAL] DISTANCE",
	models.CommandRefuel:    "/refuel [SERIAL] AMOUNT",
	models.CommandInsure:    "/insure [SERIAL]",
	models.CommandAttach:    "/attach [SERIAL] IMPLEMENT",
	models.CommandDetach:    "/detach [SERIAL] IMPLEMENT",
	models.CommandPlow:      "/plow [SERIAL] HECTARES",
	models.CommandTransport: "/transport [SERIAL] WEIGHT DISTANCE",
	models.CommandPressure:  "/pressure [SERIAL] PRESSURE",
	models.CommandDepth:     "/depth [SERIAL] CENTIMETERS",
	models.CommandSharpen:   "/sharpen [SERIAL]",
	models.CommandReplace:   "/replace [SERIAL]",
}

// freeText marks commands whose argument is the rest of the line.
const freeText = -1

// arity is the number of arguments each equipment command takes.
var arity = map[models.CommandType]int{
	models.CommandStatus:    0,
	models.CommandUse:       0,
	models.CommandMaintain:  0,
	models.CommandRepair:    0,
	models.CommandInsure:    0,
	models.CommandSharpen:   0,
	models.CommandReplace:   0,
	models.CommandRelocate:  freeText,
	models.CommandAttach:    freeText,
	models.CommandDetach:    freeText,
	models.CommandDrive:     1,
	models.CommandRefuel:    1,
	models.CommandPlow:      1,
	models.CommandPressure:  1,
	models.CommandDepth:     1,
	models.CommandTransport: 2,
}

// HelpText lists every command with its arguments.
func HelpText() string {
	var b strings.Builder
	b.WriteString("Fleet commands:")
	for _, c := range models.SupportedCommands {
		if line, ok := usage[c]; ok {
			b.WriteString("\n" + line)
		}
	}
	return b.String()
}

// HandleCommand runs the command and returns the reply for the sender.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command",
		zap.String("command", string(cmd.Type)),
		zap.String("sender", sender),
		zap.String("serial", cmd.Serial),
		zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandHelp:
		return HelpText(), nil
	case models.CommandList:
		return s.listFleet(), nil
	case models.CommandReport:
		if s.reporting == nil {
			return "", ErrUnsupportedCommand
		}
		return s.reporting.FleetReport(), nil
	case models.CommandSelect:
		return s.selectEquipment(cmd, sender)
	case models.CommandUnknown:
		return "", fmt.Errorf("%w: %q, send /help for the list", ErrUnsupportedCommand, strings.TrimSpace(cmd.Raw))
	}

	serial, args, err := s.target(cmd, sender)
	if err != nil {
		return "", err
	}

	if cmd.Type == models.CommandStatus {
		if s.reporting == nil {
			return "", ErrUnsupportedCommand
		}
		var summary string
		if err := s.fleet.Inspect(serial, func(e equipment.Equipment) {
			summary = s.reporting.EquipmentSummary(e)
		}); err != nil {
			return "", err
		}
		return summary, nil
	}

	op, err := buildOperation(cmd.Type, args)
	if err != nil {
		return "", err
	}

	snap, err := s.fleet.Apply(ctx, serial, op)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (%s): %s done. %s", snap.Name, snap.Serial, op.Name, brief(snap)), nil
}

// target resolves which equipment the command addresses. The first token is
// used when it names registered equipment. Otherwise the sender's selection
// applies, but only when the tokens fit the command's arguments without a
// serial; an unknown first token is reported instead of being swallowed.
func (s *Service) target(cmd models.Command, sender string) (string, []string, error) {
	if cmd.Serial != "" && s.fleet.Has(cmd.Serial) {
		return cmd.Serial, cmd.Args, nil
	}

	if selected, ok := s.sessions.Selected(sender); ok {
		args := cmd.Args
		if cmd.Serial != "" {
			args = append([]string{cmd.Serial}, cmd.Args...)
		}
		if cmd.Serial == "" || fitsArguments(cmd.Type, args) {
			s.sessions.Touch(sender)
			return selected, args, nil
		}
	}

	if cmd.Serial == "" {
		return "", nil, fmt.Errorf("%w: no equipment given, use %s or /select SERIAL first", ErrInvalidArguments, usage[cmd.Type])
	}
	return "", nil, fmt.Errorf("%w: %s", fleet.ErrUnknownEquipment, cmd.Serial)
}

func fitsArguments(t models.CommandType, args []string) bool {
	n, ok := arity[t]
	if !ok {
		return false
	}
	if n == freeText {
		return len(args) > 0
	}
	return len(args) == n
}

func (s *Service) selectEquipment(cmd models.Command, sender string) (string, error) {
	if cmd.Serial == "" {
		s.sessions.Clear(sender)
		return "Selection cleared.", nil
	}

	snap, err := s.fleet.Get(cmd.Serial)
	if err != nil {
		return "", err
	}
	s.sessions.Select(sender, snap.Serial)
	return fmt.Sprintf("Selected %s (%s). Commands may now omit the serial.", snap.Name, snap.Serial), nil
}

func (s *Service) listFleet() string {
	snapshots := s.fleet.List()
	if len(snapshots) == 0 {
		return "No equipment registered yet."
	}

	lines := make([]string, 0, len(snapshots)+1)
	lines = append(lines, fmt.Sprintf("Fleet (%d):", len(snapshots)))
	for _, snap := range snapshots {
		lines = append(lines, fmt.Sprintf("%s %s [%s] %s at %s", snap.Serial, snap.Name, snap.Kind, state(snap), snap.Location))
	}
	return strings.Join(lines, "\n")
}

func buildOperation(t models.CommandType, args []string) (fleet.Operation, error) {
	switch t {
	case models.CommandUse:
		return fleet.Use(), nil
	case models.CommandMaintain:
		return fleet.Maintain(), nil
	case models.CommandRepair:
		return fleet.Repair(), nil
	case models.CommandInsure:
		return fleet.RenewInsurance(), nil
	case models.CommandSharpen:
		return fleet.Sharpen(), nil
	case models.CommandReplace:
		return fleet.ReplaceBlades(), nil
	case models.CommandRelocate:
		location, err := text(t, args)
		return fleet.Relocate(location), err
	case models.CommandAttach:
		name, err := text(t, args)
		return fleet.Attach(name), err
	case models.CommandDetach:
		name, err := text(t, args)
		return fleet.Detach(name), err
	case models.CommandDrive:
		v, err := numbers(t, args, 1)
		if err != nil {
			return fleet.Operation{}, err
		}
		return fleet.Drive(v[0]), nil
	case models.CommandRefuel:
		v, err := numbers(t, args, 1)
		if err != nil {
			return fleet.Operation{}, err
		}
		return fleet.Refuel(v[0]), nil
	case models.CommandPlow:
		v, err := numbers(t, args, 1)
		if err != nil {
			return fleet.Operation{}, err
		}
		return fleet.Plow(v[0]), nil
	case models.CommandPressure:
		v, err := numbers(t, args, 1)
		if err != nil {
			return fleet.Operation{}, err
		}
		return fleet.SetPressure(v[0]), nil
	case models.CommandDepth:
		v, err := numbers(t, args, 1)
		if err != nil {
			return fleet.Operation{}, err
		}
		return fleet.AdjustDepth(v[0]), nil
	case models.CommandTransport:
		v, err := numbers(t, args, 2)
		if err != nil {
			return fleet.Operation{}, err
		}
		return fleet.Transport(v[0], v[1]), nil
	default:
		return fleet.Operation{}, ErrUnsupportedCommand
	}
}

func text(t models.CommandType, args []string) (string, error) {
	value := strings.TrimSpace(strings.Join(args, " "))
	if value == "" {
		return "", fmt.Errorf("%w: usage %s", ErrInvalidArguments, usage[t])
	}
	return value, nil
}

func numbers(t models.CommandType, args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: usage %s", ErrInvalidArguments, usage[t])
	}

	values := make([]float64, n)
	for i, arg := range args {
		v, err := strconv.ParseFloat(strings.ReplaceAll(arg, ",", "."), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number, usage %s", ErrInvalidArguments, arg, usage[t])
		}
		values[i] = v
	}
	return values, nil
}

func state(s equipment.Snapshot) string {
	if s.Operational {
		return "operational"
	}
	return "OUT OF SERVICE"
}

func brief(s equipment.Snapshot) string {
	parts := []string{fmt.Sprintf("%s at %s", state(s), s.Location)}
	switch s.Kind {
	case equipment.KindVehicle, equipment.KindTractor:
		parts = append(parts, fmt.Sprintf("fuel %.1f/%.1f", s.FuelLevel, s.FuelCapacity))
	case equipment.KindImplement:
		parts = append(parts, fmt.Sprintf("blade wear %d", s.WearLevel))
	}
	if s.Kind == equipment.KindTractor {
		parts = append(parts, fmt.Sprintf("hydraulics %.0f", s.HydraulicPressure), fmt.Sprintf("engine hours %.1f", s.EngineHours))
		if len(s.Implements) > 0 {
			parts = append(parts, "implements "+strings.Join(s.Implements, ", "))
		}
	}
	return strings.Join(parts, ", ") + "."
}
