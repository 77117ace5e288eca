package models

import "strings"

// CommandType enumerates the fleet commands understood over chat and HTTP.
type CommandType string

const (
	CommandHelp      CommandType = "help"
	CommandList      CommandType = "list"
	CommandSelect    CommandType = "select"
	CommandStatus    CommandType = "status"
	CommandReport    CommandType = "report"
	CommandUse       CommandType = "use"
	CommandMaintain  CommandType = "maintain"
	CommandRepair    CommandType = "repair"
	CommandRelocate  CommandType = "relocate"
	CommandDrive     CommandType = "drive"
	CommandRefuel    CommandType = "refuel"
	CommandInsure    CommandType = "insure"
	CommandAttach    CommandType = "attach"
	CommandDetach    CommandType = "detach"
	CommandPlow      CommandType = "plow"
	CommandTransport CommandType = "transport"
	CommandPressure  CommandType = "pressure"
	CommandDepth     CommandType = "depth"
	CommandSharpen   CommandType = "sharpen"
	CommandReplace   CommandType = "replace"
	CommandUnknown   CommandType = "unknown"
)

// SupportedCommands lists every command word in help order.
var SupportedCommands = []CommandType{
	CommandHelp, CommandList, CommandSelect, CommandStatus, CommandReport,
	CommandUse, CommandMaintain, CommandRepair, CommandRelocate,
	CommandDrive, CommandRefuel, CommandInsure,
	CommandAttach, CommandDetach, CommandPlow, CommandTransport, CommandPressure,
	CommandDepth, CommandSharpen, CommandReplace,
}

var knownCommands = make(map[string]CommandType, len(SupportedCommands))

func init() {
	for _, t := range SupportedCommands {
		knownCommands[string(t)] = t
	}
}

// Command is a parsed fleet instruction such as "/drive TR-000001 50".
// Serial is the first token after the command word; whether it really names
// equipment is decided by the dispatcher.
type Command struct {
	Type   CommandType
	Raw    string
	Serial string
	Args   []string
}

// ParseCommand derives a Command from free-form text. Only the command word
// is case-insensitive; serials and names keep their case.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(message)
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	if t, ok := knownCommands[head]; ok {
		cmd.Type = t
	}

	if len(tokens) > 1 {
		cmd.Serial = tokens[1]
	}
	if len(tokens) > 2 {
		cmd.Args = tokens[2:]
	}

	return cmd
}
