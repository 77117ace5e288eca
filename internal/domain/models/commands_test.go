package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    Command
	}{
		{
			name:    "serial and number",
			message: "/drive TR-000001 50",
			want:    Command{Type: CommandDrive, Raw: "/drive TR-000001 50", Serial: "TR-000001", Args: []string{"50"}},
		},
		{
			name:    "command word is case insensitive",
			message: "  /RELOCATE im-000002 South Field  ",
			want:    Command{Type: CommandRelocate, Raw: "  /RELOCATE im-000002 South Field  ", Serial: "im-000002", Args: []string{"South", "Field"}},
		},
		{
			name:    "slash is optional",
			message: "status VH-000003",
			want:    Command{Type: CommandStatus, Raw: "status VH-000003", Serial: "VH-000003"},
		},
		{
			name:    "bare command",
			message: "/report",
			want:    Command{Type: CommandReport, Raw: "/report"},
		},
		{
			name:    "unknown word",
			message: "/harvest TR-000001",
			want:    Command{Type: CommandUnknown, Raw: "/harvest TR-000001", Serial: "TR-000001"},
		},
		{
			name:    "empty",
			message: "   ",
			want:    Command{Type: CommandUnknown, Raw: "   "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCommand(tt.message))
		})
	}
}

func TestSupportedCommandsAreParsed(t *testing.T) {
	for _, c := range SupportedCommands {
		assert.Equal(t, c, ParseCommand("/"+string(c)).Type)
	}
}

func TestInboundMessageBody(t *testing.T) {
	assert.Equal(t, "/use IM-000001", InboundMessage{Text: &TextContent{Body: "/use IM-000001"}}.Body())
	assert.Equal(t, "/status TR-000001", InboundMessage{
		Interactive: &InteractiveContent{ButtonReply: &ReplyOption{ID: "/status TR-000001"}},
	}.Body())
	assert.Equal(t, "/list", InboundMessage{
		Interactive: &InteractiveContent{ListReply: &ReplyOption{ID: "/list"}},
	}.Body())
	assert.Empty(t, InboundMessage{Type: "image"}.Body())
}
