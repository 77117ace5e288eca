package models

// ManagerMessageRequest is an operator note relayed to the fleet manager.
type ManagerMessageRequest struct {
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// MessageStatus is what became of one inbound chat message.
type MessageStatus string

const (
	MessageHandled     MessageStatus = "handled"
	MessageRejected    MessageStatus = "rejected"
	MessageIgnored     MessageStatus = "ignored"
	MessageUndelivered MessageStatus = "undelivered"
)

// MessageOutcome reports the dispatch of one inbound chat message.
type MessageOutcome struct {
	MessageID string        `json:"message_id"`
	From      string        `json:"from"`
	Command   CommandType   `json:"command,omitempty"`
	Status    MessageStatus `json:"status"`
	Error     string        `json:"error,omitempty"`
}

// CommandRequest is the HTTP form of a chat command.
type CommandRequest struct {
	Text   string `json:"text" binding:"required"`
	Sender string `json:"sender"`
}

// CommandReply is what a dispatched command answers.
type CommandReply struct {
	Command CommandType `json:"command"`
	Message string      `json:"message"`
}
