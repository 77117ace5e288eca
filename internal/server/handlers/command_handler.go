package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrifleet/internal/domain/models"
	"github.com/mamadbah2/agrifleet/internal/service/commands"
)

// defaultSender owns the selection session of HTTP callers that do not name one.
const defaultSender = "http"

// CommandHandler runs chat commands received over HTTP.
type CommandHandler struct {
	dispatcher commands.Dispatcher
	logger     *zap.Logger
}

// NewCommandHandler constructs the HTTP handler adapter.
func NewCommandHandler(dispatcher commands.Dispatcher, logger *zap.Logger) *CommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandHandler{dispatcher: dispatcher, logger: logger}
}

// Run parses and dispatches one command.
func (h *CommandHandler) Run(c *gin.Context) {
	var req models.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid command payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sender := req.Sender
	if sender == "" {
		sender = defaultSender
	}

	cmd := models.ParseCommand(req.Text)
	reply, err := h.dispatcher.HandleCommand(c.Request.Context(), cmd, sender)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CommandReply{Command: cmd.Type, Message: reply})
}
