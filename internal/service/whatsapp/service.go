package whatsapp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/agrifleet/internal/config"
	"github.com/mamadbah2/agrifleet/internal/domain/models"
	"github.com/mamadbah2/agrifleet/internal/service/commands"
	client "github.com/mamadbah2/agrifleet/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

var (
	// ErrUnauthorized indicates an operator request without the verify token.
	ErrUnauthorized = errors.New("operator token rejected")
	// ErrManagerNotConfigured indicates no fleet manager recipient is set.
	ErrManagerNotConfigured = errors.New("fleet manager recipient is not configured")
)

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) ([]models.MessageOutcome, error)
	AuthorizeOperator(token string) error
	MessageManager(ctx context.Context, req models.ManagerMessageRequest) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
// Inbound messages are fleet commands; every one gets a reply, errors included.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	manager    *Notifier
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		dispatcher: dispatcher,
		manager:    NewNotifier(cfg, client),
		logger:     logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook dispatches every inbound message and reports one outcome per
// message. The error is the first reply that could not be delivered.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) ([]models.MessageOutcome, error) {
	var (
		outcomes []models.MessageOutcome
		firstErr error
	)

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				outcome, err := s.handleInboundMessage(ctx, msg)
				if err != nil {
					s.logger.Error("failed to reply to inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
				outcomes = append(outcomes, outcome)
			}
		}
	}

	return outcomes, firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) (models.MessageOutcome, error) {
	outcome := models.MessageOutcome{MessageID: msg.ID, From: msg.From}

	text := msg.Body()
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("message_id", msg.ID), zap.String("type", msg.Type))
		outcome.Status = models.MessageIgnored
		return outcome, nil
	}

	cmd := models.ParseCommand(text)
	outcome.Command = cmd.Type
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.String("serial", cmd.Serial))

	outcome.Status = models.MessageHandled
	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	if err != nil {
		s.logger.Info("command rejected", zap.String("from", msg.From), zap.Error(err))
		outcome.Status = models.MessageRejected
		outcome.Error = err.Error()
		reply = fmt.Sprintf("Could not run %s: %v", strings.TrimSpace(cmd.Raw), err)
	}

	if err := send(ctx, s.client, msg.From, reply, false); err != nil {
		outcome.Status = models.MessageUndelivered
		outcome.Error = err.Error()
		return outcome, err
	}
	return outcome, nil
}

// AuthorizeOperator checks the token operators present on manager relays
// against the webhook verify token.
func (s *MetaWhatsAppService) AuthorizeOperator(token string) error {
	if token == "" || s.cfg.VerifyToken == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.VerifyToken)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// MessageManager relays an operator note to the fleet manager only.
func (s *MetaWhatsAppService) MessageManager(ctx context.Context, req models.ManagerMessageRequest) error {
	return s.manager.relay(ctx, req.Message, req.PreviewURL)
}

// Notifier alerts the fleet manager over WhatsApp.
type Notifier struct {
	recipient string
	client    client.Client
}

// NewNotifier wires a notifier for cfg.FleetManagerID.
func NewNotifier(cfg config.WhatsAppConfig, client client.Client) *Notifier {
	return &Notifier{recipient: cfg.FleetManagerID, client: client}
}

// NotifyManager messages the configured fleet manager.
func (n *Notifier) NotifyManager(ctx context.Context, message string) error {
	return n.relay(ctx, message, false)
}

func (n *Notifier) relay(ctx context.Context, message string, previewURL bool) error {
	if n.recipient == "" {
		return ErrManagerNotConfigured
	}
	return send(ctx, n.client, n.recipient, message, previewURL)
}

func send(ctx context.Context, c client.Client, to, body string, previewURL bool) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := c.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         to,
		Body:       body,
		PreviewURL: previewURL,
	})
	if err != nil {
		return fmt.Errorf("send message to %s: %w", to, err)
	}
	return nil
}
