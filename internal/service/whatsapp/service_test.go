package whatsapp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/agrifleet/internal/config"
	"github.com/mamadbah2/agrifleet/internal/domain/models"
	client "github.com/mamadbah2/agrifleet/pkg/clients/whatsapp"
)

type fakeClient struct {
	sent []client.SendTextMessageRequest
	err  error
}

func (f *fakeClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	f.sent = append(f.sent, req)
	if f.err != nil {
		return nil, f.err
	}
	return &client.SendTextMessageResponse{}, nil
}

type fakeDispatcher struct {
	commands []models.Command
	senders  []string
	reply    string
	err      error
}

func (f *fakeDispatcher) HandleCommand(_ context.Context, cmd models.Command, sender string) (string, error) {
	f.commands = append(f.commands, cmd)
	f.senders = append(f.senders, sender)
	return f.reply, f.err
}

func testConfig() config.WhatsAppConfig {
	return config.WhatsAppConfig{
		AccessToken:    "token",
		PhoneNumberID:  "1029",
		VerifyToken:    "secret",
		FleetManagerID: "224600000000",
	}
}

func textMessage(from, body string) models.InboundMessage {
	return models.InboundMessage{From: from, ID: "wamid." + from, Type: "text", Text: &models.TextContent{Body: body}}
}

func payload(msgs ...models.InboundMessage) models.WebhookPayload {
	return models.WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []models.WebhookEntry{{
			Changes: []models.WebhookChange{{Field: "messages", Value: models.WebhookValue{Messages: msgs}}},
		}},
	}
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := NewMetaWhatsAppService(testConfig(), &fakeClient{}, &fakeDispatcher{}, nil)

	challenge, err := svc.VerifyWebhookToken("subscribe", "secret", "12345")
	require.NoError(t, err)
	assert.Equal(t, "12345", challenge)

	for _, tc := range []struct{ mode, token string }{
		{"", "secret"},
		{"subscribe", ""},
		{"unsubscribe", "secret"},
		{"subscribe", "wrong"},
	} {
		_, err := svc.VerifyWebhookToken(tc.mode, tc.token, "12345")
		assert.Error(t, err, "mode=%q token=%q", tc.mode, tc.token)
	}
}

func TestHandleWebhook_RepliesWithDispatcherResult(t *testing.T) {
	c := &fakeClient{}
	d := &fakeDispatcher{reply: "Fendt 516 (TR-000001): use done."}
	svc := NewMetaWhatsAppService(testConfig(), c, d, nil)

	outcomes, err := svc.HandleWebhook(context.Background(), payload(textMessage("224611", "/USE TR-000001")))
	require.NoError(t, err)
	assert.Equal(t, []models.MessageOutcome{{
		MessageID: "wamid.224611",
		From:      "224611",
		Command:   models.CommandUse,
		Status:    models.MessageHandled,
	}}, outcomes)

	require.Len(t, d.commands, 1)
	assert.Equal(t, models.CommandUse, d.commands[0].Type)
	assert.Equal(t, "TR-000001", d.commands[0].Serial)
	assert.Equal(t, []string{"224611"}, d.senders)

	require.Len(t, c.sent, 1)
	assert.Equal(t, "224611", c.sent[0].To)
	assert.Equal(t, "Fendt 516 (TR-000001): use done.", c.sent[0].Body)
}

func TestHandleWebhook_RepliesWithCommandError(t *testing.T) {
	c := &fakeClient{}
	d := &fakeDispatcher{err: errors.New("unknown equipment: TR-404")}
	svc := NewMetaWhatsAppService(testConfig(), c, d, nil)

	outcomes, err := svc.HandleWebhook(context.Background(), payload(textMessage("224611", "/use TR-404")))
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, models.MessageRejected, outcomes[0].Status)
	assert.Equal(t, "unknown equipment: TR-404", outcomes[0].Error)

	require.Len(t, c.sent, 1)
	assert.Equal(t, "Could not run /use TR-404: unknown equipment: TR-404", c.sent[0].Body)
}

func TestHandleWebhook_InteractiveAndIgnoredMessages(t *testing.T) {
	c := &fakeClient{}
	d := &fakeDispatcher{reply: "ok"}
	svc := NewMetaWhatsAppService(testConfig(), c, d, nil)

	button := models.InboundMessage{
		From: "224622",
		Type: "interactive",
		Interactive: &models.InteractiveContent{
			Type:        "button_reply",
			ButtonReply: &models.ReplyOption{ID: "/status IM-000001", Title: "Status"},
		},
	}
	image := models.InboundMessage{From: "224633", Type: "image"}

	outcomes, err := svc.HandleWebhook(context.Background(), payload(button, image))
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, models.MessageHandled, outcomes[0].Status)
	assert.Equal(t, models.MessageIgnored, outcomes[1].Status)
	assert.Empty(t, outcomes[1].Command)

	require.Len(t, d.commands, 1)
	assert.Equal(t, models.CommandStatus, d.commands[0].Type)
	assert.Len(t, c.sent, 1)
}

func TestHandleWebhook_ReturnsFirstSendError(t *testing.T) {
	boom := errors.New("network down")
	c := &fakeClient{err: boom}
	svc := NewMetaWhatsAppService(testConfig(), c, &fakeDispatcher{reply: "ok"}, nil)

	outcomes, err := svc.HandleWebhook(context.Background(), payload(textMessage("1", "/list"), textMessage("2", "/help")))
	require.ErrorIs(t, err, boom)
	assert.Len(t, c.sent, 2)
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.Equal(t, models.MessageUndelivered, o.Status)
		assert.Contains(t, o.Error, "network down")
	}
}

func TestNotifyManager(t *testing.T) {
	c := &fakeClient{}
	n := NewNotifier(testConfig(), c)

	require.NoError(t, n.NotifyManager(context.Background(), "ALERT overheating"))
	require.Len(t, c.sent, 1)
	assert.Equal(t, "224600000000", c.sent[0].To)
	assert.Equal(t, "ALERT overheating", c.sent[0].Body)

	cfg := testConfig()
	cfg.FleetManagerID = ""
	err := NewNotifier(cfg, c).NotifyManager(context.Background(), "x")
	require.ErrorIs(t, err, ErrManagerNotConfigured)
}

func TestAuthorizeOperator(t *testing.T) {
	svc := NewMetaWhatsAppService(testConfig(), &fakeClient{}, &fakeDispatcher{}, nil)

	assert.NoError(t, svc.AuthorizeOperator("secret"))
	assert.ErrorIs(t, svc.AuthorizeOperator(""), ErrUnauthorized)
	assert.ErrorIs(t, svc.AuthorizeOperator("secret2"), ErrUnauthorized)

	cfg := testConfig()
	cfg.VerifyToken = ""
	open := NewMetaWhatsAppService(cfg, &fakeClient{}, &fakeDispatcher{}, nil)
	assert.ErrorIs(t, open.AuthorizeOperator(""), ErrUnauthorized)
}

func TestMessageManager_OnlyReachesFleetManager(t *testing.T) {
	c := &fakeClient{}
	svc := NewMetaWhatsAppService(testConfig(), c, &fakeDispatcher{}, nil)

	err := svc.MessageManager(context.Background(), models.ManagerMessageRequest{Message: "Harvest starts Monday", PreviewURL: true})
	require.NoError(t, err)
	require.Len(t, c.sent, 1)
	assert.Equal(t, "224600000000", c.sent[0].To)
	assert.True(t, c.sent[0].PreviewURL)

	cfg := testConfig()
	cfg.FleetManagerID = ""
	svc = NewMetaWhatsAppService(cfg, c, &fakeDispatcher{}, nil)
	err = svc.MessageManager(context.Background(), models.ManagerMessageRequest{Message: "x"})
	assert.ErrorIs(t, err, ErrManagerNotConfigured)
	assert.Len(t, c.sent, 1)
}
