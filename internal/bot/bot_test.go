package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CamiFraga/CaliBotUADE/internal/calendar"
	"github.com/CamiFraga/CaliBotUADE/internal/telegram"
)

type sentMessage struct {
	chatID int64
	text   string
}

type fakeTransport struct {
	sent []sentMessage
}

func (f *fakeTransport) SendMessage(_ context.Context, chatID int64, text string) error {
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeTransport) GetUpdates(_ context.Context, _ int64, _ int) ([]telegram.Update, error) {
	return nil, nil
}

func newTestBot(backend calendar.Backend) (*Bot, *fakeTransport, *Recipient) {
	transport := &fakeTransport{}
	recipient := NewRecipient()
	b := New(transport, backend, recipient, 30)
	return b, transport, recipient
}

func message(chatID int64, text string) *telegram.Message {
	return &telegram.Message{
		Chat: &telegram.Chat{ID: chatID},
		From: &telegram.User{ID: chatID, FirstName: "Cami"},
		Text: text,
	}
}

func TestStartRecordsRecipient(t *testing.T) {
	b, transport, recipient := newTestBot(&fakeBackend{})

	b.handleMessage(context.Background(), message(77, "/start"))

	chatID, ok := recipient.Get()
	require.True(t, ok)
	assert.Equal(t, int64(77), chatID)

	require.Len(t, transport.sent, 1)
	assert.Contains(t, transport.sent[0].text, "Cami")
	assert.Contains(t, transport.sent[0].text, "/createreminder")
}

func TestCreateReminderFullFlow(t *testing.T) {
	backend := &fakeBackend{createID: "evt-9"}
	b, transport, _ := newTestBot(backend)
	ctx := context.Background()

	inputs := []string{"/createreminder", "Dentist", "None", "Checkup", "25-12-2025", "10:00", "11:00"}
	for _, in := range inputs {
		b.handleMessage(ctx, message(1, in))
	}

	require.Equal(t, 1, backend.createCalls)
	require.Len(t, transport.sent, len(inputs))
	assert.Contains(t, transport.sent[len(transport.sent)-1].text, "Reminder created")

	// The conversation is over; free text falls back to the hint.
	b.handleMessage(ctx, message(1, "anything"))
	assert.Contains(t, transport.sent[len(transport.sent)-1].text, "/createreminder")
}

func TestCancelFromEveryState(t *testing.T) {
	answers := []string{"Dentist", "None", "Checkup", "25-12-2025", "10:00"}

	for depth := 0; depth <= len(answers); depth++ {
		backend := &fakeBackend{createID: "evt-1"}
		b, transport, _ := newTestBot(backend)
		ctx := context.Background()

		b.handleMessage(ctx, message(1, "/createreminder"))
		for _, in := range answers[:depth] {
			b.handleMessage(ctx, message(1, in))
		}

		b.handleMessage(ctx, message(1, "/cancel"))

		assert.Zero(t, backend.createCalls, "cancel after %d answers must not create an event", depth)
		assert.Contains(t, transport.sent[len(transport.sent)-1].text, "cancelled")
		assert.Empty(t, b.conversations)
	}
}

func TestCancelWithoutConversation(t *testing.T) {
	b, transport, _ := newTestBot(&fakeBackend{})
	b.handleMessage(context.Background(), message(1, "/cancel"))
	require.Len(t, transport.sent, 1)
	assert.Contains(t, transport.sent[0].text, "nothing to cancel")
}

func TestFreeTextWithoutConversation(t *testing.T) {
	b, transport, _ := newTestBot(&fakeBackend{})
	b.handleMessage(context.Background(), message(1, "hello"))
	require.Len(t, transport.sent, 1)
	assert.Contains(t, transport.sent[0].text, "/createreminder")
}

func TestListRemindersEmpty(t *testing.T) {
	b, transport, _ := newTestBot(&fakeBackend{})
	b.handleMessage(context.Background(), message(1, "/listreminders"))
	require.Len(t, transport.sent, 1)
	assert.Contains(t, transport.sent[0].text, "no upcoming reminders")
}

func TestListRemindersFormatsEvents(t *testing.T) {
	backend := &fakeBackend{
		events: []calendar.Event{
			{
				ID:      "e1",
				Summary: "Dentist",
				Start:   "2025-12-25T10:00:00-03:00",
				End:     "2025-12-25T11:00:00-03:00",
			},
			{
				ID:       "e2",
				Summary:  "Meeting",
				Location: "Office",
				Start:    "2025-12-26T09:30:00-03:00",
				End:      "2025-12-26T10:00:00-03:00",
			},
		},
	}
	b, transport, _ := newTestBot(backend)

	b.handleMessage(context.Background(), message(1, "/listreminders"))

	require.Len(t, transport.sent, 1)
	text := transport.sent[0].text
	assert.Contains(t, text, "Dentist (Location: not specified)")
	assert.Contains(t, text, "25-12-2025 10:00 to 11:00")
	assert.Contains(t, text, "Meeting (Location: Office)")
	assert.Contains(t, text, "26-12-2025 09:30 to 10:00")
}

func TestListRemindersFetchFailure(t *testing.T) {
	b, transport, _ := newTestBot(&fakeBackend{listErr: assert.AnError})
	b.handleMessage(context.Background(), message(1, "/listreminders"))
	require.Len(t, transport.sent, 1)
	assert.Contains(t, transport.sent[0].text, "try again")
}

func TestUnknownCommand(t *testing.T) {
	b, transport, _ := newTestBot(&fakeBackend{})
	b.handleMessage(context.Background(), message(1, "/frobnicate"))
	require.Len(t, transport.sent, 1)
	assert.Contains(t, transport.sent[0].text, "Unknown command")
}

func TestParseCommand(t *testing.T) {
	assert.Equal(t, "/start", parseCommand("/start"))
	assert.Equal(t, "/start", parseCommand("/Start"))
	assert.Equal(t, "/createreminder", parseCommand("/createreminder@CaliBot"))
	assert.Equal(t, "/listreminders", parseCommand("/listreminders extra words"))
}

func TestConversationsAreIndependentPerChat(t *testing.T) {
	backend := &fakeBackend{createID: "evt-1"}
	b, _, _ := newTestBot(backend)
	ctx := context.Background()

	b.handleMessage(ctx, message(1, "/createreminder"))
	b.handleMessage(ctx, message(2, "/createreminder"))
	b.handleMessage(ctx, message(1, "Chat one title"))

	require.Len(t, b.conversations, 2)
	assert.Equal(t, StateLocation, b.conversations[1].State())
	assert.Equal(t, StateTitle, b.conversations[2].State())
}
