package bot

import (
	"context"
	"strings"
	"time"

	"github.com/CamiFraga/CaliBotUADE/internal/calendar"
	"github.com/CamiFraga/CaliBotUADE/internal/logging"
	"github.com/CamiFraga/CaliBotUADE/internal/telegram"
)

var log = logging.Component("bot")

// Transport is the part of the Telegram client the bot needs.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]telegram.Update, error)
}

// Bot dispatches incoming Telegram messages to commands and to the active
// reminder-creation conversation of each chat. Run drives everything from
// a single goroutine, so the conversation map needs no locking.
type Bot struct {
	transport     Transport
	backend       calendar.Backend
	recipient     *Recipient
	pollTimeout   int
	conversations map[int64]*Conversation
	offset        int64
}

func New(transport Transport, backend calendar.Backend, recipient *Recipient, pollTimeout int) *Bot {
	return &Bot{
		transport:     transport,
		backend:       backend,
		recipient:     recipient,
		pollTimeout:   pollTimeout,
		conversations: make(map[int64]*Conversation),
	}
}

// Run long-polls for updates until ctx is cancelled. A failed poll is
// logged and retried after a short pause; it never stops the loop.
func (b *Bot) Run(ctx context.Context) error {
	log.Info("bot started")

	for {
		select {
		case <-ctx.Done():
			log.Info("bot shutting down")
			return nil
		default:
		}

		updates, err := b.transport.GetUpdates(ctx, b.offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("bot shutting down")
				return nil
			}
			log.WithError(err).Error("failed to fetch updates")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			b.offset = u.UpdateID + 1
			if u.Message == nil || u.Message.Chat == nil || u.Message.Text == "" {
				continue
			}
			b.handleMessage(ctx, u.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "/") {
		b.handleCommand(ctx, chatID, msg, parseCommand(text))
		return
	}

	conv, ok := b.conversations[chatID]
	if !ok {
		b.reply(ctx, chatID, "I didn't catch that. Use /createreminder to add a reminder or /listreminders to see your upcoming events.")
		return
	}

	reply := conv.HandleMessage(ctx, text)
	if conv.Done() {
		delete(b.conversations, chatID)
	}
	b.reply(ctx, chatID, reply)
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, msg *telegram.Message, cmd string) {
	switch cmd {
	case "/start":
		b.recipient.Set(chatID)
		log.WithField("chat_id", chatID).Info("recipient chat recorded")
		b.reply(ctx, chatID, "Welcome, "+firstName(msg)+"! 👋\n"+
			"Use /createreminder to add a new reminder or /listreminders to see your upcoming events.")

	case "/createreminder":
		conv := NewConversation(b.backend)
		b.conversations[chatID] = conv
		b.reply(ctx, chatID, conv.Start())

	case "/cancel":
		if _, ok := b.conversations[chatID]; ok {
			delete(b.conversations, chatID)
			b.reply(ctx, chatID, "Operation cancelled. If you need anything else, use the available commands.")
		} else {
			b.reply(ctx, chatID, "There is nothing to cancel.")
		}

	case "/listreminders":
		// A command always ends any in-flight creation dialogue.
		delete(b.conversations, chatID)
		b.listReminders(ctx, chatID, firstName(msg))

	default:
		b.reply(ctx, chatID, "Unknown command. Use /createreminder, /listreminders or /cancel.")
	}
}

func (b *Bot) listReminders(ctx context.Context, chatID int64, name string) {
	events, err := b.backend.ListUpcoming(ctx)
	if err != nil {
		log.WithError(err).Error("failed to list upcoming events")
		b.reply(ctx, chatID, "❌ Could not fetch your reminders. Please try again later.")
		return
	}
	b.reply(ctx, chatID, formatUpcoming(name, events))
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.transport.SendMessage(ctx, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("failed to send message")
	}
}

// parseCommand lowercases a command and strips an @botname mention.
func parseCommand(text string) string {
	cmd := strings.Fields(text)[0]
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd)
}

func firstName(msg *telegram.Message) string {
	if msg.From != nil && msg.From.FirstName != "" {
		return msg.From.FirstName
	}
	return "there"
}
