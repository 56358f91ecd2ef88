package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/CamiFraga/CaliBotUADE/internal/calendar"
	"github.com/CamiFraga/CaliBotUADE/internal/logging"
)

var log = logging.Component("notifier")

// Sender delivers a notification message to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// RecipientSource reports the chat that should receive notifications, and
// whether one has been recorded yet.
type RecipientSource interface {
	Get() (int64, bool)
}

// Notifier polls the calendar backend on a fixed interval and notifies the
// recorded recipient when an event's start falls inside the lookahead
// window. A failed cycle is logged and the loop waits for the next tick.
type Notifier struct {
	backend   calendar.Backend
	sender    Sender
	recipient RecipientSource
	seen      *SeenStore
	interval  time.Duration
	lookahead time.Duration
	retention time.Duration

	now func() time.Time
}

func New(backend calendar.Backend, sender Sender, recipient RecipientSource, seen *SeenStore, interval, lookahead, retention time.Duration) *Notifier {
	return &Notifier{
		backend:   backend,
		sender:    sender,
		recipient: recipient,
		seen:      seen,
		interval:  interval,
		lookahead: lookahead,
		retention: retention,
		now:       time.Now,
	}
}

// Run blocks and runs a check on interval + immediately on start.
// It exits when ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) error {
	if n.interval <= 0 {
		return fmt.Errorf("notifier interval must be positive, got %s", n.interval)
	}

	log.WithField("interval", n.interval).Info("notifier started")

	// Run immediately on start
	n.tick(ctx)

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("notifier shutting down")
			return nil
		case <-ticker.C:
			n.tick(ctx)
		}
	}
}

func (n *Notifier) tick(ctx context.Context) {
	events, err := n.backend.ListUpcoming(ctx)
	if err != nil {
		log.WithError(err).Error("failed to fetch upcoming events")
		return
	}

	chatID, haveRecipient := n.recipient.Get()
	now := n.now()

	for _, ev := range events {
		if ev.Start == "" {
			log.WithField("event_id", ev.ID).Warn("event has no start instant, skipping")
			continue
		}

		start, err := calendar.ParseEventTime(ev.Start)
		if err != nil {
			log.WithError(err).WithField("event_id", ev.ID).Warn("unparseable event start, skipping")
			continue
		}

		if start.Before(now) || start.After(now.Add(n.lookahead)) {
			continue
		}

		if !haveRecipient {
			log.Warn("no recipient chat recorded, skipping notification")
			continue
		}

		notified, err := n.seen.Notified(ev.ID)
		if err != nil {
			log.WithError(err).WithField("event_id", ev.ID).Error("failed to check notified state")
			continue
		}
		if notified {
			continue
		}

		text := fmt.Sprintf("🔔 Reminder! The event \"%s\" is starting now.", ev.Summary)
		if err := n.sender.SendMessage(ctx, chatID, text); err != nil {
			log.WithError(err).WithField("event_id", ev.ID).Error("failed to send notification")
			continue
		}

		if err := n.seen.Mark(ev.ID, now); err != nil {
			log.WithError(err).WithField("event_id", ev.ID).Error("failed to record notification")
		}
	}

	pruned, err := n.seen.Prune(now.Add(-n.retention))
	if err != nil {
		log.WithError(err).Error("failed to prune notified events")
	} else if pruned > 0 {
		log.WithField("pruned", pruned).Debug("pruned old notified events")
	}
}
