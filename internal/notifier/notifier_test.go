package notifier

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CamiFraga/CaliBotUADE/internal/calendar"
)

type fakeBackend struct {
	events []calendar.Event
	err    error
}

func (f *fakeBackend) CreateEvent(_ context.Context, _ calendar.CreateEventRequest) (string, error) {
	return "", nil
}

func (f *fakeBackend) ListUpcoming(_ context.Context) ([]calendar.Event, error) {
	return f.events, f.err
}

type fakeSender struct {
	sent []string
	to   []int64
	err  error
}

func (f *fakeSender) SendMessage(_ context.Context, chatID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	f.to = append(f.to, chatID)
	return nil
}

type fakeRecipient struct {
	id int64
	ok bool
}

func (f *fakeRecipient) Get() (int64, bool) { return f.id, f.ok }

var testNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestNotifier(t *testing.T, backend *fakeBackend, sender *fakeSender, recipient RecipientSource) *Notifier {
	t.Helper()

	seen, err := OpenSeenStore(filepath.Join(t.TempDir(), "seen.db"))
	require.NoError(t, err)
	t.Cleanup(func() { seen.Close() })

	n := New(backend, sender, recipient, seen, time.Minute, time.Minute, 24*time.Hour)
	n.now = func() time.Time { return testNow }
	return n
}

func eventStartingIn(d time.Duration) calendar.Event {
	return calendar.Event{
		ID:      "evt-1",
		Summary: "Dentist",
		Start:   testNow.Add(d).Format(time.RFC3339),
	}
}

func TestNotifiesEventInsideWindow(t *testing.T) {
	backend := &fakeBackend{events: []calendar.Event{eventStartingIn(30 * time.Second)}}
	sender := &fakeSender{}
	n := newTestNotifier(t, backend, sender, &fakeRecipient{id: 42, ok: true})

	n.tick(context.Background())

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Dentist")
	assert.Equal(t, int64(42), sender.to[0])
}

func TestSkipsEventOutsideWindow(t *testing.T) {
	backend := &fakeBackend{events: []calendar.Event{
		eventStartingIn(5 * time.Minute),
		eventStartingIn(-30 * time.Second),
	}}
	sender := &fakeSender{}
	n := newTestNotifier(t, backend, sender, &fakeRecipient{id: 42, ok: true})

	n.tick(context.Background())

	assert.Empty(t, sender.sent)
}

func TestWindowBoundariesAreInclusive(t *testing.T) {
	backend := &fakeBackend{events: []calendar.Event{
		{ID: "at-now", Summary: "now", Start: testNow.Format(time.RFC3339)},
		{ID: "at-edge", Summary: "edge", Start: testNow.Add(time.Minute).Format(time.RFC3339)},
	}}
	sender := &fakeSender{}
	n := newTestNotifier(t, backend, sender, &fakeRecipient{id: 42, ok: true})

	n.tick(context.Background())

	assert.Len(t, sender.sent, 2)
}

func TestStartWithoutOffsetIsUTC(t *testing.T) {
	backend := &fakeBackend{events: []calendar.Event{{
		ID:      "naive",
		Summary: "Dentist",
		Start:   testNow.Add(30 * time.Second).Format("2006-01-02T15:04:05"),
	}}}
	sender := &fakeSender{}
	n := newTestNotifier(t, backend, sender, &fakeRecipient{id: 42, ok: true})

	n.tick(context.Background())

	assert.Len(t, sender.sent, 1)
}

func TestMissingRecipientSkipsQuietly(t *testing.T) {
	backend := &fakeBackend{events: []calendar.Event{eventStartingIn(30 * time.Second)}}
	sender := &fakeSender{}
	n := newTestNotifier(t, backend, sender, &fakeRecipient{ok: false})

	n.tick(context.Background())

	assert.Empty(t, sender.sent)
}

func TestEventWithoutStartIsSkipped(t *testing.T) {
	backend := &fakeBackend{events: []calendar.Event{
		{ID: "all-day", Summary: "No start"},
		eventStartingIn(30 * time.Second),
	}}
	sender := &fakeSender{}
	n := newTestNotifier(t, backend, sender, &fakeRecipient{id: 42, ok: true})

	n.tick(context.Background())

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Dentist")
}

func TestFetchErrorDoesNotNotify(t *testing.T) {
	backend := &fakeBackend{err: assert.AnError}
	sender := &fakeSender{}
	n := newTestNotifier(t, backend, sender, &fakeRecipient{id: 42, ok: true})

	n.tick(context.Background())

	assert.Empty(t, sender.sent)
}

func TestBorderlineEventIsNotifiedOnce(t *testing.T) {
	// The event stays inside the lookahead window for two adjacent cycles;
	// the seen store must suppress the second notification.
	backend := &fakeBackend{events: []calendar.Event{eventStartingIn(45 * time.Second)}}
	sender := &fakeSender{}
	n := newTestNotifier(t, backend, sender, &fakeRecipient{id: 42, ok: true})

	n.tick(context.Background())
	n.tick(context.Background())

	assert.Len(t, sender.sent, 1)
}

func TestSendFailureAllowsRetryNextCycle(t *testing.T) {
	backend := &fakeBackend{events: []calendar.Event{eventStartingIn(30 * time.Second)}}
	sender := &fakeSender{err: assert.AnError}
	n := newTestNotifier(t, backend, sender, &fakeRecipient{id: 42, ok: true})

	n.tick(context.Background())
	require.Empty(t, sender.sent)

	// Delivery failed, so the event was not marked and fires next cycle.
	sender.err = nil
	n.tick(context.Background())
	assert.Len(t, sender.sent, 1)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	backend := &fakeBackend{}
	sender := &fakeSender{}
	n := newTestNotifier(t, backend, sender, &fakeRecipient{ok: false})
	n.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("notifier did not stop on context cancel")
	}
}

func TestRunRejectsNonPositiveInterval(t *testing.T) {
	backend := &fakeBackend{}
	sender := &fakeSender{}
	n := newTestNotifier(t, backend, sender, &fakeRecipient{ok: false})
	n.interval = 0

	err := n.Run(context.Background())
	assert.Error(t, err)
}
