package calendar

import (
	"context"
	"fmt"
	"time"
)

// localTimestampLayout is the zone-less timestamp shape the bot submits and
// the shape some backends return for events created without an offset.
const localTimestampLayout = "2006-01-02T15:04:05"

// Event is the backend's view of a scheduled reminder. Start and End carry
// the backend's raw timestamp strings; use ParseEventTime to resolve them.
type Event struct {
	ID          string
	Summary     string
	Location    string
	Description string
	Start       string
	End         string
}

// CreateEventRequest carries everything needed to create one event. Start
// and End are local timestamps (YYYY-MM-DDTHH:MM:SS) interpreted in the
// backend's configured time zone.
type CreateEventRequest struct {
	Title       string
	Start       string
	End         string
	Location    string
	Description string
}

// Backend is the calendar service the bot talks to.
type Backend interface {
	// CreateEvent creates one event and returns its backend identifier.
	CreateEvent(ctx context.Context, req CreateEventRequest) (string, error)
	// ListUpcoming returns future events, time-ordered, bounded count.
	ListUpcoming(ctx context.Context) ([]Event, error)
}

// ParseEventTime resolves a backend timestamp to an absolute instant.
// Timestamps without an explicit zone offset are taken as UTC.
func ParseEventTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	t, err := time.ParseInLocation(localTimestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized event timestamp %q: %w", s, err)
	}
	return t, nil
}
