package bot

import (
	"fmt"
	"strings"

	"github.com/CamiFraga/CaliBotUADE/internal/calendar"
)

// formatUpcoming renders the /listreminders reply: one entry per event with
// summary, location and time range, or an apology when there is nothing.
func formatUpcoming(name string, events []calendar.Event) string {
	if len(events) == 0 {
		return "You have no upcoming reminders. 😔"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s, your upcoming reminders are:\n", name)
	for _, ev := range events {
		location := ev.Location
		if location == "" {
			location = "not specified"
		}
		fmt.Fprintf(&sb, "- %s (Location: %s)\n", ev.Summary, location)
		fmt.Fprintf(&sb, "  %s to %s\n", formatEventTime(ev.Start, "02-01-2006 15:04"), formatEventTime(ev.End, "15:04"))
	}
	return sb.String()
}

// formatEventTime renders a backend timestamp with the given layout,
// falling back to the raw string when it does not parse.
func formatEventTime(raw, layout string) string {
	t, err := calendar.ParseEventTime(raw)
	if err != nil {
		return raw
	}
	return t.Format(layout)
}
