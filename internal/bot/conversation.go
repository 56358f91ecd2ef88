package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CamiFraga/CaliBotUADE/internal/calendar"
)

// Input formats accepted during the creation dialogue.
const (
	dateLayout = "02-01-2006" // DD-MM-YYYY
	timeLayout = "15:04"      // HH:MM, 24-hour
)

// State identifies which answer the conversation is waiting for. The flow
// is strictly linear; a failed validation stays in the same state.
type State int

const (
	StateTitle State = iota
	StateLocation
	StateDescription
	StateDate
	StateStartTime
	StateEndTime
	StateDone
)

// Draft is the in-progress reminder for one conversation. Values are kept
// exactly as the user typed them; date and times are validated before being
// stored. The draft is never persisted and dies with the conversation.
type Draft struct {
	Title       string
	Location    string
	Description string
	Date        string
	StartTime   string
	EndTime     string
}

// step describes one prompt of the dialogue: how to validate the answer,
// where it goes in the draft, which state follows, and what to say next.
type step struct {
	validate   func(string) error
	store      func(*Draft, string)
	next       State
	ack        func(*Draft) string
	invalidMsg string
}

var steps = map[State]step{
	StateTitle: {
		validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("empty title")
			}
			return nil
		},
		store: func(d *Draft, s string) { d.Title = s },
		next:  StateLocation,
		ack: func(d *Draft) string {
			return fmt.Sprintf("📌 *Title saved:* %s\nEnter the location of the reminder (or \"None\" if it does not apply):", d.Title)
		},
		invalidMsg: "❌ The title cannot be empty. Please enter the title of the reminder:",
	},
	StateLocation: {
		store: func(d *Draft, s string) { d.Location = s },
		next:  StateDescription,
		ack: func(d *Draft) string {
			return fmt.Sprintf("📍 *Location saved:* %s\nEnter a short description of the reminder:", d.Location)
		},
	},
	StateDescription: {
		store: func(d *Draft, s string) { d.Description = s },
		next:  StateDate,
		ack: func(d *Draft) string {
			return fmt.Sprintf("📝 *Description saved:* %s\nEnter the date of the reminder in *DD-MM-YYYY* format:", d.Description)
		},
	},
	StateDate: {
		validate: validateDate,
		store:    func(d *Draft, s string) { d.Date = s },
		next:     StateStartTime,
		ack: func(d *Draft) string {
			return fmt.Sprintf("📅 *Date saved:* %s\nEnter the start time in *HH:MM* format:", d.Date)
		},
		invalidMsg: "❌ Invalid date format. Use DD-MM-YYYY.",
	},
	StateStartTime: {
		validate: validateTime,
		store:    func(d *Draft, s string) { d.StartTime = s },
		next:     StateEndTime,
		ack: func(d *Draft) string {
			return fmt.Sprintf("⏰ *Start time saved:* %s\nEnter the end time in *HH:MM* format:", d.StartTime)
		},
		invalidMsg: "❌ Invalid time format. Use HH:MM.",
	},
	StateEndTime: {
		validate:   validateTime,
		store:      func(d *Draft, s string) { d.EndTime = s },
		next:       StateDone,
		invalidMsg: "❌ Invalid time format. Use HH:MM.",
	},
}

func validateDate(s string) error {
	_, err := time.Parse(dateLayout, s)
	return err
}

func validateTime(s string) error {
	_, err := time.Parse(timeLayout, s)
	return err
}

// Conversation drives one user through the reminder-creation dialogue and
// submits the completed draft to the calendar backend.
type Conversation struct {
	state   State
	draft   Draft
	backend calendar.Backend
}

func NewConversation(backend calendar.Backend) *Conversation {
	return &Conversation{
		state:   StateTitle,
		backend: backend,
	}
}

// Start returns the opening prompt of the dialogue.
func (c *Conversation) Start() string {
	return "🔔 Please enter the title of the reminder:"
}

// State returns the current conversation state.
func (c *Conversation) State() State {
	return c.state
}

// Done reports whether the conversation has ended. A done conversation
// accepts no further input.
func (c *Conversation) Done() bool {
	return c.state == StateDone
}

// HandleMessage consumes one user message and returns the single reply the
// user should see. Invalid input re-prompts without changing state; the
// final accepted answer triggers submission to the backend.
func (c *Conversation) HandleMessage(ctx context.Context, text string) string {
	st, ok := steps[c.state]
	if !ok {
		return ""
	}

	if st.validate != nil {
		if err := st.validate(text); err != nil {
			return st.invalidMsg
		}
	}

	st.store(&c.draft, text)
	c.state = st.next

	if c.state == StateDone {
		return c.submit(ctx)
	}
	return st.ack(&c.draft)
}

// submit combines the draft's date and times into local timestamps, issues
// the create-event call and reports the outcome. Either way the
// conversation is over; a failed submission is not retried.
func (c *Conversation) submit(ctx context.Context) string {
	day, err := time.Parse(dateLayout, c.draft.Date)
	if err != nil {
		// Unreachable: the date was validated on entry.
		log.WithError(err).Error("stored draft date failed to parse")
		return creationFailedMsg
	}
	start, _ := time.Parse(timeLayout, c.draft.StartTime)
	end, _ := time.Parse(timeLayout, c.draft.EndTime)

	date := day.Format("2006-01-02")
	id, err := c.backend.CreateEvent(ctx, calendar.CreateEventRequest{
		Title:       c.draft.Title,
		Start:       fmt.Sprintf("%sT%s:00", date, start.Format(timeLayout)),
		End:         fmt.Sprintf("%sT%s:00", date, end.Format(timeLayout)),
		Location:    c.draft.Location,
		Description: c.draft.Description,
	})
	if err != nil || id == "" {
		if err != nil {
			log.WithError(err).Error("create event failed")
		} else {
			log.Error("create event returned an empty ID")
		}
		return creationFailedMsg
	}

	return fmt.Sprintf("✅ Reminder created:\n"+
		"*Title:* %s\n"+
		"*Location:* %s\n"+
		"*Description:* %s\n"+
		"*Date:* %s\n"+
		"*Start time:* %s\n"+
		"*End time:* %s",
		c.draft.Title, c.draft.Location, c.draft.Description,
		c.draft.Date, c.draft.StartTime, c.draft.EndTime)
}

const creationFailedMsg = "❌ Something went wrong while creating the reminder. Please try again."
