package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/CamiFraga/CaliBotUADE/internal/config"
)

// Google is the Backend implementation on top of the Google Calendar API.
type Google struct {
	svc        *gcal.Service
	calendarID string
	timeZone   string
	maxResults int64
}

// NewGoogle builds a Google Calendar backend using the OAuth installed-app
// flow. A cached token is read from cfg.TokenFile; when missing or invalid
// the user is walked through the consent URL on stdin and the new token is
// written back.
func NewGoogle(ctx context.Context, cfg config.CalendarConfig) (*Google, error) {
	secrets, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(secrets, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secrets: %w", err)
	}

	tok, err := tokenFromFile(cfg.TokenFile)
	if err != nil {
		tok, err = tokenFromWeb(ctx, oauthCfg)
		if err != nil {
			return nil, err
		}
		if err := saveToken(cfg.TokenFile, tok); err != nil {
			return nil, err
		}
	}

	svc, err := gcal.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Google{
		svc:        svc,
		calendarID: cfg.CalendarID,
		timeZone:   cfg.TimeZone,
		maxResults: cfg.MaxResults,
	}, nil
}

// CreateEvent inserts one event into the configured calendar and returns
// the assigned event ID.
func (g *Google) CreateEvent(ctx context.Context, req CreateEventRequest) (string, error) {
	ev := &gcal.Event{
		Summary: req.Title,
		Start: &gcal.EventDateTime{
			DateTime: req.Start,
			TimeZone: g.timeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: req.End,
			TimeZone: g.timeZone,
		},
	}
	if req.Location != "" {
		ev.Location = req.Location
	}
	if req.Description != "" {
		ev.Description = req.Description
	}

	created, err := g.svc.Events.Insert(g.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to insert event: %w", err)
	}
	return created.Id, nil
}

// ListUpcoming returns the next events, future-only and start-ordered.
// All-day events carry no start datetime and come back with an empty Start.
func (g *Google) ListUpcoming(ctx context.Context) ([]Event, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	res, err := g.svc.Events.List(g.calendarID).
		TimeMin(now).
		MaxResults(g.maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]Event, 0, len(res.Items))
	for _, item := range res.Items {
		ev := Event{
			ID:          item.Id,
			Summary:     item.Summary,
			Location:    item.Location,
			Description: item.Description,
		}
		if item.Start != nil {
			ev.Start = item.Start.DateTime
		}
		if item.End != nil {
			ev.End = item.End.DateTime
		}
		events = append(events, ev)
	}
	return events, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	return tok, nil
}

func tokenFromWeb(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open the following link in your browser, then paste the authorization code:\n%v\n", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, fmt.Errorf("failed to read authorization code: %w", err)
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
