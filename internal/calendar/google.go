package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const googleCalendarBase = "https://www.googleapis.com/calendar/v3"

// GoogleGateway speaks the Google Calendar v3 events API directly.
type GoogleGateway struct {
	http     *http.Client
	baseURL  string
	timeZone string
}

func NewGoogleGateway(timeZone string) *GoogleGateway {
	return &GoogleGateway{
		http:     &http.Client{Timeout: 10 * time.Second},
		baseURL:  googleCalendarBase,
		timeZone: timeZone,
	}
}

// ------------------------------
// Wire types
// ------------------------------

type gEventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type gReminderOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

type gReminders struct {
	UseDefault bool                `json:"useDefault"`
	Overrides  []gReminderOverride `json:"overrides,omitempty"`
}

type gEvent struct {
	ID          string      `json:"id,omitempty"`
	Summary     string      `json:"summary,omitempty"`
	Description string      `json:"description,omitempty"`
	Start       *gEventTime `json:"start,omitempty"`
	End         *gEventTime `json:"end,omitempty"`
	Reminders   *gReminders `json:"reminders,omitempty"`
}

func (g *GoogleGateway) eventBody(ev Event, withReminders bool) gEvent {
	body := gEvent{
		Summary:     ev.Title,
		Description: ev.Description,
		Start:       &gEventTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: g.timeZone},
		End:         &gEventTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: g.timeZone},
	}
	if withReminders {
		body.Reminders = &gReminders{
			Overrides: []gReminderOverride{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 60},
			},
		}
	}
	return body
}

// ------------------------------
// Operations
// ------------------------------

func (g *GoogleGateway) CreateEvent(ctx context.Context, calendarID, accessToken string, ev Event) (string, error) {
	endpoint := fmt.Sprintf("%s/calendars/%s/events", g.baseURL, url.PathEscape(calendarID))

	var created gEvent
	if err := g.do(ctx, http.MethodPost, "create_event", endpoint, accessToken, g.eventBody(ev, true), &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (g *GoogleGateway) UpdateEvent(ctx context.Context, calendarID, accessToken, eventID string, ev Event) error {
	endpoint := fmt.Sprintf(
		"%s/calendars/%s/events/%s",
		g.baseURL, url.PathEscape(calendarID), url.PathEscape(eventID),
	)

	return g.do(ctx, http.MethodPatch, "update_event", endpoint, accessToken, g.eventBody(ev, false), nil)
}

func (g *GoogleGateway) DeleteEvent(ctx context.Context, calendarID, accessToken, eventID string) error {
	endpoint := fmt.Sprintf(
		"%s/calendars/%s/events/%s",
		g.baseURL, url.PathEscape(calendarID), url.PathEscape(eventID),
	)

	err := g.do(ctx, http.MethodDelete, "delete_event", endpoint, accessToken, nil, nil)

	// the desired end state (no event) is already achieved
	var ce *Error
	if errors.As(err, &ce) && (ce.Status == http.StatusNotFound || ce.Status == http.StatusGone) {
		return nil
	}
	return err
}

type gCalendarList struct {
	Items []struct {
		ID      string `json:"id"`
		Primary bool   `json:"primary"`
	} `json:"items"`
}

func (g *GoogleGateway) PrimaryCalendarID(ctx context.Context, accessToken string) (string, error) {
	endpoint := g.baseURL + "/users/me/calendarList"

	var list gCalendarList
	if err := g.do(ctx, http.MethodGet, "calendar_list", endpoint, accessToken, nil, &list); err != nil {
		return "primary", err
	}
	for _, item := range list.Items {
		if item.Primary {
			return item.ID, nil
		}
	}
	return "primary", nil
}

// ------------------------------
// Transport
// ------------------------------

func (g *GoogleGateway) do(ctx context.Context, method, op, endpoint, accessToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return &Error{Op: op, Kind: KindPermanent, Err: err}
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return &Error{Op: op, Kind: KindPermanent, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return &Error{Op: op, Kind: KindTransient, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return &Error{Op: op, Kind: KindPermanent, Err: err}
			}
		}
		return nil
	}

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	cause := fmt.Errorf("%s", bytes.TrimSpace(payload))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &Error{Op: op, Status: resp.StatusCode, Kind: KindAuth, Err: cause}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &Error{Op: op, Status: resp.StatusCode, Kind: KindTransient, Err: cause}
	default:
		return &Error{Op: op, Status: resp.StatusCode, Kind: KindPermanent, Err: cause}
	}
}

// Compile-time check
var _ Gateway = (*GoogleGateway)(nil)
