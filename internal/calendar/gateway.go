package calendar

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// Event is the provider-independent appointment event.
type Event struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
}

// Gateway is the thin client over the external calendar provider. All
// operations are idempotent from the caller's perspective: deleting an
// event that is already gone is success, not failure.
type Gateway interface {
	CreateEvent(ctx context.Context, calendarID, accessToken string, ev Event) (string, error)
	UpdateEvent(ctx context.Context, calendarID, accessToken, eventID string, ev Event) error
	DeleteEvent(ctx context.Context, calendarID, accessToken, eventID string) error

	// PrimaryCalendarID resolves the owner's primary calendar during the
	// connect flow. Falls back to "primary" when the lookup fails.
	PrimaryCalendarID(ctx context.Context, accessToken string) (string, error)
}

// OAuthConfig builds the provider OAuth2 config used by the token vault
// (refresh_token grant) and the connect flow (consent URL + exchange).
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/calendar"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}
}
