// Package calendar creates appointment events through the Google
// Calendar API, authenticated by a one-time OAuth2 token bootstrap.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/bigsmile-dental/denty/domain"
)

// Reminder lead times applied to every booked event.
const (
	emailReminderMinutes = 24 * 60
	popupReminderMinutes = 10
)

// Service is the Google Calendar booking collaborator.
type Service struct {
	oauth     *oauth2.Config
	tokenPath string
}

// NewService builds the collaborator from OAuth client credentials.
// The token produced by the authorization flow is persisted under the
// OS temp dir so restarts pick it up without re-consent.
func NewService(clientID, clientSecret, redirectURI string) *Service {
	return &Service{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{gcal.CalendarScope},
			Endpoint:     google.Endpoint,
		},
		tokenPath: filepath.Join(os.TempDir(), "token.json"),
	}
}

// AuthURL returns the consent URL for the one-time authorization flow.
func (s *Service) AuthURL() string {
	return s.oauth.AuthCodeURL("state", oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token and persists it.
func (s *Service) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if err := s.saveToken(tok); err != nil {
		return nil, err
	}
	if tok.RefreshToken == "" {
		log.Printf("WARN: no refresh token received; re-consent may be required")
	}
	return tok, nil
}

func (s *Service) saveToken(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := os.WriteFile(s.tokenPath, data, 0600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (s *Service) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.tokenPath)
	if err != nil {
		return nil, fmt.Errorf("calendar client is not authenticated: complete the authorization flow first")
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse saved token: %w", err)
	}
	return &tok, nil
}

// CreateEvent inserts the appointment on the primary calendar with the
// patient as attendee and returns the event link. Attendees are
// notified and reminder overrides replace the calendar defaults.
func (s *Service) CreateEvent(ctx context.Context, ev *domain.CalendarEvent) (string, error) {
	tok, err := s.loadToken()
	if err != nil {
		return "", err
	}

	svc, err := gcal.NewService(ctx, option.WithTokenSource(s.oauth.TokenSource(ctx, tok)))
	if err != nil {
		return "", fmt.Errorf("failed to create calendar service: %w", err)
	}

	event := &gcal.Event{
		Summary:     ev.Summary,
		Location:    ev.Location,
		Description: ev.Description,
		Start: &gcal.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: ev.TimeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: ev.TimeZone,
		},
		Attendees: []*gcal.EventAttendee{{Email: ev.Email}},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: emailReminderMinutes},
				{Method: "popup", Minutes: popupReminderMinutes},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := svc.Events.Insert("primary", event).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create calendar event: %w", err)
	}
	return created.HtmlLink, nil
}
