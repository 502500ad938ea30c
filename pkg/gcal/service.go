package gcal

import (
	"context"
	"fmt"
	"time"

	monitordomain "mailminder-backend/internal/monitor/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Service implements the CalendarProvider contract against the Google
// Calendar API, sharing the account's Gmail OAuth tokens
type Service struct {
	clientID     string
	clientSecret string
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback monitordomain.TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			fmt.Printf("Failed to update token: %v\n", err)
		}
	}
	return t, nil
}

func NewService(clientID, clientSecret string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

func (s *Service) getCalendarService(ctx context.Context, creds monitordomain.MailCredentials, onTokenRefresh monitordomain.TokenUpdateFunc) (*calendar.Service, error) {
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
	}
	if creds.RefreshToken != "" {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	wrappedSource := &notifyTokenSource{
		src:      config.TokenSource(ctx, token),
		current:  token,
		callback: onTokenRefresh,
	}

	client := oauth2.NewClient(ctx, wrappedSource)

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %v", err)
	}
	return srv, nil
}

// ListUpcoming returns events starting within the next daysAhead days
func (s *Service) ListUpcoming(ctx context.Context, creds monitordomain.MailCredentials, calendarID string, daysAhead int, onTokenRefresh monitordomain.TokenUpdateFunc) ([]*monitordomain.CalendarEvent, error) {
	srv, err := s.getCalendarService(ctx, creds, onTokenRefresh)
	if err != nil {
		return nil, err
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	now := time.Now()
	resp, err := srv.Events.List(calendarID).
		TimeMin(now.Format(time.RFC3339)).
		TimeMax(now.AddDate(0, 0, daysAhead).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(50).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events: %v", err)
	}

	events := make([]*monitordomain.CalendarEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, &monitordomain.CalendarEvent{
			Title:       item.Summary,
			Description: item.Description,
			Location:    item.Location,
			StartTime:   parseEventTime(item.Start),
			EndTime:     parseEventTime(item.End),
		})
	}
	return events, nil
}

// CreateEvent inserts a new event into the account's calendar
func (s *Service) CreateEvent(ctx context.Context, creds monitordomain.MailCredentials, calendarID string, event *monitordomain.CalendarEvent, onTokenRefresh monitordomain.TokenUpdateFunc) error {
	srv, err := s.getCalendarService(ctx, creds, onTokenRefresh)
	if err != nil {
		return err
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	entry := &calendar.Event{
		Summary:     event.Title,
		Description: event.Description,
		Location:    event.Location,
		Start:       &calendar.EventDateTime{DateTime: event.StartTime.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: event.EndTime.Format(time.RFC3339)},
	}

	if _, err := srv.Events.Insert(calendarID, entry).Do(); err != nil {
		return fmt.Errorf("unable to create event: %v", err)
	}
	return nil
}

// parseEventTime handles both timed and all-day events
func parseEventTime(t *calendar.EventDateTime) time.Time {
	if t == nil {
		return time.Time{}
	}
	if t.DateTime != "" {
		if parsed, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return parsed
		}
	}
	if t.Date != "" {
		if parsed, err := time.Parse("2006-01-02", t.Date); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
