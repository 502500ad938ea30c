package poller

import (
	"fmt"
	"strings"
	"time"

	monitordomain "mailminder-backend/internal/monitor/domain"
)

// PromptData carries the values substituted into a user's prompt template
type PromptData struct {
	SenderName     string
	SenderEmail    string
	Subject        string
	Body           string
	CurrentDate    string
	CalendarEvents string
}

// WantsCalendar reports whether a template references upcoming events, so the
// poller can skip the calendar round-trip when it does not
func WantsCalendar(template string) bool {
	return strings.Contains(template, "{{calendar_events}}")
}

// BuildPrompt substitutes the known placeholders. Unknown placeholders are
// left intact so a typo in the template is visible in the generated reply
// rather than silently swallowed.
func BuildPrompt(template string, data PromptData) string {
	replacer := strings.NewReplacer(
		"{{sender_name}}", data.SenderName,
		"{{sender_email}}", data.SenderEmail,
		"{{subject}}", data.Subject,
		"{{body}}", data.Body,
		"{{current_date}}", data.CurrentDate,
		"{{calendar_events}}", data.CalendarEvents,
	)
	return replacer.Replace(template)
}

// FormatEvents renders upcoming events as a compact list for the prompt
func FormatEvents(events []*monitordomain.CalendarEvent) string {
	if len(events) == 0 {
		return "(no upcoming events)"
	}
	var sb strings.Builder
	for _, ev := range events {
		sb.WriteString(fmt.Sprintf("- %s: %s to %s",
			ev.Title,
			ev.StartTime.Format("Mon Jan 2 15:04"),
			ev.EndTime.Format("15:04")))
		if ev.Location != "" {
			sb.WriteString(" at " + ev.Location)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// currentDate formats now in the user's timezone for the {{current_date}}
// placeholder
func currentDate(now time.Time, loc *time.Location) string {
	return now.In(loc).Format("Monday, January 2, 2006")
}
