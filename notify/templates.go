package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

const MatchScheduledSubject = "Match Scheduled - Scrabble League"

type MatchScheduledDetails struct {
	PlayerName    string
	OpponentName  string
	ScheduledDate time.Time
	FixturesURL   string
}

type MatchScheduledMessage struct {
	Subject  string
	HTMLBody string
	TextBody string
	SMSBody  string
}

var matchScheduledHTML = template.Must(template.New("match_scheduled").Parse(`<h2>Match Scheduled!</h2>
<p>Hi {{.PlayerName}},</p>
<p>Your Scrabble match has been scheduled:</p>
<ul>
  <li>Opponent: {{.OpponentName}}</li>
  <li>Date &amp; time: <strong>{{.Date}}</strong></li>
</ul>
{{if .FixturesURL}}<p><a href="{{.FixturesURL}}">View your fixture</a></p>{{end}}
<p>If you did not expect this email, you can ignore it.</p>
`))

// FormatMatchDate renders a match time the way every channel shows it.
func FormatMatchDate(t time.Time) string {
	return t.UTC().Format("Monday, Jan 2, 2006 at 3:04 PM MST")
}

func BuildMatchScheduled(details MatchScheduledDetails) (MatchScheduledMessage, error) {
	date := FormatMatchDate(details.ScheduledDate)

	var html bytes.Buffer
	err := matchScheduledHTML.Execute(&html, struct {
		MatchScheduledDetails
		Date string
	}{details, date})
	if err != nil {
		return MatchScheduledMessage{}, fmt.Errorf("render match scheduled email: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\n", details.PlayerName)
	fmt.Fprintf(&text, "Your Scrabble match against %s is scheduled for %s.\n", details.OpponentName, date)
	if details.FixturesURL != "" {
		fmt.Fprintf(&text, "\nView your fixture: %s\n", details.FixturesURL)
	}

	return MatchScheduledMessage{
		Subject:  MatchScheduledSubject,
		HTMLBody: html.String(),
		TextBody: text.String(),
		SMSBody:  fmt.Sprintf("You have a Scrabble match scheduled for %s. Good luck!", date),
	}, nil
}
