// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"time"
)

// ContactEmailData holds data for the contact notification.
type ContactEmailData struct {
	SiteName   string
	Name       string
	Email      string
	Message    string
	IP         string
	UserAgent  string
	ReceivedAt time.Time
}

// BuildContactEmail creates the notification for a stored submission.
// Replies go straight to the submitter.
func BuildContactEmail(data ContactEmailData) Email {
	site := data.SiteName
	if site == "" {
		site = "site"
	}
	return Email{
		To:       "", // Set by sender
		ReplyTo:  data.Email,
		Subject:  fmt.Sprintf("New %s contact from %s", site, data.Name),
		TextBody: buildContactText(data),
	}
}

func buildContactText(data ContactEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Name: %s\n", data.Name))
	buf.WriteString(fmt.Sprintf("Email: %s\n", data.Email))
	buf.WriteString(fmt.Sprintf("Received: %s\n", data.ReceivedAt.UTC().Format(time.RFC3339)))
	if data.IP != "" {
		buf.WriteString(fmt.Sprintf("IP: %s\n", data.IP))
	}
	if data.UserAgent != "" {
		buf.WriteString(fmt.Sprintf("User-Agent: %s\n", data.UserAgent))
	}
	buf.WriteString("\n")
	buf.WriteString(data.Message)
	buf.WriteString("\n")
	return buf.String()
}
