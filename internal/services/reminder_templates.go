package services

import (
	"fmt"
	"strings"

	"eaumembers/internal/models"
)

// subjectForKind maps a reminder kind to its subject line prefix.
var subjectForKind = map[models.ReminderKind]string{
	models.SevenDaysBefore: "Event in 1 Week",
	models.ThreeDaysBefore: "Event in 3 Days",
	models.OneDayBefore:    "Tomorrow",
	models.ThirtyMinBefore: "Starting Soon",
	models.EventLive:       "Live Now",
}

var leadLineForKind = map[models.ReminderKind]string{
	models.SevenDaysBefore: "is coming up in exactly one week",
	models.ThreeDaysBefore: "is happening in 3 days",
	models.OneDayBefore:    "is happening tomorrow",
	models.ThirtyMinBefore: "starts in just 30 minutes",
	models.EventLive:       "is starting right now",
}

// RenderReminderEmail builds the subject and body for a reminder kind.
// recipientName falls back to the local part of the email address when the
// registration carried no name.
func RenderReminderEmail(kind models.ReminderKind, event *models.Event, recipientEmail, recipientName, portalURL string) Email {
	if recipientName == "" {
		recipientName = recipientEmail
		if at := strings.Index(recipientEmail, "@"); at > 0 {
			recipientName = recipientEmail[:at]
		}
	}

	subjectPrefix, ok := subjectForKind[kind]
	if !ok {
		subjectPrefix = "Reminder"
	}
	subject := fmt.Sprintf("%s: %s", subjectPrefix, event.Title)

	lead, ok := leadLineForKind[kind]
	if !ok {
		lead = "is coming up"
	}

	eventDate := event.StartAt.Format("Monday, January 2, 2006")
	eventTime := event.StartAt.Format("3:04 PM")
	eventLink := fmt.Sprintf("%s/events/%s", strings.TrimRight(portalURL, "/"), event.Slug)

	plainContent := fmt.Sprintf("Hello %s, %s %s. Date: %s, Time: %s, Location: %s. Details: %s",
		recipientName, event.Title, lead, eventDate, eventTime, event.Location(), eventLink)

	htmlContent := fmt.Sprintf("<p>Hello %s,</p><p><strong>%s</strong> %s.</p><ul><li><strong>Date:</strong> %s</li><li><strong>Time:</strong> %s</li><li><strong>Location:</strong> %s</li></ul><p><a href=\"%s\">View Event Details</a></p>",
		recipientName, event.Title, lead, eventDate, eventTime, event.Location(), eventLink)

	if event.LocationType == models.VirtualLocation && event.VirtualLink != "" {
		htmlContent += fmt.Sprintf("<p><a href=\"%s\">Join Online</a></p>", event.VirtualLink)
		plainContent += fmt.Sprintf(" Join online: %s", event.VirtualLink)
	}

	return Email{
		To:        recipientEmail,
		ToName:    recipientName,
		Subject:   subject,
		HTML:      htmlContent,
		PlainText: plainContent,
	}
}
