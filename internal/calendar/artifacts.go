// Package calendar builds viewing-appointment artifacts (ICS files,
// prefilled Google/Outlook links) and talks to Calendly for invites.
package calendar

import (
	"fmt"
	"net/url"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/vilahaus/concierge/internal/domain"
)

const viewingDuration = 45 * time.Minute

// appointmentTime parses the requested date and time; a missing time
// defaults to 10:00, a missing date to the next day.
func appointmentTime(data domain.ScheduleData) (time.Time, error) {
	date := data.Date
	if date == "" {
		date = time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	}
	clock := data.Time
	if clock == "" {
		clock = "10:00"
	}
	start, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule date/time: %w", err)
	}
	return start, nil
}

func summary(data domain.ScheduleData) string {
	return fmt.Sprintf("Property viewing: unit %s with %s", data.FlatID, data.Name)
}

func description(data domain.ScheduleData) string {
	desc := fmt.Sprintf("Viewing of unit %s for %s", data.FlatID, data.Name)
	if data.Notes != "" {
		desc += "\n" + data.Notes
	}
	return desc
}

// BuildICS renders a text/calendar invite for the requested viewing.
// The output carries the visitor name and unit id literally so mail
// clients show them without parsing the description.
func BuildICS(data domain.ScheduleData) (string, error) {
	start, err := appointmentTime(data)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)
	cal.SetProductId("-//Vilahaus//Concierge//EN")

	event := cal.AddEvent(uuid.New().String())
	event.SetCreatedTime(time.Now())
	event.SetDtStampTime(time.Now())
	event.SetStartAt(start)
	event.SetEndAt(start.Add(viewingDuration))
	event.SetSummary(summary(data))
	event.SetDescription(description(data))
	if data.Email != "" {
		event.AddAttendee(data.Email)
	}

	return cal.Serialize(), nil
}

// GoogleCalendarURL returns a prefilled Google Calendar event link.
func GoogleCalendarURL(data domain.ScheduleData) (string, error) {
	start, err := appointmentTime(data)
	if err != nil {
		return "", err
	}
	end := start.Add(viewingDuration)

	params := url.Values{}
	params.Set("action", "TEMPLATE")
	params.Set("text", summary(data))
	params.Set("details", description(data))
	params.Set("dates", start.UTC().Format("20060102T150405Z")+"/"+end.UTC().Format("20060102T150405Z"))

	return "https://calendar.google.com/calendar/render?" + params.Encode(), nil
}

// OutlookCalendarURL returns a prefilled Outlook web event link.
func OutlookCalendarURL(data domain.ScheduleData) (string, error) {
	start, err := appointmentTime(data)
	if err != nil {
		return "", err
	}
	end := start.Add(viewingDuration)

	params := url.Values{}
	params.Set("path", "/calendar/action/compose")
	params.Set("rru", "addevent")
	params.Set("subject", summary(data))
	params.Set("body", description(data))
	params.Set("startdt", start.Format(time.RFC3339))
	params.Set("enddt", end.Format(time.RFC3339))

	return "https://outlook.live.com/calendar/0/deeplink/compose?" + params.Encode(), nil
}
