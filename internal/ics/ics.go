package ics

import (
	"strings"
	"time"

	"carslink-backend/internal/model"
)

const stampLayout = "20060102T150405Z"

// Event holds the fields exported into a single VEVENT.
type Event struct {
	UID         string
	Start       time.Time
	End         time.Time
	Summary     string
	Description string
	Location    string
	Status      string
}

// FromAppointment builds the calendar event for an appointment.
func FromAppointment(a *model.Appointment) Event {
	status := "TENTATIVE"
	switch a.Status {
	case model.AppointmentConfirmed, model.AppointmentInProgress, model.AppointmentCompleted:
		status = "CONFIRMED"
	case model.AppointmentCancelled:
		status = "CANCELLED"
	}

	location := a.Garage.Name
	if a.Garage.Address != "" {
		location += ", " + a.Garage.Address
	}

	return Event{
		UID:         a.ID + "@carslink",
		Start:       a.StartTime,
		End:         a.EndTime,
		Summary:     a.ServiceType + " - " + a.Garage.Name,
		Description: a.Notes,
		Location:    location,
		Status:      status,
	}
}

// Render produces an RFC 5545 calendar blob with one VEVENT. Lines end in
// CRLF and text values have commas, semicolons and newlines escaped.
func Render(ev Event, now time.Time) string {
	var b strings.Builder
	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\r\n")
	}

	writeLine("BEGIN:VCALENDAR")
	writeLine("VERSION:2.0")
	writeLine("PRODID:-//CarsLink//Appointments//FR")
	writeLine("BEGIN:VEVENT")
	writeLine("UID:" + ev.UID)
	writeLine("DTSTAMP:" + now.UTC().Format(stampLayout))
	writeLine("DTSTART:" + ev.Start.UTC().Format(stampLayout))
	writeLine("DTEND:" + ev.End.UTC().Format(stampLayout))
	writeLine("SUMMARY:" + escapeText(ev.Summary))
	if ev.Description != "" {
		writeLine("DESCRIPTION:" + escapeText(ev.Description))
	}
	if ev.Location != "" {
		writeLine("LOCATION:" + escapeText(ev.Location))
	}
	if ev.Status != "" {
		writeLine("STATUS:" + ev.Status)
	}
	writeLine("END:VEVENT")
	writeLine("END:VCALENDAR")

	return b.String()
}

// escapeText applies the TEXT escaping rules from RFC 5545 §3.3.11.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	return strings.ReplaceAll(s, "\n", "\\n")
}
