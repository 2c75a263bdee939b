// Package ics builds iCalendar invite blobs for registration emails.
package ics

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// calDateFormat renders an instant as YYYYMMDDTHHMMSSZ (always UTC), the
// compact absolute form used in DTSTAMP/DTSTART/DTEND fields.
const calDateFormat = "20060102T150405Z"

// ErrInvalidStart is returned when the event start instant is missing.
var ErrInvalidStart = errors.New("ics: start must be a valid instant")

// Event describes one calendar event to render. End is optional; a zero End
// omits the DTEND field. An empty UID gets a generated one.
type Event struct {
	UID         string
	Start       time.Time
	End         time.Time
	Summary     string
	Description string
	Location    string
}

// Generate renders the event as a VCALENDAR text blob. The output is
// CRLF-joined and carries exactly one UID, one DTSTAMP, and one DTSTART.
// Pure apart from reading the clock for DTSTAMP and generating a UID when
// none is supplied.
func Generate(ev Event) (string, error) {
	if ev.Start.IsZero() {
		return "", ErrInvalidStart
	}
	uid := ev.UID
	if uid == "" {
		uid = fmt.Sprintf("rsvp-%s@eventrsvp", uuid.NewString())
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//eventrsvp//RSVP//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:REQUEST",
		"BEGIN:VEVENT",
		"UID:" + uid,
		"DTSTAMP:" + time.Now().UTC().Format(calDateFormat),
		"DTSTART:" + ev.Start.UTC().Format(calDateFormat),
	}
	if !ev.End.IsZero() {
		lines = append(lines, "DTEND:"+ev.End.UTC().Format(calDateFormat))
	}
	lines = append(lines,
		"SUMMARY:"+ev.Summary,
		"DESCRIPTION:"+ev.Description,
		"LOCATION:"+ev.Location,
		"END:VEVENT",
		"END:VCALENDAR",
	)
	return strings.Join(lines, "\r\n"), nil
}

// EncodeBase64 converts an invite blob into its transport-safe form for
// inclusion in a JSON response.
func EncodeBase64(blob string) string {
	return base64.StdEncoding.EncodeToString([]byte(blob))
}
