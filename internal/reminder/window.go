package reminder

import (
	"strings"
	"time"

	"github.com/babar14jan/doctorpod/internal/booking"
)

const (
	appointmentLayout  = "2006-01-02 15:04"
	defaultBookingTime = "09:00"

	// The reminder is due when the appointment is roughly four hours
	// out: strictly more than 3h50m away and at most 4h10m away.
	dueWindowLower = 3*time.Hour + 50*time.Minute
	dueWindowUpper = 4*time.Hour + 10*time.Minute
)

// Window decides whether a booking's appointment falls inside the
// reminder window relative to a supplied clock reading. The zero value
// parses appointments in the clock's own location.
type Window struct {
	loc *time.Location
}

// NewWindow returns a window that parses appointment timestamps in loc.
// A nil loc means the location of the "now" argument passed to Contains.
func NewWindow(loc *time.Location) Window {
	return Window{loc: loc}
}

// Contains reports whether the booking is due for a reminder at now.
// Malformed or missing scheduling fields make the booking ineligible;
// they never produce an error. A missing time-of-day defaults to 09:00.
func (w Window) Contains(b booking.Booking, now time.Time) bool {
	date := strings.TrimSpace(b.Date)
	if date == "" {
		return false
	}
	tod := strings.TrimSpace(b.Time)
	if tod == "" {
		tod = defaultBookingTime
	}

	loc := w.loc
	if loc == nil {
		loc = now.Location()
	}
	appt, err := time.ParseInLocation(appointmentLayout, date+" "+tod, loc)
	if err != nil {
		return false
	}

	delta := appt.Sub(now)
	return delta > dueWindowLower && delta <= dueWindowUpper
}
