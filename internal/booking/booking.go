package booking

import "context"

// Booking is a single appointment row as stored by the clinic booking
// system. All fields are optional free text except Date; the reminder
// pipeline substitutes defaults rather than rejecting sparse rows.
type Booking struct {
	PatientName   string
	PatientMobile string
	Date          string // YYYY-MM-DD
	Time          string // HH:MM, empty means 09:00
	DoctorName    string
	ClinicName    string
}

// Source yields the full booking snapshot for a reminder pass.
// Implementations must return a finite slice; the pipeline preserves
// its order and never mutates the rows.
type Source interface {
	ListAll(ctx context.Context) ([]Booking, error)
}

// StaticSource serves a fixed slice of bookings. Used in tests and for
// dry runs without a database.
type StaticSource struct {
	Bookings []Booking
}

// ListAll returns the configured bookings unchanged.
func (s StaticSource) ListAll(context.Context) ([]Booking, error) {
	return s.Bookings, nil
}

var _ Source = StaticSource{}
