package booking

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const listBookingsSQL = `SELECT
	COALESCE(patient_name, ''),
	COALESCE(patient_mobile, ''),
	COALESCE(booking_date, ''),
	COALESCE(booking_time, ''),
	COALESCE(doctor_name, ''),
	COALESCE(clinic_name, '')
FROM bookings
ORDER BY id`

// queryer is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it in tests.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository reads booking rows from Postgres.
type Repository struct {
	db queryer
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("booking: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithQueryer allows injecting mocks for tests.
func NewRepositoryWithQueryer(db queryer) *Repository {
	return &Repository{db: db}
}

// ListAll returns every booking row in insertion order.
func (r *Repository) ListAll(ctx context.Context) ([]Booking, error) {
	rows, err := r.db.Query(ctx, listBookingsSQL)
	if err != nil {
		return nil, fmt.Errorf("booking: list: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.PatientName, &b.PatientMobile, &b.Date, &b.Time, &b.DoctorName, &b.ClinicName); err != nil {
			return nil, fmt.Errorf("booking: scan row: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("booking: iterate rows: %w", err)
	}
	return out, nil
}

var _ Source = (*Repository)(nil)
