package store

import (
	"context"

	"dentixpro/internal/model"
)

const appointmentColumns = `id, user_id, title, description, date, time, status, created_at, updated_at`

func scanAppointment(row interface{ Scan(...any) error }) (*model.Appointment, error) {
	a := &model.Appointment{}
	var status string
	if err := row.Scan(&a.ID, &a.UserID, &a.Title, &a.Description, &a.Date, &a.Time,
		&status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	a.Status = model.Status(status)
	return a, nil
}

// CreateAppointment inserts a. A concurrent booking of the same active slot
// is caught by the partial unique index and reported as ErrDuplicate.
func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO appointments (id, user_id, title, description, date, time, status)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.UserID, a.Title, a.Description, a.Date, a.Time, string(a.Status),
	)
	return mapErr(err)
}

func (s *Store) SlotTaken(ctx context.Context, date, hhmm string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE date = $1 AND time = $2 AND status <> 'cancelled')`,
		date, hhmm,
	).Scan(&exists)
	return exists, err
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	return scanAppointment(s.pool.QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id))
}

func (s *Store) ListAppointments(ctx context.Context, f AppointmentFilter) ([]model.Appointment, int, error) {
	var c conds
	if f.UserID != "" {
		c.add("user_id = $%d", f.UserID)
	}
	if f.Status != "" {
		c.add("status = $%d", string(f.Status))
	}
	if f.DateFrom != "" {
		c.add("date >= $%d", f.DateFrom)
	}
	if f.DateTo != "" {
		c.add("date <= $%d", f.DateTo)
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointments`+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + appointmentColumns + ` FROM appointments` + c.where() +
		` ORDER BY date, time` + c.limit(f.Page, f.PageSize)
	rows, err := s.pool.Query(ctx, q, c.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *a)
	}
	return out, total, rows.Err()
}

// SetAppointmentStatus moves an appointment from one status to another.
// It returns ErrStale when the row is no longer in status from.
func (s *Store) SetAppointmentStatus(ctx context.Context, id string, from, to model.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE appointments SET status=$1, updated_at=NOW()
		 WHERE id=$2 AND status=$3`, string(to), id, string(from),
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetAppointment(ctx, id); err != nil {
			return err
		}
		return ErrStale
	}
	return nil
}

// UpdateAppointment overwrites the editable fields of a, provided the row is
// still in status from. Moving onto an occupied slot is ErrDuplicate.
func (s *Store) UpdateAppointment(ctx context.Context, a *model.Appointment, from model.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE appointments SET title=$1, description=$2, date=$3, time=$4, status=$5, updated_at=NOW()
		 WHERE id=$6 AND status=$7`,
		a.Title, a.Description, a.Date, a.Time, string(a.Status), a.ID, string(from),
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetAppointment(ctx, a.ID); err != nil {
			return err
		}
		return ErrStale
	}
	return nil
}
