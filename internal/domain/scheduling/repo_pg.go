package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

const apptCols = `id, patient_name, doctor_name, time, status, reason, decline_reason, cancel_reason, created_at, updated_at`

func (r *appointmentRepoPG) scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientName, &a.DoctorName, &a.Time, &a.Status,
		&a.Reason, &a.DeclineReason, &a.CancelReason, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (id, patient_name, doctor_name, time, status, reason)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.PatientName, a.DoctorName, a.Time, a.Status, a.Reason)
	return err
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET doctor_name = $2, time = $3, status = $4,
		    reason = $5, decline_reason = $6, cancel_reason = $7,
		    updated_at = NOW()
		WHERE id = $1`,
		a.ID, a.DoctorName, a.Time, a.Status, a.Reason, a.DeclineReason, a.CancelReason)
	return err
}

func (r *appointmentRepoPG) ListByDoctor(ctx context.Context, doctorName string) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE doctor_name = $1 ORDER BY time`, doctorName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientName string, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE patient_name = $1`, patientName).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE patient_name = $1 ORDER BY time DESC LIMIT $2 OFFSET $3`,
		patientName, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := r.collect(rows)
	return items, total, err
}

func (r *appointmentRepoPG) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+apptCols+` FROM appointments ORDER BY time DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := r.collect(rows)
	return items, total, err
}

func (r *appointmentRepoPG) DoctorNamesForPatient(ctx context.Context, patientName string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT doctor_name FROM appointments
		WHERE patient_name = $1 AND doctor_name <> ''
		ORDER BY doctor_name`, patientName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r *appointmentRepoPG) collect(rows pgx.Rows) ([]*Appointment, error) {
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// settingsRepoPG stores clinic tunables as key/value rows. Values are kept
// as text so new settings need no schema change.
type settingsRepoPG struct{ pool *pgxpool.Pool }

func NewSettingsRepoPG(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepoPG{pool: pool}
}

const overlapMinutesKey = "appointmentMinutes"

func (r *settingsRepoPG) OverlapMinutes(ctx context.Context) (int, error) {
	var raw string
	err := r.pool.QueryRow(ctx,
		`SELECT value FROM clinic_settings WHERE key = $1`, overlapMinutesKey).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return DefaultOverlapMinutes, nil
	}
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultOverlapMinutes, nil
	}
	return m, nil
}

func (r *settingsRepoPG) SetOverlapMinutes(ctx context.Context, minutes int) error {
	if minutes < MinOverlapMinutes || minutes > MaxOverlapMinutes {
		return fmt.Errorf("overlap minutes must be between %d and %d", MinOverlapMinutes, MaxOverlapMinutes)
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO clinic_settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		overlapMinutesKey, strconv.Itoa(minutes))
	return err
}
