package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

var _ repository.AppointmentRepository = (*AppointmentRepo)(nil)

const appointmentColumns = `id, company_id, patient_id, dentist_id, scheduled_at, procedure_type, status, notes, created_at, updated_at`

// AppointmentRepo implementación del puerto AppointmentRepository sobre PostgreSQL.
type AppointmentRepo struct {
	db Querier
}

// NewAppointmentRepository construye el adaptador.
func NewAppointmentRepository(db Querier) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

// Create persiste una cita.
func (r *AppointmentRepo) Create(ctx context.Context, a *entity.Appointment) error {
	query := `INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(ctx, query,
		a.ID, a.CompanyID, a.PatientID, a.DentistID, a.ScheduledAt, a.ProcedureType, a.Status, a.Notes,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

// GetByID obtiene una cita de la empresa indicada.
func (r *AppointmentRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Appointment, error) {
	if !validID(companyID, id) {
		return nil, nil
	}
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 AND company_id = $2`
	a, err := scanAppointment(r.db.QueryRow(ctx, query, id, companyID))
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

// ListByCompany lista citas, las más próximas primero; patientID vacío = todas.
func (r *AppointmentRepo) ListByCompany(ctx context.Context, companyID, patientID string, limit, offset int) ([]*entity.Appointment, error) {
	if !validID(companyID) || (patientID != "" && !validID(patientID)) {
		return nil, nil
	}
	limit, offset = clampPage(limit, offset)
	query := `SELECT ` + appointmentColumns + ` FROM appointments
		WHERE company_id = $1 AND ($2 = '' OR patient_id::text = $2)
		ORDER BY scheduled_at DESC, id LIMIT $3 OFFSET $4`
	rows, err := r.db.Query(ctx, query, companyID, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Update reprograma la cita. company_id no se modifica.
func (r *AppointmentRepo) Update(ctx context.Context, a *entity.Appointment) error {
	if !validID(a.CompanyID, a.ID) {
		return domain.ErrNotFound
	}
	query := `
		UPDATE appointments SET patient_id = $3, dentist_id = $4, scheduled_at = $5, procedure_type = $6,
			status = $7, notes = $8, updated_at = $9
		WHERE id = $1 AND company_id = $2`
	tag, err := r.db.Exec(ctx, query,
		a.ID, a.CompanyID, a.PatientID, a.DentistID, a.ScheduledAt, a.ProcedureType, a.Status, a.Notes, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la cita.
func (r *AppointmentRepo) Delete(ctx context.Context, companyID, id string) error {
	if !validID(companyID, id) {
		return domain.ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAppointment(row pgx.Row) (*entity.Appointment, error) {
	var a entity.Appointment
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.PatientID, &a.DentistID, &a.ScheduledAt, &a.ProcedureType, &a.Status, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
