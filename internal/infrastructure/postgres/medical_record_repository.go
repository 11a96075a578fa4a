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

var _ repository.MedicalRecordRepository = (*MedicalRecordRepo)(nil)

const medicalRecordColumns = `id, company_id, patient_id, dentist_id, record_date, details, created_at, updated_at`

// MedicalRecordRepo implementación del puerto MedicalRecordRepository sobre PostgreSQL.
type MedicalRecordRepo struct {
	db Querier
}

// NewMedicalRecordRepository construye el adaptador.
func NewMedicalRecordRepository(db Querier) *MedicalRecordRepo {
	return &MedicalRecordRepo{db: db}
}

// Create persiste un registro clínico.
func (r *MedicalRecordRepo) Create(ctx context.Context, m *entity.MedicalRecord) error {
	query := `INSERT INTO medical_records (` + medicalRecordColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		m.ID, m.CompanyID, m.PatientID, m.DentistID, m.RecordDate, m.Details, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert medical record: %w", err)
	}
	return nil
}

// GetByID obtiene un registro de la empresa indicada.
func (r *MedicalRecordRepo) GetByID(ctx context.Context, companyID, id string) (*entity.MedicalRecord, error) {
	if !validID(companyID, id) {
		return nil, nil
	}
	query := `SELECT ` + medicalRecordColumns + ` FROM medical_records WHERE id = $1 AND company_id = $2`
	m, err := scanMedicalRecord(r.db.QueryRow(ctx, query, id, companyID))
	if err != nil {
		return nil, fmt.Errorf("get medical record: %w", err)
	}
	return m, nil
}

// ListByCompany lista registros, los más recientes primero; patientID vacío = todos.
func (r *MedicalRecordRepo) ListByCompany(ctx context.Context, companyID, patientID string, limit, offset int) ([]*entity.MedicalRecord, error) {
	if !validID(companyID) || (patientID != "" && !validID(patientID)) {
		return nil, nil
	}
	limit, offset = clampPage(limit, offset)
	query := `SELECT ` + medicalRecordColumns + ` FROM medical_records
		WHERE company_id = $1 AND ($2 = '' OR patient_id::text = $2)
		ORDER BY record_date DESC, id LIMIT $3 OFFSET $4`
	rows, err := r.db.Query(ctx, query, companyID, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list medical records: %w", err)
	}
	defer rows.Close()
	var list []*entity.MedicalRecord
	for rows.Next() {
		m, err := scanMedicalRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medical record: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Update corrige el registro. company_id no se modifica.
func (r *MedicalRecordRepo) Update(ctx context.Context, m *entity.MedicalRecord) error {
	if !validID(m.CompanyID, m.ID) {
		return domain.ErrNotFound
	}
	query := `
		UPDATE medical_records SET patient_id = $3, dentist_id = $4, record_date = $5, details = $6, updated_at = $7
		WHERE id = $1 AND company_id = $2`
	tag, err := r.db.Exec(ctx, query, m.ID, m.CompanyID, m.PatientID, m.DentistID, m.RecordDate, m.Details, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update medical record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el registro.
func (r *MedicalRecordRepo) Delete(ctx context.Context, companyID, id string) error {
	if !validID(companyID, id) {
		return domain.ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM medical_records WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("delete medical record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanMedicalRecord(row pgx.Row) (*entity.MedicalRecord, error) {
	var m entity.MedicalRecord
	err := row.Scan(&m.ID, &m.CompanyID, &m.PatientID, &m.DentistID, &m.RecordDate, &m.Details, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
