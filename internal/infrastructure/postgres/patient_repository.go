package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

var _ repository.PatientRepository = (*PatientRepo)(nil)

const patientColumns = `id, company_id, first_name, last_name, email, phone, birth_date, gender,
	address_street, address_number, address_complement, address_neighborhood, address_city,
	address_state, address_zip_code, emergency_contact_name, emergency_contact_phone,
	health_insurance, health_insurance_number, allergies, medical_observations, created_at, updated_at`

// PatientRepo implementación del puerto PatientRepository sobre PostgreSQL.
type PatientRepo struct {
	db Querier
}

// NewPatientRepository construye el adaptador.
func NewPatientRepository(db Querier) *PatientRepo {
	return &PatientRepo{db: db}
}

// Create persiste un paciente.
func (r *PatientRepo) Create(ctx context.Context, p *entity.Patient) error {
	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.CompanyID, p.FirstName, p.LastName, p.Email, p.Phone, nullableDate(p.BirthDate), p.Gender,
		p.AddressStreet, p.AddressNumber, p.AddressComplement, p.AddressNeighborhood, p.AddressCity,
		p.AddressState, p.AddressZipCode, p.EmergencyContactName, p.EmergencyContactPhone,
		p.HealthInsurance, p.HealthInsuranceNumber, p.Allergies, p.MedicalObservations, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

// GetByID obtiene un paciente de la empresa indicada; (nil, nil) si no existe en ella.
func (r *PatientRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Patient, error) {
	if !validID(companyID, id) {
		return nil, nil
	}
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1 AND company_id = $2`
	p, err := scanPatient(r.db.QueryRow(ctx, query, id, companyID))
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

// ListByCompany lista pacientes ordenados por apellido.
func (r *PatientRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Patient, error) {
	if !validID(companyID) {
		return nil, nil
	}
	limit, offset = clampPage(limit, offset)
	query := `SELECT ` + patientColumns + ` FROM patients WHERE company_id = $1
		ORDER BY last_name, first_name, id LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()
	var list []*entity.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update actualiza los datos del paciente. company_id no se modifica nunca.
func (r *PatientRepo) Update(ctx context.Context, p *entity.Patient) error {
	if !validID(p.CompanyID, p.ID) {
		return domain.ErrNotFound
	}
	query := `
		UPDATE patients SET first_name = $3, last_name = $4, email = $5, phone = $6, birth_date = $7,
			gender = $8, address_street = $9, address_number = $10, address_complement = $11,
			address_neighborhood = $12, address_city = $13, address_state = $14, address_zip_code = $15,
			emergency_contact_name = $16, emergency_contact_phone = $17, health_insurance = $18,
			health_insurance_number = $19, allergies = $20, medical_observations = $21, updated_at = $22
		WHERE id = $1 AND company_id = $2`
	tag, err := r.db.Exec(ctx, query,
		p.ID, p.CompanyID, p.FirstName, p.LastName, p.Email, p.Phone, nullableDate(p.BirthDate),
		p.Gender, p.AddressStreet, p.AddressNumber, p.AddressComplement,
		p.AddressNeighborhood, p.AddressCity, p.AddressState, p.AddressZipCode,
		p.EmergencyContactName, p.EmergencyContactPhone, p.HealthInsurance,
		p.HealthInsuranceNumber, p.Allergies, p.MedicalObservations, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el paciente con sus citas e historia. Con facturas devuelve ErrConflict.
func (r *PatientRepo) Delete(ctx context.Context, companyID, id string) error {
	if !validID(companyID, id) {
		return domain.ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM patients WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPatient(row pgx.Row) (*entity.Patient, error) {
	var p entity.Patient
	var birth *time.Time
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &birth, &p.Gender,
		&p.AddressStreet, &p.AddressNumber, &p.AddressComplement, &p.AddressNeighborhood, &p.AddressCity,
		&p.AddressState, &p.AddressZipCode, &p.EmergencyContactName, &p.EmergencyContactPhone,
		&p.HealthInsurance, &p.HealthInsuranceNumber, &p.Allergies, &p.MedicalObservations, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if birth != nil {
		p.BirthDate = *birth
	}
	return &p, nil
}
