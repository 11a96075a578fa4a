package repository

import (
	"context"

	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// PatientRepository puerto de persistencia para Patient. Toda lectura, actualización y
// borrado filtra por companyID.
type PatientRepository interface {
	Create(ctx context.Context, patient *entity.Patient) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Patient, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Patient, error)
	// Update no modifica company_id.
	Update(ctx context.Context, patient *entity.Patient) error
	Delete(ctx context.Context, companyID, id string) error
}
