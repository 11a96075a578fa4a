package repository

import (
	"context"

	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// MedicalRecordRepository puerto de persistencia para MedicalRecord.
type MedicalRecordRepository interface {
	Create(ctx context.Context, record *entity.MedicalRecord) error
	GetByID(ctx context.Context, companyID, id string) (*entity.MedicalRecord, error)
	ListByCompany(ctx context.Context, companyID, patientID string, limit, offset int) ([]*entity.MedicalRecord, error)
	Update(ctx context.Context, record *entity.MedicalRecord) error
	Delete(ctx context.Context, companyID, id string) error
}
