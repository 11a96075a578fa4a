package repository

import (
	"context"

	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// InvoiceRepository puerto de persistencia para Invoice.
type InvoiceRepository interface {
	// Create devuelve domain.ErrDuplicate si el número ya existe en la empresa.
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Invoice, error)
	ListByCompany(ctx context.Context, companyID, patientID string, limit, offset int) ([]*entity.Invoice, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	Delete(ctx context.Context, companyID, id string) error
}
