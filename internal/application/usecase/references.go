package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/Clinica-api/internal/application/tenancy"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

// references valida que paciente y dentista referenciados pertenezcan a la empresa
// del llamador. Una referencia a otra empresa es indistinguible de una inexistente.
type references struct {
	patients repository.PatientRepository
	users    repository.UserRepository
	guard    *tenancy.Guard
}

func (r references) patient(ctx context.Context, companyID, id string) (*entity.Patient, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: patient_id requerido", domain.ErrInvalidInput)
	}
	p, err := r.patients.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := r.guard.AuthorizeAccess(p, companyID); err != nil {
		return nil, fmt.Errorf("%w: paciente", err)
	}
	return p, nil
}

func (r references) dentist(ctx context.Context, companyID, id string) (*entity.User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: dentist_id requerido", domain.ErrInvalidInput)
	}
	u, err := r.users.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := r.guard.AuthorizeAccess(u, companyID); err != nil {
		return nil, fmt.Errorf("%w: dentista", err)
	}
	if u.Role != entity.RoleDentist {
		return nil, fmt.Errorf("%w: el usuario %s no es dentista", domain.ErrInvalidInput, id)
	}
	return u, nil
}

func (r references) both(ctx context.Context, companyID, patientID, dentistID string) error {
	if _, err := r.patient(ctx, companyID, patientID); err != nil {
		return err
	}
	_, err := r.dentist(ctx, companyID, dentistID)
	return err
}
