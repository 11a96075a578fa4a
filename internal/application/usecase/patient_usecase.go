package usecase

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Clinica-api/internal/application/dto"
	"github.com/jhoicas/Clinica-api/internal/application/tenancy"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

// PatientUseCase casos de uso CRUD para pacientes de la empresa del llamador.
type PatientUseCase struct {
	repo  repository.PatientRepository
	guard *tenancy.Guard
}

// NewPatientUseCase construye el caso de uso.
func NewPatientUseCase(repo repository.PatientRepository, guard *tenancy.Guard) *PatientUseCase {
	return &PatientUseCase{repo: repo, guard: guard}
}

// Create registra un paciente sellado con la empresa del llamador.
func (uc *PatientUseCase) Create(ctx context.Context, in dto.PatientRequest) (*dto.PatientResponse, error) {
	now := time.Now()
	patient := &entity.Patient{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}
	if err := applyPatient(patient, in); err != nil {
		return nil, err
	}
	if _, err := uc.guard.ScopeWrite(ctx, patient); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, patient); err != nil {
		return nil, err
	}
	return toPatientResponse(patient), nil
}

// GetByID obtiene un paciente; de otra empresa o inexistente da ErrNotFound.
func (uc *PatientUseCase) GetByID(ctx context.Context, id string) (*dto.PatientResponse, error) {
	_, patient, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPatientResponse(patient), nil
}

// List lista los pacientes de la empresa del llamador.
func (uc *PatientUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.PatientListResponse, error) {
	companyID, err := uc.guard.ResolveTenant(ctx)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()
	patients, err := uc.repo.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.PatientListResponse{
		Items: make([]dto.PatientResponse, 0, len(patients)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, p := range patients {
		if uc.guard.AuthorizeAccess(p, companyID) != nil {
			continue
		}
		out.Items = append(out.Items, *toPatientResponse(p))
	}
	return out, nil
}

// Update reemplaza los datos del paciente. La empresa no cambia.
func (uc *PatientUseCase) Update(ctx context.Context, id string, in dto.PatientRequest) (*dto.PatientResponse, error) {
	_, patient, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyPatient(patient, in); err != nil {
		return nil, err
	}
	patient.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, patient); err != nil {
		return nil, err
	}
	return toPatientResponse(patient), nil
}

// Delete elimina el paciente. Devuelve ErrConflict si tiene facturas.
func (uc *PatientUseCase) Delete(ctx context.Context, id string) error {
	companyID, _, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	return uc.repo.Delete(ctx, companyID, id)
}

func (uc *PatientUseCase) load(ctx context.Context, id string) (string, *entity.Patient, error) {
	companyID, err := uc.guard.ResolveTenant(ctx)
	if err != nil {
		return "", nil, err
	}
	patient, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return "", nil, err
	}
	if err := uc.guard.AuthorizeAccess(patient, companyID); err != nil {
		return "", nil, err
	}
	return companyID, patient, nil
}

func applyPatient(p *entity.Patient, in dto.PatientRequest) error {
	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return fmt.Errorf("%w: nombre y apellido requeridos", domain.ErrInvalidInput)
	}
	email := strings.TrimSpace(in.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
		}
	}
	var birth time.Time
	if in.BirthDate != "" {
		d, err := time.Parse(dto.DateLayout, in.BirthDate)
		if err != nil {
			return fmt.Errorf("%w: birth_date debe ser AAAA-MM-DD", domain.ErrInvalidInput)
		}
		if d.After(time.Now()) {
			return fmt.Errorf("%w: birth_date en el futuro", domain.ErrInvalidInput)
		}
		birth = d
	}

	p.FirstName = first
	p.LastName = last
	p.Email = email
	p.Phone = strings.TrimSpace(in.Phone)
	p.BirthDate = birth
	p.Gender = strings.TrimSpace(in.Gender)
	p.AddressStreet = in.AddressStreet
	p.AddressNumber = in.AddressNumber
	p.AddressComplement = in.AddressComplement
	p.AddressNeighborhood = in.AddressNeighborhood
	p.AddressCity = in.AddressCity
	p.AddressState = in.AddressState
	p.AddressZipCode = in.AddressZipCode
	p.EmergencyContactName = in.EmergencyContactName
	p.EmergencyContactPhone = in.EmergencyContactPhone
	p.HealthInsurance = in.HealthInsurance
	p.HealthInsuranceNumber = in.HealthInsuranceNumber
	p.Allergies = in.Allergies
	p.MedicalObservations = in.MedicalObservations
	return nil
}

func toPatientResponse(p *entity.Patient) *dto.PatientResponse {
	var birth string
	if !p.BirthDate.IsZero() {
		birth = p.BirthDate.Format(dto.DateLayout)
	}
	return &dto.PatientResponse{
		ID:                    p.ID,
		FirstName:             p.FirstName,
		LastName:              p.LastName,
		Name:                  p.FullName(),
		Email:                 p.Email,
		Phone:                 p.Phone,
		BirthDate:             birth,
		Gender:                p.Gender,
		AddressStreet:         p.AddressStreet,
		AddressNumber:         p.AddressNumber,
		AddressComplement:     p.AddressComplement,
		AddressNeighborhood:   p.AddressNeighborhood,
		AddressCity:           p.AddressCity,
		AddressState:          p.AddressState,
		AddressZipCode:        p.AddressZipCode,
		EmergencyContactName:  p.EmergencyContactName,
		EmergencyContactPhone: p.EmergencyContactPhone,
		HealthInsurance:       p.HealthInsurance,
		HealthInsuranceNumber: p.HealthInsuranceNumber,
		Allergies:             p.Allergies,
		MedicalObservations:   p.MedicalObservations,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}
