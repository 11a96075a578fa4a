package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Clinica-api/internal/application/dto"
	"github.com/jhoicas/Clinica-api/internal/application/tenancy"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

// MedicalRecordUseCase historia clínica de los pacientes.
type MedicalRecordUseCase struct {
	repo  repository.MedicalRecordRepository
	refs  references
	guard *tenancy.Guard
}

// NewMedicalRecordUseCase construye el caso de uso.
func NewMedicalRecordUseCase(
	repo repository.MedicalRecordRepository,
	patients repository.PatientRepository,
	users repository.UserRepository,
	guard *tenancy.Guard,
) *MedicalRecordUseCase {
	return &MedicalRecordUseCase{
		repo:  repo,
		refs:  references{patients: patients, users: users, guard: guard},
		guard: guard,
	}
}

// Create agrega un registro a la historia clínica. Sin record_date se usa la fecha actual.
func (uc *MedicalRecordUseCase) Create(ctx context.Context, in dto.MedicalRecordRequest) (*dto.MedicalRecordResponse, error) {
	now := time.Now()
	rec := &entity.MedicalRecord{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}
	if err := applyMedicalRecord(rec, in, now); err != nil {
		return nil, err
	}
	companyID, err := uc.guard.ScopeWrite(ctx, rec)
	if err != nil {
		return nil, err
	}
	if err := uc.refs.both(ctx, companyID, rec.PatientID, rec.DentistID); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return toMedicalRecordResponse(rec), nil
}

// GetByID obtiene un registro de la empresa del llamador.
func (uc *MedicalRecordUseCase) GetByID(ctx context.Context, id string) (*dto.MedicalRecordResponse, error) {
	_, rec, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toMedicalRecordResponse(rec), nil
}

// List lista registros, opcionalmente de un paciente.
func (uc *MedicalRecordUseCase) List(ctx context.Context, patientID string, page dto.PageRequest) (*dto.MedicalRecordListResponse, error) {
	companyID, err := uc.guard.ResolveTenant(ctx)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()
	recs, err := uc.repo.ListByCompany(ctx, companyID, patientID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.MedicalRecordListResponse{
		Items: make([]dto.MedicalRecordResponse, 0, len(recs)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, r := range recs {
		if uc.guard.AuthorizeAccess(r, companyID) != nil {
			continue
		}
		out.Items = append(out.Items, *toMedicalRecordResponse(r))
	}
	return out, nil
}

// Update corrige un registro.
func (uc *MedicalRecordUseCase) Update(ctx context.Context, id string, in dto.MedicalRecordRequest) (*dto.MedicalRecordResponse, error) {
	companyID, rec, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyMedicalRecord(rec, in, rec.RecordDate); err != nil {
		return nil, err
	}
	if err := uc.refs.both(ctx, companyID, rec.PatientID, rec.DentistID); err != nil {
		return nil, err
	}
	rec.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return toMedicalRecordResponse(rec), nil
}

// Delete elimina el registro.
func (uc *MedicalRecordUseCase) Delete(ctx context.Context, id string) error {
	companyID, _, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	return uc.repo.Delete(ctx, companyID, id)
}

func (uc *MedicalRecordUseCase) load(ctx context.Context, id string) (string, *entity.MedicalRecord, error) {
	companyID, err := uc.guard.ResolveTenant(ctx)
	if err != nil {
		return "", nil, err
	}
	rec, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return "", nil, err
	}
	if err := uc.guard.AuthorizeAccess(rec, companyID); err != nil {
		return "", nil, err
	}
	return companyID, rec, nil
}

func applyMedicalRecord(m *entity.MedicalRecord, in dto.MedicalRecordRequest, defaultDate time.Time) error {
	details := strings.TrimSpace(in.Details)
	if details == "" {
		return fmt.Errorf("%w: details requerido", domain.ErrInvalidInput)
	}
	date := in.RecordDate
	if date.IsZero() {
		date = defaultDate
	}
	m.PatientID = in.PatientID
	m.DentistID = in.DentistID
	m.RecordDate = date
	m.Details = details
	return nil
}

func toMedicalRecordResponse(m *entity.MedicalRecord) *dto.MedicalRecordResponse {
	return &dto.MedicalRecordResponse{
		ID:         m.ID,
		PatientID:  m.PatientID,
		DentistID:  m.DentistID,
		RecordDate: m.RecordDate,
		Details:    m.Details,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
