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

// AppointmentUseCase agenda de citas. Paciente y dentista deben ser de la misma empresa.
type AppointmentUseCase struct {
	repo  repository.AppointmentRepository
	refs  references
	guard *tenancy.Guard
}

// NewAppointmentUseCase construye el caso de uso.
func NewAppointmentUseCase(
	repo repository.AppointmentRepository,
	patients repository.PatientRepository,
	users repository.UserRepository,
	guard *tenancy.Guard,
) *AppointmentUseCase {
	return &AppointmentUseCase{
		repo:  repo,
		refs:  references{patients: patients, users: users, guard: guard},
		guard: guard,
	}
}

// Create agenda una cita.
func (uc *AppointmentUseCase) Create(ctx context.Context, in dto.AppointmentRequest) (*dto.AppointmentResponse, error) {
	now := time.Now()
	appt := &entity.Appointment{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}
	if err := applyAppointment(appt, in); err != nil {
		return nil, err
	}
	companyID, err := uc.guard.ScopeWrite(ctx, appt)
	if err != nil {
		return nil, err
	}
	if err := uc.refs.both(ctx, companyID, appt.PatientID, appt.DentistID); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, appt); err != nil {
		return nil, err
	}
	return toAppointmentResponse(appt), nil
}

// GetByID obtiene una cita de la empresa del llamador.
func (uc *AppointmentUseCase) GetByID(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	_, appt, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAppointmentResponse(appt), nil
}

// List lista citas; patientID vacío = todas las de la empresa.
func (uc *AppointmentUseCase) List(ctx context.Context, patientID string, page dto.PageRequest) (*dto.AppointmentListResponse, error) {
	companyID, err := uc.guard.ResolveTenant(ctx)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()
	appts, err := uc.repo.ListByCompany(ctx, companyID, patientID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.AppointmentListResponse{
		Items: make([]dto.AppointmentResponse, 0, len(appts)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, a := range appts {
		if uc.guard.AuthorizeAccess(a, companyID) != nil {
			continue
		}
		out.Items = append(out.Items, *toAppointmentResponse(a))
	}
	return out, nil
}

// Update reprograma o cambia el estado de una cita.
func (uc *AppointmentUseCase) Update(ctx context.Context, id string, in dto.AppointmentRequest) (*dto.AppointmentResponse, error) {
	companyID, appt, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyAppointment(appt, in); err != nil {
		return nil, err
	}
	if err := uc.refs.both(ctx, companyID, appt.PatientID, appt.DentistID); err != nil {
		return nil, err
	}
	appt.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, appt); err != nil {
		return nil, err
	}
	return toAppointmentResponse(appt), nil
}

// Delete elimina la cita.
func (uc *AppointmentUseCase) Delete(ctx context.Context, id string) error {
	companyID, _, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	return uc.repo.Delete(ctx, companyID, id)
}

func (uc *AppointmentUseCase) load(ctx context.Context, id string) (string, *entity.Appointment, error) {
	companyID, err := uc.guard.ResolveTenant(ctx)
	if err != nil {
		return "", nil, err
	}
	appt, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return "", nil, err
	}
	if err := uc.guard.AuthorizeAccess(appt, companyID); err != nil {
		return "", nil, err
	}
	return companyID, appt, nil
}

func applyAppointment(a *entity.Appointment, in dto.AppointmentRequest) error {
	if in.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduled_at requerido", domain.ErrInvalidInput)
	}
	procedure := strings.TrimSpace(in.ProcedureType)
	if procedure == "" {
		return fmt.Errorf("%w: procedure_type requerido", domain.ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = entity.AppointmentScheduled
	}
	if !entity.ValidAppointmentStatus(status) {
		return fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	a.PatientID = in.PatientID
	a.DentistID = in.DentistID
	a.ScheduledAt = in.ScheduledAt
	a.ProcedureType = procedure
	a.Status = status
	a.Notes = in.Notes
	return nil
}

func toAppointmentResponse(a *entity.Appointment) *dto.AppointmentResponse {
	return &dto.AppointmentResponse{
		ID:            a.ID,
		PatientID:     a.PatientID,
		DentistID:     a.DentistID,
		ScheduledAt:   a.ScheduledAt,
		ProcedureType: a.ProcedureType,
		Status:        a.Status,
		Notes:         a.Notes,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
