package repository

import (
	"context"

	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// AppointmentRepository puerto de persistencia para Appointment.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Appointment, error)
	// ListByCompany lista citas; patientID vacío = todas.
	ListByCompany(ctx context.Context, companyID, patientID string, limit, offset int) ([]*entity.Appointment, error)
	Update(ctx context.Context, appointment *entity.Appointment) error
	Delete(ctx context.Context, companyID, id string) error
}
