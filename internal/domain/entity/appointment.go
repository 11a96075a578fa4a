package entity

import "time"

// Estados de una cita.
const (
	AppointmentScheduled = "SCHEDULED"
	AppointmentCanceled  = "CANCELED"
	AppointmentDone      = "DONE"
)

// ValidAppointmentStatus informa si el estado es válido.
func ValidAppointmentStatus(s string) bool {
	return s == AppointmentScheduled || s == AppointmentCanceled || s == AppointmentDone
}

// Appointment cita de un paciente con un dentista de la misma empresa.
type Appointment struct {
	ID            string
	CompanyID     string
	PatientID     string
	DentistID     string
	ScheduledAt   time.Time
	ProcedureType string // Ej: "Limpieza", "Endodoncia", "Ortodoncia"
	Status        string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
