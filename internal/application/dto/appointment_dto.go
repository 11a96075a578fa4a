package dto

import "time"

// AppointmentRequest entrada para crear/actualizar una cita.
type AppointmentRequest struct {
	PatientID     string    `json:"patient_id"`
	DentistID     string    `json:"dentist_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	ProcedureType string    `json:"procedure_type"`
	Status        string    `json:"status"` // vacío = SCHEDULED
	Notes         string    `json:"notes"`
}

// AppointmentResponse salida de una cita.
type AppointmentResponse struct {
	ID            string    `json:"id"`
	PatientID     string    `json:"patient_id"`
	DentistID     string    `json:"dentist_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	ProcedureType string    `json:"procedure_type"`
	Status        string    `json:"status"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AppointmentListResponse listado paginado.
type AppointmentListResponse struct {
	Items []AppointmentResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
