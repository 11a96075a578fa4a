package dto

import "time"

// MedicalRecordRequest entrada para crear/actualizar un registro clínico.
type MedicalRecordRequest struct {
	PatientID  string    `json:"patient_id"`
	DentistID  string    `json:"dentist_id"`
	RecordDate time.Time `json:"record_date"`
	Details    string    `json:"details"`
}

// MedicalRecordResponse salida de un registro clínico.
type MedicalRecordResponse struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id"`
	DentistID  string    `json:"dentist_id"`
	RecordDate time.Time `json:"record_date"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MedicalRecordListResponse listado paginado.
type MedicalRecordListResponse struct {
	Items []MedicalRecordResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
