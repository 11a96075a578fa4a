package entity

import "time"

// MedicalRecord registro de historia clínica (diagnósticos, tratamientos).
type MedicalRecord struct {
	ID         string
	CompanyID  string
	PatientID  string
	DentistID  string
	RecordDate time.Time
	Details    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
