package dto

import "time"

// PatientRequest entrada para crear/actualizar un paciente (PUT reemplaza los campos).
type PatientRequest struct {
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	Email                 string `json:"email"`
	Phone                 string `json:"phone"`
	BirthDate             string `json:"birth_date"` // YYYY-MM-DD
	Gender                string `json:"gender"`
	AddressStreet         string `json:"address_street"`
	AddressNumber         string `json:"address_number"`
	AddressComplement     string `json:"address_complement"`
	AddressNeighborhood   string `json:"address_neighborhood"`
	AddressCity           string `json:"address_city"`
	AddressState          string `json:"address_state"`
	AddressZipCode        string `json:"address_zip_code"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
	HealthInsurance       string `json:"health_insurance"`
	HealthInsuranceNumber string `json:"health_insurance_number"`
	Allergies             string `json:"allergies"`
	MedicalObservations   string `json:"medical_observations"`
}

// PatientResponse salida de un paciente.
type PatientResponse struct {
	ID                    string    `json:"id"`
	FirstName             string    `json:"first_name"`
	LastName              string    `json:"last_name"`
	Name                  string    `json:"name"`
	Email                 string    `json:"email"`
	Phone                 string    `json:"phone"`
	BirthDate             string    `json:"birth_date"`
	Gender                string    `json:"gender"`
	AddressStreet         string    `json:"address_street"`
	AddressNumber         string    `json:"address_number"`
	AddressComplement     string    `json:"address_complement"`
	AddressNeighborhood   string    `json:"address_neighborhood"`
	AddressCity           string    `json:"address_city"`
	AddressState          string    `json:"address_state"`
	AddressZipCode        string    `json:"address_zip_code"`
	EmergencyContactName  string    `json:"emergency_contact_name"`
	EmergencyContactPhone string    `json:"emergency_contact_phone"`
	HealthInsurance       string    `json:"health_insurance"`
	HealthInsuranceNumber string    `json:"health_insurance_number"`
	Allergies             string    `json:"allergies"`
	MedicalObservations   string    `json:"medical_observations"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// PatientListResponse listado paginado.
type PatientListResponse struct {
	Items []PatientResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
