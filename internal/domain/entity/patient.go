package entity

import "time"

// Patient representa un paciente de la clínica.
type Patient struct {
	ID                    string
	CompanyID             string
	FirstName             string
	LastName              string
	Email                 string
	Phone                 string
	BirthDate             time.Time
	Gender                string
	AddressStreet         string
	AddressNumber         string
	AddressComplement     string
	AddressNeighborhood   string
	AddressCity           string
	AddressState          string
	AddressZipCode        string
	EmergencyContactName  string
	EmergencyContactPhone string
	HealthInsurance       string
	HealthInsuranceNumber string
	Allergies             string
	MedicalObservations   string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// FullName nombre completo.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}
