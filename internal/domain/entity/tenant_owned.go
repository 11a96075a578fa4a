package entity

// TenantOwned lo implementa toda entidad que pertenece a una empresa. El guard de
// tenancy es el único que llama AssignCompany, y solo antes de la primera persistencia.
// OwnerCompanyID es nil-safe: un puntero nil devuelve "" (tratado como no encontrado).
type TenantOwned interface {
	OwnerCompanyID() string
	AssignCompany(companyID string)
}

var (
	_ TenantOwned = (*User)(nil)
	_ TenantOwned = (*Patient)(nil)
	_ TenantOwned = (*Appointment)(nil)
	_ TenantOwned = (*Invoice)(nil)
	_ TenantOwned = (*MedicalRecord)(nil)
)

func (u *User) OwnerCompanyID() string {
	if u == nil {
		return ""
	}
	return u.CompanyID
}

func (u *User) AssignCompany(companyID string) { u.CompanyID = companyID }

func (p *Patient) OwnerCompanyID() string {
	if p == nil {
		return ""
	}
	return p.CompanyID
}

func (p *Patient) AssignCompany(companyID string) { p.CompanyID = companyID }

func (a *Appointment) OwnerCompanyID() string {
	if a == nil {
		return ""
	}
	return a.CompanyID
}

func (a *Appointment) AssignCompany(companyID string) { a.CompanyID = companyID }

func (i *Invoice) OwnerCompanyID() string {
	if i == nil {
		return ""
	}
	return i.CompanyID
}

func (i *Invoice) AssignCompany(companyID string) { i.CompanyID = companyID }

func (m *MedicalRecord) OwnerCompanyID() string {
	if m == nil {
		return ""
	}
	return m.CompanyID
}

func (m *MedicalRecord) AssignCompany(companyID string) { m.CompanyID = companyID }
