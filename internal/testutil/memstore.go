// Package testutil repositorios en memoria para tests de casos de uso y handlers.
// Respetan los mismos contratos que los de postgres: filtro por company_id, (nil, nil)
// cuando no hay fila, email único sin distinguir mayúsculas y número de factura único
// por empresa.
package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

// Store almacén en memoria. Seguro para uso concurrente.
type Store struct {
	mu           sync.Mutex
	companies    map[string]entity.Company
	users        map[string]entity.User
	patients     map[string]entity.Patient
	appointments map[string]entity.Appointment
	invoices     map[string]entity.Invoice
	records      map[string]entity.MedicalRecord

	// FailUserCreate si no es nil, UserRepository.Create lo devuelve (simula fallo tras
	// crear la empresa).
	FailUserCreate error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		companies:    map[string]entity.Company{},
		users:        map[string]entity.User{},
		patients:     map[string]entity.Patient{},
		appointments: map[string]entity.Appointment{},
		invoices:     map[string]entity.Invoice{},
		records:      map[string]entity.MedicalRecord{},
	}
}

// CompanyCount número de empresas persistidas.
func (s *Store) CompanyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.companies)
}

// UserCount número de usuarios persistidos.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Repositorios sobre el almacén.
func (s *Store) Companies() repository.CompanyRepository { return companyRepo{s} }

func (s *Store) Users() repository.UserRepository { return userRepo{s} }

func (s *Store) Patients() repository.PatientRepository { return patientRepo{s} }

func (s *Store) Appointments() repository.AppointmentRepository { return appointmentRepo{s} }

func (s *Store) Invoices() repository.InvoiceRepository { return invoiceRepo{s} }

func (s *Store) MedicalRecords() repository.MedicalRecordRepository { return recordRepo{s} }

// RunAuth ejecuta fn sobre una copia de empresas y usuarios; solo si fn devuelve nil se
// aplican los cambios (commit). Cualquier error descarta la copia (rollback).
func (s *Store) RunAuth(ctx context.Context, fn func(companies repository.CompanyRepository, users repository.UserRepository) error) error {
	tx := NewStore()
	tx.FailUserCreate = s.FailUserCreate
	s.mu.Lock()
	for k, v := range s.companies {
		tx.companies[k] = v
	}
	for k, v := range s.users {
		tx.users[k] = v
	}
	s.mu.Unlock()

	if err := fn(tx.Companies(), tx.Users()); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range tx.users {
		if _, ok := s.users[id]; ok {
			continue
		}
		if s.emailTakenLocked(u.Email) {
			return domain.ErrEmailTaken
		}
	}
	for k, v := range tx.companies {
		s.companies[k] = v
	}
	for k, v := range tx.users {
		s.users[k] = v
	}
	return nil
}

func (s *Store) emailTakenLocked(email string) bool {
	email = entity.NormalizeEmail(email)
	for _, u := range s.users {
		if entity.NormalizeEmail(u.Email) == email {
			return true
		}
	}
	return false
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// ─── Company ──────────────────────────────────────────────────────────────────

type companyRepo struct{ s *Store }

func (r companyRepo) Create(_ context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[c.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.companies[c.ID] = *c
	return nil
}

func (r companyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// ─── User ─────────────────────────────────────────────────────────────────────

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailUserCreate != nil {
		return r.s.FailUserCreate
	}
	if r.s.emailTakenLocked(u.Email) {
		return domain.ErrEmailTaken
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = entity.NormalizeEmail(email)
	for _, u := range r.s.users {
		if entity.NormalizeEmail(u.Email) == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) GetByID(_ context.Context, companyID, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.CompanyID != companyID {
		return nil, nil
	}
	return &u, nil
}

func (r userRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.User
	for _, u := range r.s.users {
		if u.CompanyID == companyID {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return page(out, limit, offset), nil
}

// ─── Patient ──────────────────────────────────────────────────────────────────

type patientRepo struct{ s *Store }

func (r patientRepo) Create(_ context.Context, p *entity.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.patients[p.ID] = *p
	return nil
}

func (r patientRepo) GetByID(_ context.Context, companyID, id string) (*entity.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patients[id]
	if !ok || p.CompanyID != companyID {
		return nil, nil
	}
	return &p, nil
}

func (r patientRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Patient
	for _, p := range r.s.patients {
		if p.CompanyID == companyID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName() < out[j].FullName() })
	return page(out, limit, offset), nil
}

func (r patientRepo) Update(_ context.Context, p *entity.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.patients[p.ID]
	if !ok || cur.CompanyID != p.CompanyID {
		return domain.ErrNotFound
	}
	next := *p
	next.CompanyID = cur.CompanyID
	r.s.patients[p.ID] = next
	return nil
}

func (r patientRepo) Delete(_ context.Context, companyID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.patients[id]
	if !ok || cur.CompanyID != companyID {
		return domain.ErrNotFound
	}
	for _, inv := range r.s.invoices {
		if inv.PatientID == id {
			return domain.ErrConflict
		}
	}
	for aid, a := range r.s.appointments {
		if a.PatientID == id {
			delete(r.s.appointments, aid)
		}
	}
	for mid, m := range r.s.records {
		if m.PatientID == id {
			delete(r.s.records, mid)
		}
	}
	delete(r.s.patients, id)
	return nil
}

// ─── Appointment ──────────────────────────────────────────────────────────────

type appointmentRepo struct{ s *Store }

func (r appointmentRepo) Create(_ context.Context, a *entity.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.appointments[a.ID] = *a
	return nil
}

func (r appointmentRepo) GetByID(_ context.Context, companyID, id string) (*entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok || a.CompanyID != companyID {
		return nil, nil
	}
	return &a, nil
}

func (r appointmentRepo) ListByCompany(_ context.Context, companyID, patientID string, limit, offset int) ([]*entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Appointment
	for _, a := range r.s.appointments {
		if a.CompanyID == companyID && (patientID == "" || a.PatientID == patientID) {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.After(out[j].ScheduledAt) })
	return page(out, limit, offset), nil
}

func (r appointmentRepo) Update(_ context.Context, a *entity.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.appointments[a.ID]
	if !ok || cur.CompanyID != a.CompanyID {
		return domain.ErrNotFound
	}
	next := *a
	next.CompanyID = cur.CompanyID
	r.s.appointments[a.ID] = next
	return nil
}

func (r appointmentRepo) Delete(_ context.Context, companyID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.appointments[id]
	if !ok || cur.CompanyID != companyID {
		return domain.ErrNotFound
	}
	delete(r.s.appointments, id)
	return nil
}

// ─── Invoice ──────────────────────────────────────────────────────────────────

type invoiceRepo struct{ s *Store }

func (r invoiceRepo) numberTakenLocked(companyID, number, exceptID string) bool {
	for id, inv := range r.s.invoices {
		if id != exceptID && inv.CompanyID == companyID && inv.Number == number {
			return true
		}
	}
	return false
}

func (r invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.numberTakenLocked(inv.CompanyID, inv.Number, "") {
		return domain.ErrDuplicate
	}
	r.s.invoices[inv.ID] = *inv
	return nil
}

func (r invoiceRepo) GetByID(_ context.Context, companyID, id string) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok || inv.CompanyID != companyID {
		return nil, nil
	}
	return &inv, nil
}

func (r invoiceRepo) ListByCompany(_ context.Context, companyID, patientID string, limit, offset int) ([]*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if inv.CompanyID == companyID && (patientID == "" || inv.PatientID == patientID) {
			inv := inv
			out = append(out, &inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return page(out, limit, offset), nil
}

func (r invoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.invoices[inv.ID]
	if !ok || cur.CompanyID != inv.CompanyID {
		return domain.ErrNotFound
	}
	if r.numberTakenLocked(cur.CompanyID, inv.Number, inv.ID) {
		return domain.ErrDuplicate
	}
	next := *inv
	next.CompanyID = cur.CompanyID
	r.s.invoices[inv.ID] = next
	return nil
}

func (r invoiceRepo) Delete(_ context.Context, companyID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.invoices[id]
	if !ok || cur.CompanyID != companyID {
		return domain.ErrNotFound
	}
	delete(r.s.invoices, id)
	return nil
}

// ─── MedicalRecord ────────────────────────────────────────────────────────────

type recordRepo struct{ s *Store }

func (r recordRepo) Create(_ context.Context, m *entity.MedicalRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.records[m.ID] = *m
	return nil
}

func (r recordRepo) GetByID(_ context.Context, companyID, id string) (*entity.MedicalRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.records[id]
	if !ok || m.CompanyID != companyID {
		return nil, nil
	}
	return &m, nil
}

func (r recordRepo) ListByCompany(_ context.Context, companyID, patientID string, limit, offset int) ([]*entity.MedicalRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.MedicalRecord
	for _, m := range r.s.records {
		if m.CompanyID == companyID && (patientID == "" || m.PatientID == patientID) {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordDate.After(out[j].RecordDate) })
	return page(out, limit, offset), nil
}

func (r recordRepo) Update(_ context.Context, m *entity.MedicalRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.records[m.ID]
	if !ok || cur.CompanyID != m.CompanyID {
		return domain.ErrNotFound
	}
	next := *m
	next.CompanyID = cur.CompanyID
	r.s.records[m.ID] = next
	return nil
}

func (r recordRepo) Delete(_ context.Context, companyID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.records[id]
	if !ok || cur.CompanyID != companyID {
		return domain.ErrNotFound
	}
	delete(r.s.records, id)
	return nil
}

// Seed inserta entidades directamente (fixtures), sin pasar por casos de uso.
func (s *Store) Seed(items ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		switch v := it.(type) {
		case *entity.Company:
			s.companies[v.ID] = *v
		case *entity.User:
			s.users[v.ID] = *v
		case *entity.Patient:
			s.patients[v.ID] = *v
		case *entity.Appointment:
			s.appointments[v.ID] = *v
		case *entity.Invoice:
			s.invoices[v.ID] = *v
		case *entity.MedicalRecord:
			s.records[v.ID] = *v
		default:
			panic("testutil: tipo no soportado en Seed")
		}
	}
}
