package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Clinica-api/internal/application/authctx"
	"github.com/jhoicas/Clinica-api/internal/application/dto"
	"github.com/jhoicas/Clinica-api/internal/application/tenancy"
	"github.com/jhoicas/Clinica-api/internal/application/usecase"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/testutil"
	"github.com/jhoicas/Clinica-api/pkg/password"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures: dos clínicas (A y B) con su equipo y un paciente cada una
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyA = "company-a"
	companyB = "company-b"

	adminA   = "admin@a.com"
	dentistA = "dentista@a.com"
	recepA   = "recepcion@a.com"
	adminB   = "admin@b.com"

	dentistAID = "user-dentist-a"
	recepAID   = "user-recep-a"
	dentistBID = "user-dentist-b"
	patientAID = "patient-a"
	patientBID = "patient-b"
)

type env struct {
	store        *testutil.Store
	guard        *tenancy.Guard
	users        *usecase.UserUseCase
	patients     *usecase.PatientUseCase
	appointments *usecase.AppointmentUseCase
	invoices     *usecase.InvoiceUseCase
	records      *usecase.MedicalRecordUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s := testutil.NewStore()
	now := time.Now()
	s.Seed(
		&entity.Company{ID: companyA, Name: "Clínica A", CreatedAt: now},
		&entity.Company{ID: companyB, Name: "Clínica B", CreatedAt: now},
		&entity.User{ID: "user-admin-a", CompanyID: companyA, Email: adminA, Role: entity.RoleAdmin, FirstName: "Ana", LastName: "A"},
		&entity.User{ID: dentistAID, CompanyID: companyA, Email: dentistA, Role: entity.RoleDentist, FirstName: "Diego", LastName: "A"},
		&entity.User{ID: recepAID, CompanyID: companyA, Email: recepA, Role: entity.RoleReceptionist, FirstName: "Rosa", LastName: "A"},
		&entity.User{ID: "user-admin-b", CompanyID: companyB, Email: adminB, Role: entity.RoleAdmin, FirstName: "Beto", LastName: "B"},
		&entity.User{ID: dentistBID, CompanyID: companyB, Email: "dentista@b.com", Role: entity.RoleDentist, FirstName: "Dora", LastName: "B"},
		&entity.Patient{ID: patientAID, CompanyID: companyA, FirstName: "Pablo", LastName: "A"},
		&entity.Patient{ID: patientBID, CompanyID: companyB, FirstName: "Paula", LastName: "B"},
	)
	g := tenancy.NewGuard(s.Users())
	return &env{
		store:        s,
		guard:        g,
		users:        usecase.NewUserUseCase(s.Users(), password.NewHasher(bcrypt.MinCost), g),
		patients:     usecase.NewPatientUseCase(s.Patients(), g),
		appointments: usecase.NewAppointmentUseCase(s.Appointments(), s.Patients(), s.Users(), g),
		invoices:     usecase.NewInvoiceUseCase(s.Invoices(), s.Patients(), s.Users(), g),
		records:      usecase.NewMedicalRecordUseCase(s.MedicalRecords(), s.Patients(), s.Users(), g),
	}
}

func as(t *testing.T, email string) context.Context {
	t.Helper()
	ctx, release := authctx.Begin(context.Background())
	t.Cleanup(release)
	require.NoError(t, authctx.Establish(ctx, authctx.Identity{Email: email}))
	return ctx
}

func invoiceReq(number string) dto.InvoiceRequest {
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return dto.InvoiceRequest{
		PatientID:     patientAID,
		DentistID:     dentistAID,
		Number:        number,
		Amount:        decimal.RequireFromString("150.50"),
		PaymentMethod: entity.PaymentPix,
		IssueDate:     issue,
		DueDate:       issue.AddDate(0, 0, 30),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Pacientes
// ──────────────────────────────────────────────────────────────────────────────

func TestPaciente_CreateSellaEmpresaDelLlamador(t *testing.T) {
	e := newEnv(t)
	out, err := e.patients.Create(as(t, recepA), dto.PatientRequest{FirstName: "Nuevo", LastName: "Paciente", BirthDate: "1990-05-17"})
	require.NoError(t, err)
	assert.Equal(t, "1990-05-17", out.BirthDate)

	_, err = e.patients.GetByID(as(t, adminB), out.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "B no ve el paciente de A")

	got, err := e.patients.GetByID(as(t, adminA), out.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nuevo Paciente", got.Name)
}

func TestPaciente_OtraEmpresa_MismoErrorQueInexistente(t *testing.T) {
	e := newEnv(t)
	ctx := as(t, adminA)

	_, errOther := e.patients.GetByID(ctx, patientBID)
	_, errMissing := e.patients.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, errOther, domain.ErrNotFound)
	assert.Equal(t, errMissing, errOther)
}

func TestPaciente_ListSoloPropios(t *testing.T) {
	e := newEnv(t)
	out, err := e.patients.List(as(t, adminA), dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, patientAID, out.Items[0].ID)
	assert.Equal(t, 20, out.Page.Limit)
}

func TestPaciente_UpdateYDeleteDeOtraEmpresa_NoEncontrado(t *testing.T) {
	e := newEnv(t)
	ctx := as(t, adminA)

	_, err := e.patients.Update(ctx, patientBID, dto.PatientRequest{FirstName: "Hack", LastName: "Eado"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, e.patients.Delete(ctx, patientBID), domain.ErrNotFound)

	got, err := e.patients.GetByID(as(t, adminB), patientBID)
	require.NoError(t, err)
	assert.Equal(t, "Paula", got.FirstName, "el paciente de B queda intacto")
}

func TestPaciente_Validacion(t *testing.T) {
	e := newEnv(t)
	ctx := as(t, adminA)
	tests := []struct {
		name string
		in   dto.PatientRequest
	}{
		{"sin nombre", dto.PatientRequest{LastName: "X"}},
		{"fecha mal formada", dto.PatientRequest{FirstName: "A", LastName: "B", BirthDate: "17/05/1990"}},
		{"fecha futura", dto.PatientRequest{FirstName: "A", LastName: "B", BirthDate: time.Now().AddDate(1, 0, 0).Format(dto.DateLayout)}},
		{"email inválido", dto.PatientRequest{FirstName: "A", LastName: "B", Email: "no-es-email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.patients.Create(ctx, tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestPaciente_DeleteConFacturas_Conflicto(t *testing.T) {
	e := newEnv(t)
	ctx := as(t, adminA)
	_, err := e.invoices.Create(ctx, invoiceReq("F-001"))
	require.NoError(t, err)

	assert.ErrorIs(t, e.patients.Delete(ctx, patientAID), domain.ErrConflict)
}

func TestPaciente_SinIdentidad_NoAutenticado(t *testing.T) {
	e := newEnv(t)
	_, err := e.patients.List(context.Background(), dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

// ──────────────────────────────────────────────────────────────────────────────
// Citas
// ──────────────────────────────────────────────────────────────────────────────

func TestCita_ReferenciasDeOtraEmpresa_NoEncontrado(t *testing.T) {
	e := newEnv(t)
	ctx := as(t, recepA)
	when := time.Now().Add(48 * time.Hour)

	_, err := e.appointments.Create(ctx, dto.AppointmentRequest{PatientID: patientBID, DentistID: dentistAID, ScheduledAt: when, ProcedureType: "Limpieza"})
	assert.ErrorIs(t, err, domain.ErrNotFound, "paciente de B")

	_, err = e.appointments.Create(ctx, dto.AppointmentRequest{PatientID: patientAID, DentistID: dentistBID, ScheduledAt: when, ProcedureType: "Limpieza"})
	assert.ErrorIs(t, err, domain.ErrNotFound, "dentista de B")

	_, err = e.appointments.Create(ctx, dto.AppointmentRequest{PatientID: patientAID, DentistID: recepAID, ScheduledAt: when, ProcedureType: "Limpieza"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "la recepcionista no es dentista")
}

func TestCita_CicloCompleto(t *testing.T) {
	e := newEnv(t)
	ctx := as(t, recepA)
	when := time.Date(2026, 11, 3, 10, 0, 0, 0, time.UTC)

	created, err := e.appointments.Create(ctx, dto.AppointmentRequest{PatientID: patientAID, DentistID: dentistAID, ScheduledAt: when, ProcedureType: "Endodoncia"})
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentScheduled, created.Status)

	updated, err := e.appointments.Update(ctx, created.ID, dto.AppointmentRequest{
		PatientID: patientAID, DentistID: dentistAID, ScheduledAt: when, ProcedureType: "Endodoncia", Status: entity.AppointmentDone,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentDone, updated.Status)

	list, err := e.appointments.List(ctx, patientAID, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	_, err = e.appointments.GetByID(as(t, adminB), created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, e.appointments.Delete(as(t, adminB), created.ID), domain.ErrNotFound)

	require.NoError(t, e.appointments.Delete(ctx, created.ID))
	_, err = e.appointments.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCita_EstadoInvalido(t *testing.T) {
	e := newEnv(t)
	_, err := e.appointments.Create(as(t, recepA), dto.AppointmentRequest{
		PatientID: patientAID, DentistID: dentistAID, ScheduledAt: time.Now(), ProcedureType: "Limpieza", Status: "PERDIDA",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Facturas
// ──────────────────────────────────────────────────────────────────────────────

func TestFactura_NumeroUnicoPorEmpresa(t *testing.T) {
	e := newEnv(t)
	_, err := e.invoices.Create(as(t, adminA), invoiceReq("F-001"))
	require.NoError(t, err)

	_, err = e.invoices.Create(as(t, adminA), invoiceReq("F-001"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	reqB := invoiceReq("F-001")
	reqB.PatientID, reqB.DentistID = patientBID, dentistBID
	_, err = e.invoices.Create(as(t, adminB), reqB)
	assert.NoError(t, err, "otra empresa puede usar el mismo número")
}

func TestFactura_Validacion(t *testing.T) {
	e := newEnv(t)
	ctx := as(t, adminA)

	zero := invoiceReq("F-1")
	zero.Amount = decimal.Zero
	badDue := invoiceReq("F-2")
	badDue.DueDate = badDue.IssueDate.AddDate(0, 0, -1)
	badMethod := invoiceReq("F-3")
	badMethod.PaymentMethod = "BITCOIN"
	badStatus := invoiceReq("F-4")
	badStatus.Status = "ANULADA"

	for name, in := range map[string]dto.InvoiceRequest{
		"monto cero":         zero,
		"vence antes":        badDue,
		"medio de pago":      badMethod,
		"estado desconocido": badStatus,
		"sin número":         invoiceReq(" "),
	} {
		_, err := e.invoices.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
}

func TestFactura_UpdateMarcaPagada(t *testing.T) {
	e := newEnv(t)
	ctx := as(t, adminA)
	created, err := e.invoices.Create(ctx, invoiceReq("F-010"))
	require.NoError(t, err)
	assert.Equal(t, entity.InvoicePending, created.Status)
	assert.True(t, decimal.RequireFromString("150.50").Equal(created.Amount))

	in := invoiceReq("F-010")
	in.Status = entity.InvoicePaid
	updated, err := e.invoices.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoicePaid, updated.Status)

	_, err = e.invoices.Update(as(t, adminB), created.ID, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Historia clínica
// ──────────────────────────────────────────────────────────────────────────────

func TestHistoria_FechaPorDefectoYAislamiento(t *testing.T) {
	e := newEnv(t)
	ctx := as(t, dentistA)
	before := time.Now()

	rec, err := e.records.Create(ctx, dto.MedicalRecordRequest{PatientID: patientAID, DentistID: dentistAID, Details: "Caries en 36"})
	require.NoError(t, err)
	assert.False(t, rec.RecordDate.Before(before))

	_, err = e.records.GetByID(as(t, adminB), rec.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := e.records.List(as(t, adminB), "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	_, err = e.records.Create(ctx, dto.MedicalRecordRequest{PatientID: patientAID, DentistID: dentistAID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Equipo
// ──────────────────────────────────────────────────────────────────────────────

func TestEquipo_SoloAdminCreaMiembros(t *testing.T) {
	e := newEnv(t)
	in := dto.CreateMemberRequest{Email: "nuevo@a.com", Password: "pw1", FirstName: "N", LastName: "A", Role: entity.RoleDentist, Specialty: "Ortodoncia"}

	_, err := e.users.CreateMember(as(t, recepA), in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := e.users.CreateMember(as(t, adminA), in)
	require.NoError(t, err)
	assert.Equal(t, companyA, out.CompanyID)
	assert.Equal(t, "Ortodoncia", out.Specialty)

	_, err = e.users.CreateMember(as(t, adminA), in)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	in.Email, in.Role = "otro@a.com", "SUPERUSER"
	_, err = e.users.CreateMember(as(t, adminA), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEquipo_ListYGetPorEmpresa(t *testing.T) {
	e := newEnv(t)

	list, err := e.users.ListMembers(as(t, adminA), dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 3)
	for _, u := range list.Items {
		assert.Equal(t, companyA, u.CompanyID)
	}

	_, err = e.users.GetMember(as(t, adminA), dentistBID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
