package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Clinica-api/internal/application/dto"
	"github.com/jhoicas/Clinica-api/internal/application/tenancy"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

// InvoiceUseCase facturación a pacientes. El número es único por empresa.
type InvoiceUseCase struct {
	repo  repository.InvoiceRepository
	refs  references
	guard *tenancy.Guard
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	repo repository.InvoiceRepository,
	patients repository.PatientRepository,
	users repository.UserRepository,
	guard *tenancy.Guard,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		repo:  repo,
		refs:  references{patients: patients, users: users, guard: guard},
		guard: guard,
	}
}

// Create emite una factura. Devuelve ErrDuplicate si el número ya existe en la empresa.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.InvoiceRequest) (*dto.InvoiceResponse, error) {
	now := time.Now()
	inv := &entity.Invoice{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}
	if err := applyInvoice(inv, in); err != nil {
		return nil, err
	}
	companyID, err := uc.guard.ScopeWrite(ctx, inv)
	if err != nil {
		return nil, err
	}
	if err := uc.refs.both(ctx, companyID, inv.PatientID, inv.DentistID); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// GetByID obtiene una factura de la empresa del llamador.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	_, inv, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// List lista facturas, opcionalmente de un paciente.
func (uc *InvoiceUseCase) List(ctx context.Context, patientID string, page dto.PageRequest) (*dto.InvoiceListResponse, error) {
	companyID, err := uc.guard.ResolveTenant(ctx)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()
	invs, err := uc.repo.ListByCompany(ctx, companyID, patientID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.InvoiceListResponse{
		Items: make([]dto.InvoiceResponse, 0, len(invs)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, inv := range invs {
		if uc.guard.AuthorizeAccess(inv, companyID) != nil {
			continue
		}
		out.Items = append(out.Items, *toInvoiceResponse(inv))
	}
	return out, nil
}

// Update modifica una factura (p.ej. marcarla como pagada).
func (uc *InvoiceUseCase) Update(ctx context.Context, id string, in dto.InvoiceRequest) (*dto.InvoiceResponse, error) {
	companyID, inv, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyInvoice(inv, in); err != nil {
		return nil, err
	}
	if err := uc.refs.both(ctx, companyID, inv.PatientID, inv.DentistID); err != nil {
		return nil, err
	}
	inv.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// Delete elimina la factura.
func (uc *InvoiceUseCase) Delete(ctx context.Context, id string) error {
	companyID, _, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	return uc.repo.Delete(ctx, companyID, id)
}

func (uc *InvoiceUseCase) load(ctx context.Context, id string) (string, *entity.Invoice, error) {
	companyID, err := uc.guard.ResolveTenant(ctx)
	if err != nil {
		return "", nil, err
	}
	inv, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return "", nil, err
	}
	if err := uc.guard.AuthorizeAccess(inv, companyID); err != nil {
		return "", nil, err
	}
	return companyID, inv, nil
}

func applyInvoice(inv *entity.Invoice, in dto.InvoiceRequest) error {
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return fmt.Errorf("%w: number requerido", domain.ErrInvalidInput)
	}
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: amount debe ser mayor que 0", domain.ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = entity.InvoicePending
	}
	if !entity.ValidInvoiceStatus(status) {
		return fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	if !entity.ValidPaymentMethod(in.PaymentMethod) {
		return fmt.Errorf("%w: payment_method %q", domain.ErrInvalidInput, in.PaymentMethod)
	}
	if in.IssueDate.IsZero() || in.DueDate.IsZero() {
		return fmt.Errorf("%w: issue_date y due_date requeridos", domain.ErrInvalidInput)
	}
	if in.DueDate.Before(in.IssueDate) {
		return fmt.Errorf("%w: due_date anterior a issue_date", domain.ErrInvalidInput)
	}
	inv.PatientID = in.PatientID
	inv.DentistID = in.DentistID
	inv.Number = number
	inv.Amount = in.Amount.Round(2)
	inv.Status = status
	inv.PaymentMethod = in.PaymentMethod
	inv.IssueDate = in.IssueDate
	inv.DueDate = in.DueDate
	return nil
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	return &dto.InvoiceResponse{
		ID:            inv.ID,
		PatientID:     inv.PatientID,
		DentistID:     inv.DentistID,
		Number:        inv.Number,
		Amount:        inv.Amount,
		Status:        inv.Status,
		PaymentMethod: inv.PaymentMethod,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}
