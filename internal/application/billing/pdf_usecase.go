package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Clinica-api/internal/application/tenancy"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

// PDFUseCase genera el comprobante (PDF) de una factura de la empresa del llamador.
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	companyRepo repository.CompanyRepository
	patientRepo repository.PatientRepository
	userRepo    repository.UserRepository
	guard       *tenancy.Guard
	generator   InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	companyRepo repository.CompanyRepository,
	patientRepo repository.PatientRepository,
	userRepo repository.UserRepository,
	guard *tenancy.Guard,
	generator InvoicePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo: invoiceRepo,
		companyRepo: companyRepo,
		patientRepo: patientRepo,
		userRepo:    userRepo,
		guard:       guard,
		generator:   generator,
	}
}

// DownloadInvoicePDF carga la factura con paciente, dentista y empresa y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe o es de otra empresa.
//   - domain.ErrUnauthenticated  si no hay identidad en la petición.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, invoiceID string) (pdfBytes []byte, filename string, err error) {
	// ── 1. Tenant del llamador ────────────────────────────────────────────────
	companyID, err := uc.guard.ResolveTenant(ctx)
	if err != nil {
		return nil, "", err
	}

	// ── 2. Cargar factura ─────────────────────────────────────────────────────
	inv, err := uc.invoiceRepo.GetByID(ctx, companyID, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if err := uc.guard.AuthorizeAccess(inv, companyID); err != nil {
		return nil, "", err
	}

	// ── 3. Empresa, paciente y dentista ───────────────────────────────────────
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, "", fmt.Errorf("%w: empresa %s no existe", domain.ErrInconsistentState, companyID)
	}
	patient, err := uc.patientRepo.GetByID(ctx, companyID, inv.PatientID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener paciente: %w", err)
	}
	if err := uc.guard.AuthorizeAccess(patient, companyID); err != nil {
		return nil, "", err
	}
	// El dentista pudo haber sido dado de baja: el comprobante sale igual.
	dentist, err := uc.userRepo.GetByID(ctx, companyID, inv.DentistID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener dentista: %w", err)
	}

	// ── 4. Generar PDF ────────────────────────────────────────────────────────
	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, Receipt{
		Invoice: inv,
		Company: company,
		Patient: patient,
		Dentist: dentist,
	})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	filename = fmt.Sprintf("factura_%s.pdf", sanitizeFilename(inv.Number))
	return pdfBytes, filename, nil
}

// sanitizeFilename deja solo caracteres seguros para Content-Disposition.
func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
