package billing

import (
	"context"

	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// Receipt datos completos para el comprobante de una factura.
type Receipt struct {
	Invoice *entity.Invoice
	Company *entity.Company
	Patient *entity.Patient
	Dentist *entity.User
}

// InvoicePDFGenerator puerto de salida para renderizar el comprobante en PDF
// (implementación: infrastructure/pdf con Maroto).
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, receipt Receipt) ([]byte, error)
}
