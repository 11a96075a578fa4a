package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una factura.
const (
	InvoicePending  = "PENDING"
	InvoicePaid     = "PAID"
	InvoiceCanceled = "CANCELED"
	InvoiceOverdue  = "OVERDUE"
)

// Medios de pago.
const (
	PaymentCreditCard = "CREDIT_CARD"
	PaymentDebitCard  = "DEBIT_CARD"
	PaymentCash       = "CASH"
	PaymentPix        = "PIX"
	PaymentBankSlip   = "BANK_SLIP"
)

// ValidInvoiceStatus informa si el estado es válido.
func ValidInvoiceStatus(s string) bool {
	switch s {
	case InvoicePending, InvoicePaid, InvoiceCanceled, InvoiceOverdue:
		return true
	}
	return false
}

// ValidPaymentMethod informa si el medio de pago es válido.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentCash, PaymentPix, PaymentBankSlip:
		return true
	}
	return false
}

// Invoice factura emitida a un paciente por un tratamiento.
type Invoice struct {
	ID            string
	CompanyID     string
	PatientID     string
	DentistID     string
	Number        string // único por empresa
	Amount        decimal.Decimal
	Status        string
	PaymentMethod string
	IssueDate     time.Time
	DueDate       time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
