package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceRequest entrada para crear/actualizar una factura.
type InvoiceRequest struct {
	PatientID     string          `json:"patient_id"`
	DentistID     string          `json:"dentist_id"`
	Number        string          `json:"number"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"` // vacío = PENDING
	PaymentMethod string          `json:"payment_method"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       time.Time       `json:"due_date"`
}

// InvoiceResponse salida de una factura.
type InvoiceResponse struct {
	ID            string          `json:"id"`
	PatientID     string          `json:"patient_id"`
	DentistID     string          `json:"dentist_id"`
	Number        string          `json:"number"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       time.Time       `json:"due_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InvoiceListResponse listado paginado.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
