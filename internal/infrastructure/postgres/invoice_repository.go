package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `id, company_id, patient_id, dentist_id, number, amount, status, payment_method,
	issue_date, due_date, created_at, updated_at`

// InvoiceRepo implementación del puerto InvoiceRepository sobre PostgreSQL.
// amount es NUMERIC y se mapea a decimal.Decimal (codec registrado en el pool).
type InvoiceRepo struct {
	db Querier
}

// NewInvoiceRepository construye el adaptador.
func NewInvoiceRepository(db Querier) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

// Create persiste una factura. Número repetido en la empresa: ErrDuplicate.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Exec(ctx, query,
		inv.ID, inv.CompanyID, inv.PatientID, inv.DentistID, inv.Number, inv.Amount, inv.Status, inv.PaymentMethod,
		inv.IssueDate, inv.DueDate, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByID obtiene una factura de la empresa indicada.
func (r *InvoiceRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Invoice, error) {
	if !validID(companyID, id) {
		return nil, nil
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 AND company_id = $2`
	inv, err := scanInvoice(r.db.QueryRow(ctx, query, id, companyID))
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// ListByCompany lista facturas, las más recientes primero; patientID vacío = todas.
func (r *InvoiceRepo) ListByCompany(ctx context.Context, companyID, patientID string, limit, offset int) ([]*entity.Invoice, error) {
	if !validID(companyID) || (patientID != "" && !validID(patientID)) {
		return nil, nil
	}
	limit, offset = clampPage(limit, offset)
	query := `SELECT ` + invoiceColumns + ` FROM invoices
		WHERE company_id = $1 AND ($2 = '' OR patient_id::text = $2)
		ORDER BY issue_date DESC, number LIMIT $3 OFFSET $4`
	rows, err := r.db.Query(ctx, query, companyID, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// Update modifica la factura. company_id no se modifica.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	if !validID(inv.CompanyID, inv.ID) {
		return domain.ErrNotFound
	}
	query := `
		UPDATE invoices SET patient_id = $3, dentist_id = $4, number = $5, amount = $6, status = $7,
			payment_method = $8, issue_date = $9, due_date = $10, updated_at = $11
		WHERE id = $1 AND company_id = $2`
	tag, err := r.db.Exec(ctx, query,
		inv.ID, inv.CompanyID, inv.PatientID, inv.DentistID, inv.Number, inv.Amount, inv.Status,
		inv.PaymentMethod, inv.IssueDate, inv.DueDate, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la factura.
func (r *InvoiceRepo) Delete(ctx context.Context, companyID, id string) error {
	if !validID(companyID, id) {
		return domain.ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM invoices WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.PatientID, &inv.DentistID, &inv.Number, &inv.Amount, &inv.Status,
		&inv.PaymentMethod, &inv.IssueDate, &inv.DueDate, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}
