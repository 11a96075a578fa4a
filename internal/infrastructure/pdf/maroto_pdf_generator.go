// Package pdf genera el comprobante de una factura de la clínica.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Clínica            │  N° Factura + Emisión         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PACIENTE: Nombre + contacto + convenio                     │
//	│  PROFESIONAL: Dentista + especialidad                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DETALLE: Estado | Medio de pago | Vencimiento | Monto      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL A PAGAR                                              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR de verificación + leyenda                       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appbilling "github.com/jhoicas/Clinica-api/internal/application/billing"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 110, Blue: 120}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var statusLabels = map[string]string{
	entity.InvoicePending:  "Pendiente",
	entity.InvoicePaid:     "Pagada",
	entity.InvoiceCanceled: "Anulada",
	entity.InvoiceOverdue:  "Vencida",
}

var paymentLabels = map[string]string{
	entity.PaymentCreditCard: "Tarjeta de crédito",
	entity.PaymentDebitCard:  "Tarjeta de débito",
	entity.PaymentCash:       "Efectivo",
	entity.PaymentPix:        "PIX",
	entity.PaymentBankSlip:   "Boleto bancario",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, r appbilling.Receipt) ([]byte, error) {
	if r.Invoice == nil || r.Company == nil || r.Patient == nil {
		return nil, fmt.Errorf("pdf: comprobante incompleto")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Factura "+r.Invoice.Number, true).
		WithAuthor(r.Company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r.Invoice, r.Company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(patientRow(r.Patient))
	m.AddRows(dentistRow(r.Dentist))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(detailHeaderRow())
	m.AddRows(detailRow(r.Invoice))

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(r.Invoice))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(r.Invoice, r.Company))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: clínica (izq) y N° factura + emisión (der).
func headerRow(inv *entity.Invoice, company *entity.Company) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Comprobante de atención odontológica", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FACTURA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(inv.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Emisión: "+inv.IssueDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// patientRow: datos del paciente.
func patientRow(p *entity.Patient) core.Row {
	insurance := nonEmpty(p.HealthInsurance, "Particular")
	if p.HealthInsuranceNumber != "" {
		insurance += " N° " + p.HealthInsuranceNumber
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("PACIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(p.FullName(), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Email: %s   |   Tel: %s   |   Convenio: %s",
				nonEmpty(p.Email, "—"),
				nonEmpty(p.Phone, "—"),
				insurance,
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// dentistRow: profesional responsable. Sin dentista (dado de baja) se indica igual.
func dentistRow(d *entity.User) core.Row {
	name, specialty := "—", ""
	if d != nil {
		name = nonEmpty(d.DisplayName(), d.Email)
		specialty = d.Specialty
	}
	info := "Profesional: " + name
	if specialty != "" {
		info += "   |   Especialidad: " + specialty
	}
	return row.New(8).Add(
		col.New(12).Add(
			text.New(info, props.Text{Size: 8, Top: 2, Color: colorGray}),
		),
	)
}

// detailHeaderRow: cabecera de la tabla de detalle.
func detailHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Estado", 3, align.Left),
		h("Medio de pago", 3, align.Left),
		h("Vencimiento", 3, align.Center),
		h("Monto", 3, align.Right),
	)
}

func detailRow(inv *entity.Invoice) core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	return row.New(7).Add(
		cell(label(statusLabels, inv.Status), 3, align.Left),
		cell(label(paymentLabels, inv.PaymentMethod), 3, align.Left),
		cell(inv.DueDate.Format("02/01/2006"), 3, align.Center),
		cell("$"+formatMoney(inv.Amount), 3, align.Right),
	)
}

// totalRow: total alineado a la derecha.
func totalRow(inv *entity.Invoice) core.Row {
	return row.New(12).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL A PAGAR:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2, Top: 3,
		})),
		col.New(3).Add(text.New("$"+formatMoney(inv.Amount), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 3,
		})),
	)
}

// footerRow: QR con los datos de verificación + leyenda.
func footerRow(inv *entity.Invoice, company *entity.Company) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(verificationData(inv, company), props.Rect{
			Percent: 95,
			Center:  true,
		})),
		col.New(9).Add(
			text.New("Escanea el código para verificar los datos de esta factura.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("Conserve este comprobante como soporte del pago.", props.Text{
				Size: 6.5, Top: 14, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func verificationData(inv *entity.Invoice, company *entity.Company) string {
	return strings.Join([]string{
		"company=" + company.ID,
		"invoice=" + inv.ID,
		"number=" + inv.Number,
		"amount=" + inv.Amount.StringFixed(2),
		"issued=" + inv.IssueDate.Format("2006-01-02"),
	}, ";")
}

func label(labels map[string]string, key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney separa miles con punto y decimales con coma.
// Ej: 25000 → "25.000,00", 1234567.5 → "1.234.567,50"
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+3)
	if d.IsNegative() {
		buf = append(buf, '-')
	}
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	buf = append(buf, ',')
	buf = append(buf, frac...)
	return string(buf)
}
