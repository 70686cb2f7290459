package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/andes-erp/cobranzas/internal/payments"
)

// Renderer builds payment documents and hands them to Gotenberg.
type Renderer struct {
	gotenberg *Client
}

// NewRenderer constructs a Renderer instance.
func NewRenderer(gotenberg *Client) *Renderer {
	return &Renderer{gotenberg: gotenberg}
}

// RenderReceipt produces the receipt PDF for one payment.
func (r *Renderer) RenderReceipt(ctx context.Context, payment *payments.Payment) ([]byte, error) {
	return r.gotenberg.RenderHTML(ctx, receiptHTML(payment))
}

// RenderGeneralReport produces the PDF covering every payment.
func (r *Renderer) RenderGeneralReport(ctx context.Context, list []payments.Payment) ([]byte, error) {
	return r.gotenberg.RenderHTML(ctx, generalReportHTML(list))
}

var esPrinter = message.NewPrinter(language.EuropeanSpanish)

func formatAmount(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return esPrinter.Sprintf("%.2f", f)
}

func formatDate(d payments.Date) string {
	return d.Format("02/01/2006")
}

const styleBlock = "@page{margin:2cm 1.5cm;}" +
	"body{font-family:sans-serif;font-size:12px;color:#222;}" +
	"h1{font-size:20px;margin-bottom:4px;}" +
	"h2{font-size:14px;margin-top:24px;}" +
	"table{width:100%;border-collapse:collapse;margin-top:8px;}" +
	"th,td{border:1px solid #ccc;padding:6px;text-align:right;}" +
	"th{text-align:left;background:#f0f0f0;}" +
	"thead{display:table-header-group;}" +
	"tbody tr{page-break-inside:avoid;}" +
	".label{text-align:left;}" +
	".meta td{border:none;text-align:left;padding:2px 0;}"

func openDocument(b *strings.Builder, title string) {
	b.WriteString("<html><head><meta charset=\"utf-8\"><style>")
	b.WriteString(styleBlock)
	b.WriteString("</style></head><body><h1>")
	b.WriteString(escape(title))
	b.WriteString("</h1>")
}

// receiptHTML lays out one payment with its line items. The output is a
// pure function of the payment so the same data always produces the same
// document.
func receiptHTML(p *payments.Payment) string {
	var b strings.Builder
	openDocument(&b, "Comprobante de Pago")

	b.WriteString("<table class=\"meta\"><tbody>")
	writeMetaRow(&b, "Número de pago", p.Numero)
	writeMetaRow(&b, "Fecha", formatDate(p.Fecha))
	writeMetaRow(&b, "Cuenta bancaria", fmt.Sprintf("%d", p.IDCuenta))
	writeMetaRow(&b, "Cliente", fmt.Sprintf("%d", p.IDCliente))
	if p.Descripcion != nil {
		writeMetaRow(&b, "Descripción", *p.Descripcion)
	}
	b.WriteString("</tbody></table>")

	b.WriteString("<h2>Detalles</h2>")
	b.WriteString("<table><thead><tr><th>Detalle</th><th>Factura</th><th>Monto pagado</th></tr></thead><tbody>")
	if len(p.Detalles) == 0 {
		b.WriteString("<tr><td class=\"label\" colspan=\"3\">Sin detalles de pago</td></tr>")
	}
	total := decimal.Zero
	for _, li := range p.Detalles {
		b.WriteString("<tr><td class=\"label\">")
		b.WriteString(fmt.Sprintf("%d", li.ID))
		b.WriteString("</td><td>")
		b.WriteString(fmt.Sprintf("%d", li.IDFactura))
		b.WriteString("</td><td>")
		b.WriteString(escape(formatAmount(li.MontoPagado)))
		b.WriteString("</td></tr>")
		total = total.Add(li.MontoPagado)
	}
	b.WriteString("</tbody></table>")
	if len(p.Detalles) > 0 {
		b.WriteString("<p><strong>Total pagado: ")
		b.WriteString(escape(formatAmount(total)))
		b.WriteString("</strong></p>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

// generalReportHTML lays out every payment with its line items and a
// per-payment total.
func generalReportHTML(list []payments.Payment) string {
	var b strings.Builder
	openDocument(&b, "Reporte General de Pagos")
	b.WriteString(fmt.Sprintf("<p>Pagos registrados: %d</p>", len(list)))

	b.WriteString("<table><thead><tr>" +
		"<th>Pago</th><th>Número</th><th>Fecha</th><th>Cuenta</th><th>Cliente</th><th>Factura</th><th>Monto</th>" +
		"</tr></thead><tbody>")
	if len(list) == 0 {
		b.WriteString("<tr><td class=\"label\" colspan=\"7\">Sin pagos registrados</td></tr>")
	}
	grandTotal := decimal.Zero
	for _, p := range list {
		if len(p.Detalles) == 0 {
			writeReportRow(&b, &p, "Sin detalles de pago", decimal.Zero, false)
			continue
		}
		subtotal := decimal.Zero
		for _, li := range p.Detalles {
			writeReportRow(&b, &p, fmt.Sprintf("%d", li.IDFactura), li.MontoPagado, true)
			subtotal = subtotal.Add(li.MontoPagado)
		}
		b.WriteString("<tr><td class=\"label\" colspan=\"6\"><strong>Total pago ")
		b.WriteString(escape(p.Numero))
		b.WriteString("</strong></td><td><strong>")
		b.WriteString(escape(formatAmount(subtotal)))
		b.WriteString("</strong></td></tr>")
		grandTotal = grandTotal.Add(subtotal)
	}
	b.WriteString("</tbody></table>")
	b.WriteString("<p><strong>Total general: ")
	b.WriteString(escape(formatAmount(grandTotal)))
	b.WriteString("</strong></p>")
	b.WriteString("</body></html>")
	return b.String()
}

func writeReportRow(b *strings.Builder, p *payments.Payment, invoice string, amount decimal.Decimal, hasAmount bool) {
	b.WriteString("<tr><td class=\"label\">")
	b.WriteString(fmt.Sprintf("%d", p.ID))
	b.WriteString("</td><td class=\"label\">")
	b.WriteString(escape(p.Numero))
	b.WriteString("</td><td class=\"label\">")
	b.WriteString(formatDate(p.Fecha))
	b.WriteString("</td><td>")
	b.WriteString(fmt.Sprintf("%d", p.IDCuenta))
	b.WriteString("</td><td>")
	b.WriteString(fmt.Sprintf("%d", p.IDCliente))
	b.WriteString("</td><td class=\"label\">")
	b.WriteString(escape(invoice))
	b.WriteString("</td><td>")
	if hasAmount {
		b.WriteString(escape(formatAmount(amount)))
	} else {
		b.WriteString("&mdash;")
	}
	b.WriteString("</td></tr>")
}

func writeMetaRow(b *strings.Builder, label, value string) {
	b.WriteString("<tr><td><strong>")
	b.WriteString(escape(label))
	b.WriteString(":</strong></td><td>")
	b.WriteString(escape(value))
	b.WriteString("</td></tr>")
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&#39;",
)

func escape(v string) string {
	return htmlEscaper.Replace(v)
}
