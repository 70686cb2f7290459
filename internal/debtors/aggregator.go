// Package debtors computes the per-client debt report by composing the
// external directory (clients, invoices) with local payment data.
package debtors

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/andes-erp/cobranzas/internal/directory"
	"github.com/andes-erp/cobranzas/internal/payments"
)

// PendingInvoice is one invoice with an outstanding balance.
type PendingInvoice struct {
	IDFactura      int64           `json:"id_factura"`
	MontoPendiente decimal.Decimal `json:"monto_pendiente"`
}

// Debtor is one client owing money, with the invoices still open and the
// payments already made against them.
type Debtor struct {
	IDCliente          int64              `json:"id_cliente"`
	Nombre             string             `json:"nombre"`
	Apellido           string             `json:"apellido"`
	TotalDeuda         decimal.Decimal    `json:"total_deuda"`
	FacturasPendientes []PendingInvoice   `json:"facturas_pendientes"`
	PagosRealizados    []payments.Payment `json:"pagos_realizados"`
}

// Aggregate computes the debt report. Only credit invoices not yet marked
// paid count; the paid portion comes from local line items. Clients whose
// pending balance is zero or negative are absent from the result, as are
// invoices whose client the directory does not know. Output is sorted by
// client id.
func Aggregate(clients []directory.Client, invoices []directory.Invoice, pays []payments.Payment, lineItems []payments.LineItem) []Debtor {
	paidByInvoice := make(map[int64]decimal.Decimal, len(lineItems))
	for _, li := range lineItems {
		paidByInvoice[li.IDFactura] = paidByInvoice[li.IDFactura].Add(li.MontoPagado)
	}

	clientsByID := make(map[int64]directory.Client, len(clients))
	for _, c := range clients {
		clientsByID[c.ID] = c
	}

	pending := map[int64][]PendingInvoice{}
	totals := map[int64]decimal.Decimal{}
	for _, inv := range invoices {
		if inv.TipoPago != directory.TipoPagoCredito || inv.EstadoFactura == directory.EstadoFacturaPagado {
			continue
		}
		if _, known := clientsByID[inv.IDCliente]; !known {
			continue
		}
		owed := inv.MontoTotal.Sub(paidByInvoice[inv.ID])
		if owed.Sign() <= 0 {
			continue
		}
		pending[inv.IDCliente] = append(pending[inv.IDCliente], PendingInvoice{
			IDFactura:      inv.ID,
			MontoPendiente: owed,
		})
		totals[inv.IDCliente] = totals[inv.IDCliente].Add(owed)
	}

	paysByClient := make(map[int64][]payments.Payment)
	for _, p := range pays {
		paysByClient[p.IDCliente] = append(paysByClient[p.IDCliente], p)
	}

	debtors := make([]Debtor, 0, len(pending))
	for clientID, open := range pending {
		c := clientsByID[clientID]
		made := paysByClient[clientID]
		if made == nil {
			made = []payments.Payment{}
		}
		debtors = append(debtors, Debtor{
			IDCliente:          clientID,
			Nombre:             c.Nombre,
			Apellido:           c.Apellido,
			TotalDeuda:         totals[clientID],
			FacturasPendientes: open,
			PagosRealizados:    made,
		})
	}
	sort.Slice(debtors, func(i, j int) bool { return debtors[i].IDCliente < debtors[j].IDCliente })
	return debtors
}
