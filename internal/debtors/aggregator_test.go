package debtors

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/andes-erp/cobranzas/internal/directory"
	"github.com/andes-erp/cobranzas/internal/payments"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAggregateFullyPaidInvoiceExcluded(t *testing.T) {
	clients := []directory.Client{{ID: 1, Nombre: "Ana", Apellido: "Mora"}}
	invoices := []directory.Invoice{
		{ID: 101, IDCliente: 1, MontoTotal: dec("300.00"), TipoPago: "Credito", EstadoFactura: "Pendiente"},
	}
	lineItems := []payments.LineItem{
		{ID: 1, IDPago: 1, IDFactura: 101, MontoPagado: dec("300.00")},
	}

	debtors := Aggregate(clients, invoices, nil, lineItems)
	require.Empty(t, debtors)
}

func TestAggregatePartialPaymentLeavesPending(t *testing.T) {
	clients := []directory.Client{{ID: 1, Nombre: "Ana", Apellido: "Mora"}}
	invoices := []directory.Invoice{
		{ID: 101, IDCliente: 1, MontoTotal: dec("500.00"), TipoPago: "Credito", EstadoFactura: "Pendiente"},
	}
	lineItems := []payments.LineItem{
		{ID: 1, IDPago: 1, IDFactura: 101, MontoPagado: dec("150.00")},
	}

	debtors := Aggregate(clients, invoices, nil, lineItems)
	require.Len(t, debtors, 1)
	require.Equal(t, int64(1), debtors[0].IDCliente)
	require.True(t, debtors[0].TotalDeuda.Equal(dec("350.00")))
	require.Len(t, debtors[0].FacturasPendientes, 1)
	require.True(t, debtors[0].FacturasPendientes[0].MontoPendiente.Equal(dec("350.00")))
}

func TestAggregateFiltersNonCreditAndPaidInvoices(t *testing.T) {
	clients := []directory.Client{{ID: 1, Nombre: "Ana", Apellido: "Mora"}}
	invoices := []directory.Invoice{
		{ID: 101, IDCliente: 1, MontoTotal: dec("100.00"), TipoPago: "Contado", EstadoFactura: "Pendiente"},
		{ID: 102, IDCliente: 1, MontoTotal: dec("200.00"), TipoPago: "Credito", EstadoFactura: "Pagado"},
	}

	debtors := Aggregate(clients, invoices, nil, nil)
	require.Empty(t, debtors)
}

func TestAggregateUnknownClientInvoiceExcluded(t *testing.T) {
	clients := []directory.Client{{ID: 1, Nombre: "Ana", Apellido: "Mora"}}
	invoices := []directory.Invoice{
		{ID: 101, IDCliente: 9, MontoTotal: dec("100.00"), TipoPago: "Credito", EstadoFactura: "Pendiente"},
	}

	debtors := Aggregate(clients, invoices, nil, nil)
	require.Empty(t, debtors)
}

func TestAggregateGroupsPerClientAndSortsByID(t *testing.T) {
	clients := []directory.Client{
		{ID: 2, Nombre: "Luis", Apellido: "Paz"},
		{ID: 1, Nombre: "Ana", Apellido: "Mora"},
	}
	invoices := []directory.Invoice{
		{ID: 201, IDCliente: 2, MontoTotal: dec("50.00"), TipoPago: "Credito", EstadoFactura: "Pendiente"},
		{ID: 101, IDCliente: 1, MontoTotal: dec("120.00"), TipoPago: "Credito", EstadoFactura: "Pendiente"},
		{ID: 102, IDCliente: 1, MontoTotal: dec("30.00"), TipoPago: "Credito", EstadoFactura: "Vencido"},
	}
	pays := []payments.Payment{
		{ID: 1, Numero: "PG-1", IDCliente: 1, Detalles: []payments.LineItem{
			{ID: 1, IDPago: 1, IDFactura: 101, MontoPagado: dec("20.00")},
		}},
	}
	lineItems := []payments.LineItem{
		{ID: 1, IDPago: 1, IDFactura: 101, MontoPagado: dec("20.00")},
	}

	debtors := Aggregate(clients, invoices, pays, lineItems)
	require.Len(t, debtors, 2)

	require.Equal(t, int64(1), debtors[0].IDCliente)
	require.Equal(t, "Ana", debtors[0].Nombre)
	require.True(t, debtors[0].TotalDeuda.Equal(dec("130.00")))
	require.Len(t, debtors[0].FacturasPendientes, 2)
	require.Len(t, debtors[0].PagosRealizados, 1)
	require.Equal(t, "PG-1", debtors[0].PagosRealizados[0].Numero)

	require.Equal(t, int64(2), debtors[1].IDCliente)
	require.True(t, debtors[1].TotalDeuda.Equal(dec("50.00")))
	require.NotNil(t, debtors[1].PagosRealizados)
	require.Empty(t, debtors[1].PagosRealizados)
}

func TestAggregateOverpaidInvoiceDiscarded(t *testing.T) {
	clients := []directory.Client{{ID: 1, Nombre: "Ana", Apellido: "Mora"}}
	invoices := []directory.Invoice{
		{ID: 101, IDCliente: 1, MontoTotal: dec("100.00"), TipoPago: "Credito", EstadoFactura: "Pendiente"},
	}
	lineItems := []payments.LineItem{
		{ID: 1, IDPago: 1, IDFactura: 101, MontoPagado: dec("120.00")},
	}

	debtors := Aggregate(clients, invoices, nil, lineItems)
	require.Empty(t, debtors)
}
