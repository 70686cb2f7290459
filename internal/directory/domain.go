// Package directory reads clients and invoices from the external services
// that own them. This system never writes either entity; each call is a
// fresh round trip with no cache or retry.
package directory

import "github.com/shopspring/decimal"

// Client is an external client record. Unknown fields are ignored.
type Client struct {
	ID       int64  `json:"id_cliente"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
}

// Invoice is an external invoice record.
type Invoice struct {
	ID            int64           `json:"id_factura"`
	IDCliente     int64           `json:"id_cliente"`
	MontoTotal    decimal.Decimal `json:"monto_total"`
	TipoPago      string          `json:"tipo_pago"`
	EstadoFactura string          `json:"estado_factura"`
	IVA           decimal.Decimal `json:"iva"`
	NombreCliente string          `json:"nombre_cliente"`
}

// Invoice state and payment type values used for debt filtering.
const (
	TipoPagoCredito     = "Credito"
	EstadoFacturaPagado = "Pagado"
)
