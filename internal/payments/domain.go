// Package payments implements payment headers (pagos) and their line
// items (pagos_detalle). A payment exclusively owns its line items:
// deleting the header cascades over them inside one transaction.
package payments

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andes-erp/cobranzas/internal/platform/httpx"
)

// Date is the wire date format: accepts YYYY-MM-DD or RFC3339 on input and
// always emits YYYY-MM-DD.
type Date struct {
	time.Time
}

// UnmarshalJSON parses the supported date layouts.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("fecha inválida: %q", s)
}

// MarshalJSON emits the date-only layout.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format("2006-01-02"))
}

// Payment model. Cliente and Factura identifiers reference entities owned
// by the external directory services.
type Payment struct {
	ID          int64      `json:"id_pago"`
	Numero      string     `json:"numero_pago"`
	Descripcion *string    `json:"descripcion"`
	Fecha       Date       `json:"fecha"`
	IDCuenta    int64      `json:"id_cuenta"`
	IDCliente   int64      `json:"id_cliente"`
	PDFGenerado bool       `json:"pdf_generado"`
	Detalles    []LineItem `json:"detalles"`
}

// LineItem records one partial payment against an external invoice.
type LineItem struct {
	ID          int64           `json:"id_detalle"`
	IDPago      int64           `json:"id_pago"`
	IDFactura   int64           `json:"id_factura"`
	MontoPagado decimal.Decimal `json:"monto_pagado"`
}

// CreateInput is the command for creating a payment header.
type CreateInput struct {
	Numero      string  `json:"numero_pago" validate:"required"`
	Descripcion *string `json:"descripcion"`
	Fecha       Date    `json:"fecha" validate:"required"`
	IDCuenta    int64   `json:"id_cuenta" validate:"required"`
	IDCliente   int64   `json:"id_cliente" validate:"required"`
	PDFGenerado bool    `json:"pdf_generado"`
}

// Patch distinguishes absent from null fields on payment update.
type Patch struct {
	Numero      httpx.Field[string] `json:"numero_pago"`
	Descripcion httpx.Field[string] `json:"descripcion"`
	Fecha       httpx.Field[Date]   `json:"fecha"`
	IDCuenta    httpx.Field[int64]  `json:"id_cuenta"`
	IDCliente   httpx.Field[int64]  `json:"id_cliente"`
	PDFGenerado httpx.Field[bool]   `json:"pdf_generado"`
}

// CreateLineItemInput is the command for creating a line item. IDPago comes
// from the URL on the nested route and from the body on the flat one.
type CreateLineItemInput struct {
	IDPago      int64           `json:"id_pago"`
	IDFactura   int64           `json:"id_factura" validate:"required"`
	MontoPagado decimal.Decimal `json:"monto_pagado"`
}

// LineItemPatch distinguishes absent from null fields on line item update.
type LineItemPatch struct {
	IDPago      httpx.Field[int64]           `json:"id_pago"`
	IDFactura   httpx.Field[int64]           `json:"id_factura"`
	MontoPagado httpx.Field[decimal.Decimal] `json:"monto_pagado"`
}
