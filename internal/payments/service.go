package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/andes-erp/cobranzas/internal/audit"
	"github.com/andes-erp/cobranzas/internal/platform/httpx"
)

// RepositoryPort defines data access methods for payments and line items.
type RepositoryPort interface {
	GetAll(ctx context.Context) ([]Payment, error)
	GetByID(ctx context.Context, id int64) (*Payment, error)
	Create(ctx context.Context, input CreateInput) (*Payment, error)
	Update(ctx context.Context, id int64, patch Patch) (*Payment, error)
	Delete(ctx context.Context, id int64) (*Payment, error)
	MarkPDFGenerated(ctx context.Context, id int64) error

	ListLineItems(ctx context.Context) ([]LineItem, error)
	ListLineItemsByPayment(ctx context.Context, paymentID int64) ([]LineItem, error)
	GetLineItem(ctx context.Context, id int64) (*LineItem, error)
	GetPaymentLineItem(ctx context.Context, paymentID, lineID int64) (*LineItem, error)
	CreateLineItem(ctx context.Context, input CreateLineItemInput) (*LineItem, error)
	UpdateLineItem(ctx context.Context, paymentID, lineID int64, patch LineItemPatch) (*LineItem, error)
	DeleteLineItem(ctx context.Context, paymentID, lineID int64) (*LineItem, error)
}

// DocumentRenderer produces PDF documents for payments.
type DocumentRenderer interface {
	RenderReceipt(ctx context.Context, payment *Payment) ([]byte, error)
	RenderGeneralReport(ctx context.Context, payments []Payment) ([]byte, error)
}

// PDFStore persists generated documents and returns their public URL.
type PDFStore interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

// Service handles payment business logic.
type Service struct {
	repo     RepositoryPort
	renderer DocumentRenderer
	store    PDFStore
	audit    *audit.Dispatcher
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, renderer DocumentRenderer, store PDFStore, dispatcher *audit.Dispatcher) *Service {
	return &Service{repo: repo, renderer: renderer, store: store, audit: dispatcher}
}

const (
	auditTablePagos    = "pagos"
	auditTableDetalles = "pagos_detalle"
)

// List returns every payment with its line items.
func (s *Service) List(ctx context.Context) ([]Payment, error) {
	return s.repo.GetAll(ctx)
}

// Get returns one payment with its line items.
func (s *Service) Get(ctx context.Context, id int64) (*Payment, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and stores a new payment header.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Payment, error) {
	if strings.TrimSpace(input.Numero) == "" {
		return nil, fmt.Errorf("%w: numero_pago es requerido", httpx.ErrValidation)
	}
	if input.Fecha.IsZero() {
		return nil, fmt.Errorf("%w: fecha es requerida", httpx.ErrValidation)
	}
	if input.IDCuenta <= 0 {
		return nil, fmt.Errorf("%w: id_cuenta es requerido", httpx.ErrValidation)
	}
	if input.IDCliente <= 0 {
		return nil, fmt.Errorf("%w: id_cliente es requerido", httpx.ErrValidation)
	}
	p, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	s.audit.Emit(ctx, audit.NewEvent(ctx, audit.ActionInsert, auditTablePagos, map[string]any{
		"id_pago":     p.ID,
		"numero_pago": p.Numero,
	}))
	return p, nil
}

// Update merges the patch onto the stored payment.
func (s *Service) Update(ctx context.Context, id int64, patch Patch) (*Payment, error) {
	p, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.audit.Emit(ctx, audit.NewEvent(ctx, audit.ActionUpdate, auditTablePagos, map[string]any{
		"id_pago": p.ID,
	}))
	return p, nil
}

// Delete removes a payment and its line items.
func (s *Service) Delete(ctx context.Context, id int64) error {
	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.audit.Emit(ctx, audit.NewEvent(ctx, audit.ActionDelete, auditTablePagos, map[string]any{
		"id_pago":  p.ID,
		"detalles": len(p.Detalles),
	}))
	return nil
}

// GenerateReceipt renders the payment receipt PDF and stores a copy for
// later download. The caller streams the bytes to the client and confirms
// delivery afterwards so the generated flag only flips on success.
func (s *Service) GenerateReceipt(ctx context.Context, id int64) ([]byte, string, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.renderer.RenderReceipt(ctx, p)
	if err != nil {
		return nil, "", fmt.Errorf("payments: render receipt: %w", err)
	}
	filename := fmt.Sprintf("comprobante_pago_%d.pdf", p.ID)
	url, err := s.store.Save(ctx, filename, pdf)
	if err != nil {
		return nil, "", fmt.Errorf("payments: store receipt: %w", err)
	}
	return pdf, url, nil
}

// ConfirmReceiptDelivered marks the receipt as generated and records the
// download. Called after the response has been written.
func (s *Service) ConfirmReceiptDelivered(ctx context.Context, id int64) error {
	if err := s.repo.MarkPDFGenerated(ctx, id); err != nil {
		return err
	}
	s.audit.Emit(ctx, audit.NewEvent(ctx, audit.ActionDownloadPDF, auditTablePagos, map[string]any{
		"id_pago":   id,
		"documento": "comprobante",
	}))
	return nil
}

// GenerateGeneralReport renders the PDF report covering every payment.
func (s *Service) GenerateGeneralReport(ctx context.Context) ([]byte, string, error) {
	payments, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.renderer.RenderGeneralReport(ctx, payments)
	if err != nil {
		return nil, "", fmt.Errorf("payments: render report: %w", err)
	}
	url, err := s.store.Save(ctx, "reporte_general_pagos.pdf", pdf)
	if err != nil {
		return nil, "", fmt.Errorf("payments: store report: %w", err)
	}
	s.audit.Emit(ctx, audit.NewEvent(ctx, audit.ActionDownloadPDF, auditTablePagos, map[string]any{
		"documento": "reporte_general",
		"pagos":     len(payments),
	}))
	return pdf, url, nil
}

// --- Line items ---

// ListLineItems returns every line item across payments.
func (s *Service) ListLineItems(ctx context.Context) ([]LineItem, error) {
	return s.repo.ListLineItems(ctx)
}

// ListLineItemsByPayment returns the line items of one payment. The payment
// must exist even when it has no line items yet.
func (s *Service) ListLineItemsByPayment(ctx context.Context, paymentID int64) ([]LineItem, error) {
	if _, err := s.repo.GetByID(ctx, paymentID); err != nil {
		return nil, err
	}
	return s.repo.ListLineItemsByPayment(ctx, paymentID)
}

// GetLineItem returns one line item by its identifier.
func (s *Service) GetLineItem(ctx context.Context, id int64) (*LineItem, error) {
	return s.repo.GetLineItem(ctx, id)
}

// GetPaymentLineItem returns one line item scoped to its owning payment.
func (s *Service) GetPaymentLineItem(ctx context.Context, paymentID, lineID int64) (*LineItem, error) {
	return s.repo.GetPaymentLineItem(ctx, paymentID, lineID)
}

// CreateLineItem validates and stores a line item.
func (s *Service) CreateLineItem(ctx context.Context, input CreateLineItemInput) (*LineItem, error) {
	if input.IDPago <= 0 {
		return nil, fmt.Errorf("%w: id_pago es requerido", httpx.ErrValidation)
	}
	if input.IDFactura <= 0 {
		return nil, fmt.Errorf("%w: id_factura es requerido", httpx.ErrValidation)
	}
	if input.MontoPagado.IsNegative() {
		return nil, fmt.Errorf("%w: monto_pagado no puede ser negativo", httpx.ErrValidation)
	}
	li, err := s.repo.CreateLineItem(ctx, input)
	if err != nil {
		return nil, err
	}
	s.audit.Emit(ctx, audit.NewEvent(ctx, audit.ActionInsert, auditTableDetalles, map[string]any{
		"id_detalle": li.ID,
		"id_pago":    li.IDPago,
		"id_factura": li.IDFactura,
	}))
	return li, nil
}

// UpdateLineItem merges the patch onto one line item. A zero paymentID
// skips the ownership check for the flat route.
func (s *Service) UpdateLineItem(ctx context.Context, paymentID, lineID int64, patch LineItemPatch) (*LineItem, error) {
	if patch.MontoPagado.Set && patch.MontoPagado.Valid && patch.MontoPagado.Value.IsNegative() {
		return nil, fmt.Errorf("%w: monto_pagado no puede ser negativo", httpx.ErrValidation)
	}
	li, err := s.repo.UpdateLineItem(ctx, paymentID, lineID, patch)
	if err != nil {
		return nil, err
	}
	s.audit.Emit(ctx, audit.NewEvent(ctx, audit.ActionUpdate, auditTableDetalles, map[string]any{
		"id_detalle": li.ID,
		"id_pago":    li.IDPago,
	}))
	return li, nil
}

// DeleteLineItem removes one line item.
func (s *Service) DeleteLineItem(ctx context.Context, paymentID, lineID int64) error {
	li, err := s.repo.DeleteLineItem(ctx, paymentID, lineID)
	if err != nil {
		return err
	}
	s.audit.Emit(ctx, audit.NewEvent(ctx, audit.ActionDelete, auditTableDetalles, map[string]any{
		"id_detalle": li.ID,
		"id_pago":    li.IDPago,
	}))
	return nil
}
