package debtors

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/andes-erp/cobranzas/internal/audit"
	"github.com/andes-erp/cobranzas/internal/directory"
	"github.com/andes-erp/cobranzas/internal/payments"
)

// PaymentsPort is the slice of local payment storage the report needs.
type PaymentsPort interface {
	GetAll(ctx context.Context) ([]payments.Payment, error)
	ListLineItems(ctx context.Context) ([]payments.LineItem, error)
}

// Service builds the debt report from fresh directory and local reads.
// Concurrent identical requests are collapsed with singleflight; nothing
// is cached between calls.
type Service struct {
	fetcher  directory.Fetcher
	payments PaymentsPort
	audit    *audit.Dispatcher
	group    singleflight.Group
}

// NewService builds a Service instance.
func NewService(fetcher directory.Fetcher, paymentsRepo PaymentsPort, dispatcher *audit.Dispatcher) *Service {
	return &Service{fetcher: fetcher, payments: paymentsRepo, audit: dispatcher}
}

// Report returns every client with outstanding debt.
func (s *Service) Report(ctx context.Context) ([]Debtor, error) {
	result, err, _ := s.group.Do("deudores", func() (any, error) {
		return s.buildReport(ctx)
	})
	if err != nil {
		return nil, err
	}
	debtors := result.([]Debtor)
	s.audit.Emit(ctx, audit.NewEvent(ctx, audit.ActionSelect, "deudores", map[string]any{
		"clientes_con_deuda": len(debtors),
	}))
	return debtors, nil
}

func (s *Service) buildReport(ctx context.Context) ([]Debtor, error) {
	clients, err := s.fetcher.FetchClients(ctx)
	if err != nil {
		return nil, err
	}
	invoices, err := s.fetcher.FetchInvoices(ctx)
	if err != nil {
		return nil, err
	}
	pays, err := s.payments.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	lineItems, err := s.payments.ListLineItems(ctx)
	if err != nil {
		return nil, err
	}
	return Aggregate(clients, invoices, pays, lineItems), nil
}
