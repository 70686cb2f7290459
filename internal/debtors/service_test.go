package debtors

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/andes-erp/cobranzas/internal/audit"
	"github.com/andes-erp/cobranzas/internal/directory"
	"github.com/andes-erp/cobranzas/internal/payments"
)

type stubFetcher struct {
	clients  []directory.Client
	invoices []directory.Invoice
	calls    int
}

func (s *stubFetcher) FetchClients(ctx context.Context) ([]directory.Client, error) {
	s.calls++
	return s.clients, nil
}

func (s *stubFetcher) FetchInvoices(ctx context.Context) ([]directory.Invoice, error) {
	return s.invoices, nil
}

type stubPayments struct {
	pays  []payments.Payment
	items []payments.LineItem
}

func (s *stubPayments) GetAll(ctx context.Context) ([]payments.Payment, error) {
	return s.pays, nil
}

func (s *stubPayments) ListLineItems(ctx context.Context) ([]payments.LineItem, error) {
	return s.items, nil
}

type captureEnqueuer struct {
	events []audit.Event
}

func (c *captureEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	var ev audit.Event
	if err := json.Unmarshal(task.Payload(), &ev); err != nil {
		return nil, err
	}
	c.events = append(c.events, ev)
	return &asynq.TaskInfo{}, nil
}

func TestReportAuditsSelect(t *testing.T) {
	fetcher := &stubFetcher{
		clients: []directory.Client{{ID: 1, Nombre: "Ana", Apellido: "Mora"}},
		invoices: []directory.Invoice{
			{ID: 101, IDCliente: 1, MontoTotal: dec("80.00"), TipoPago: "Credito", EstadoFactura: "Pendiente"},
		},
	}
	queue := &captureEnqueuer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(fetcher, &stubPayments{}, audit.NewDispatcher(queue, logger))

	debtors, err := svc.Report(context.Background())
	require.NoError(t, err)
	require.Len(t, debtors, 1)
	require.Equal(t, 1, fetcher.calls)

	require.Len(t, queue.events, 1)
	require.Equal(t, audit.ActionSelect, queue.events[0].Accion)
	require.Equal(t, "deudores", queue.events[0].Tabla)
}
