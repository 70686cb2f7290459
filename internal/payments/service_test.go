package payments

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/andes-erp/cobranzas/internal/audit"
	"github.com/andes-erp/cobranzas/internal/platform/httpx"
)

type memoryPaymentRepo struct {
	payments   map[int64]Payment
	lineItems  map[int64]LineItem
	nextID     int64
	nextLineID int64
}

func newMemoryPaymentRepo() *memoryPaymentRepo {
	return &memoryPaymentRepo{payments: make(map[int64]Payment), lineItems: make(map[int64]LineItem)}
}

func (r *memoryPaymentRepo) hydrate(p Payment) Payment {
	p.Detalles = []LineItem{}
	for _, li := range r.lineItems {
		if li.IDPago == p.ID {
			p.Detalles = append(p.Detalles, li)
		}
	}
	sort.Slice(p.Detalles, func(i, j int) bool { return p.Detalles[i].ID < p.Detalles[j].ID })
	return p
}

func (r *memoryPaymentRepo) GetAll(ctx context.Context) ([]Payment, error) {
	out := make([]Payment, 0, len(r.payments))
	for _, p := range r.payments {
		out = append(out, r.hydrate(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memoryPaymentRepo) GetByID(ctx context.Context, id int64) (*Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = r.hydrate(p)
	return &p, nil
}

func (r *memoryPaymentRepo) Create(ctx context.Context, input CreateInput) (*Payment, error) {
	r.nextID++
	p := Payment{
		ID:          r.nextID,
		Numero:      input.Numero,
		Descripcion: input.Descripcion,
		Fecha:       input.Fecha,
		IDCuenta:    input.IDCuenta,
		IDCliente:   input.IDCliente,
		PDFGenerado: input.PDFGenerado,
		Detalles:    []LineItem{},
	}
	r.payments[p.ID] = p
	return &p, nil
}

func (r *memoryPaymentRepo) Update(ctx context.Context, id int64, patch Patch) (*Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Numero.Set && patch.Numero.Valid {
		p.Numero = patch.Numero.Value
	}
	if patch.Descripcion.Set {
		if patch.Descripcion.Valid {
			p.Descripcion = &patch.Descripcion.Value
		} else {
			p.Descripcion = nil
		}
	}
	if patch.Fecha.Set && patch.Fecha.Valid {
		p.Fecha = patch.Fecha.Value
	}
	if patch.IDCuenta.Set && patch.IDCuenta.Valid {
		p.IDCuenta = patch.IDCuenta.Value
	}
	if patch.IDCliente.Set && patch.IDCliente.Valid {
		p.IDCliente = patch.IDCliente.Value
	}
	if patch.PDFGenerado.Set && patch.PDFGenerado.Valid {
		p.PDFGenerado = patch.PDFGenerado.Value
	}
	r.payments[id] = p
	p = r.hydrate(p)
	return &p, nil
}

func (r *memoryPaymentRepo) Delete(ctx context.Context, id int64) (*Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	hydrated := r.hydrate(p)
	for lid, li := range r.lineItems {
		if li.IDPago == id {
			delete(r.lineItems, lid)
		}
	}
	delete(r.payments, id)
	return &hydrated, nil
}

func (r *memoryPaymentRepo) MarkPDFGenerated(ctx context.Context, id int64) error {
	p, ok := r.payments[id]
	if !ok {
		return ErrNotFound
	}
	p.PDFGenerado = true
	r.payments[id] = p
	return nil
}

func (r *memoryPaymentRepo) ListLineItems(ctx context.Context) ([]LineItem, error) {
	out := make([]LineItem, 0, len(r.lineItems))
	for _, li := range r.lineItems {
		out = append(out, li)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryPaymentRepo) ListLineItemsByPayment(ctx context.Context, paymentID int64) ([]LineItem, error) {
	out := []LineItem{}
	for _, li := range r.lineItems {
		if li.IDPago == paymentID {
			out = append(out, li)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryPaymentRepo) GetLineItem(ctx context.Context, id int64) (*LineItem, error) {
	li, ok := r.lineItems[id]
	if !ok {
		return nil, ErrLineItemNotFound
	}
	return &li, nil
}

func (r *memoryPaymentRepo) GetPaymentLineItem(ctx context.Context, paymentID, lineID int64) (*LineItem, error) {
	li, ok := r.lineItems[lineID]
	if !ok || li.IDPago != paymentID {
		return nil, ErrLineItemNotFound
	}
	return &li, nil
}

func (r *memoryPaymentRepo) CreateLineItem(ctx context.Context, input CreateLineItemInput) (*LineItem, error) {
	if _, ok := r.payments[input.IDPago]; !ok {
		return nil, ErrNotFound
	}
	r.nextLineID++
	li := LineItem{ID: r.nextLineID, IDPago: input.IDPago, IDFactura: input.IDFactura, MontoPagado: input.MontoPagado}
	r.lineItems[li.ID] = li
	return &li, nil
}

func (r *memoryPaymentRepo) UpdateLineItem(ctx context.Context, paymentID, lineID int64, patch LineItemPatch) (*LineItem, error) {
	li, ok := r.lineItems[lineID]
	if !ok || (paymentID != 0 && li.IDPago != paymentID) {
		return nil, ErrLineItemNotFound
	}
	if patch.IDPago.Set && patch.IDPago.Valid {
		li.IDPago = patch.IDPago.Value
	}
	if patch.IDFactura.Set && patch.IDFactura.Valid {
		li.IDFactura = patch.IDFactura.Value
	}
	if patch.MontoPagado.Set && patch.MontoPagado.Valid {
		li.MontoPagado = patch.MontoPagado.Value
	}
	r.lineItems[lineID] = li
	return &li, nil
}

func (r *memoryPaymentRepo) DeleteLineItem(ctx context.Context, paymentID, lineID int64) (*LineItem, error) {
	li, ok := r.lineItems[lineID]
	if !ok || (paymentID != 0 && li.IDPago != paymentID) {
		return nil, ErrLineItemNotFound
	}
	delete(r.lineItems, lineID)
	return &li, nil
}

type stubRenderer struct {
	receipt []byte
	report  []byte
}

func (s *stubRenderer) RenderReceipt(ctx context.Context, payment *Payment) ([]byte, error) {
	return s.receipt, nil
}

func (s *stubRenderer) RenderGeneralReport(ctx context.Context, list []Payment) ([]byte, error) {
	return s.report, nil
}

type stubStore struct {
	saved map[string][]byte
}

func (s *stubStore) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[filename] = data
	return "http://localhost:8080/pdfs/" + filename, nil
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

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService() (*Service, *memoryPaymentRepo, *captureEnqueuer, *stubStore) {
	repo := newMemoryPaymentRepo()
	queue := &captureEnqueuer{}
	store := &stubStore{}
	renderer := &stubRenderer{receipt: []byte("%PDF-recibo"), report: []byte("%PDF-reporte")}
	svc := NewService(repo, renderer, store, audit.NewDispatcher(queue, discardLogger()))
	return svc, repo, queue, store
}

func testDate(t *testing.T) Date {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", "2026-03-10")
	require.NoError(t, err)
	return Date{parsed}
}

func TestCreatePaymentValidation(t *testing.T) {
	svc, repo, queue, _ := newTestService()

	cases := []CreateInput{
		{Fecha: testDate(t), IDCuenta: 1, IDCliente: 1},
		{Numero: "PG-1", IDCuenta: 1, IDCliente: 1},
		{Numero: "PG-1", Fecha: testDate(t), IDCliente: 1},
		{Numero: "PG-1", Fecha: testDate(t), IDCuenta: 1},
	}
	for _, input := range cases {
		_, err := svc.Create(context.Background(), input)
		require.ErrorIs(t, err, httpx.ErrValidation)
	}
	require.Empty(t, repo.payments)
	require.Empty(t, queue.events)
}

func TestDeletePaymentCascadesLineItems(t *testing.T) {
	svc, repo, queue, _ := newTestService()

	p, err := svc.Create(context.Background(), CreateInput{Numero: "PG-1", Fecha: testDate(t), IDCuenta: 1, IDCliente: 3})
	require.NoError(t, err)
	for _, factura := range []int64{101, 102} {
		_, err := svc.CreateLineItem(context.Background(), CreateLineItemInput{
			IDPago: p.ID, IDFactura: factura, MontoPagado: decimal.NewFromInt(10),
		})
		require.NoError(t, err)
	}

	require.NoError(t, svc.Delete(context.Background(), p.ID))
	require.Empty(t, repo.payments)
	require.Empty(t, repo.lineItems)

	last := queue.events[len(queue.events)-1]
	require.Equal(t, audit.ActionDelete, last.Accion)
	require.Equal(t, "pagos", last.Tabla)
	require.EqualValues(t, 2, last.Details["detalles"])
}

func TestCreateLineItemRejectsNegativeAmount(t *testing.T) {
	svc, _, _, _ := newTestService()

	p, err := svc.Create(context.Background(), CreateInput{Numero: "PG-1", Fecha: testDate(t), IDCuenta: 1, IDCliente: 3})
	require.NoError(t, err)

	_, err = svc.CreateLineItem(context.Background(), CreateLineItemInput{
		IDPago: p.ID, IDFactura: 101, MontoPagado: decimal.NewFromFloat(-0.01),
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestGenerateReceiptStoresCopyWithoutFlippingFlag(t *testing.T) {
	svc, _, queue, store := newTestService()

	p, err := svc.Create(context.Background(), CreateInput{Numero: "PG-1", Fecha: testDate(t), IDCuenta: 1, IDCliente: 3})
	require.NoError(t, err)
	queue.events = nil

	pdf, url, err := svc.GenerateReceipt(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-recibo"), pdf)
	require.Contains(t, url, "/pdfs/comprobante_pago_1.pdf")
	require.Contains(t, store.saved, "comprobante_pago_1.pdf")

	// Flag and audit wait for delivery confirmation.
	stored, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.False(t, stored.PDFGenerado)
	require.Empty(t, queue.events)

	require.NoError(t, svc.ConfirmReceiptDelivered(context.Background(), p.ID))
	stored, err = svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.True(t, stored.PDFGenerado)
	require.Len(t, queue.events, 1)
	require.Equal(t, audit.ActionDownloadPDF, queue.events[0].Accion)
}

func TestUpdatePaymentClearsDescription(t *testing.T) {
	svc, _, _, _ := newTestService()
	desc := "abono"
	p, err := svc.Create(context.Background(), CreateInput{
		Numero: "PG-1", Descripcion: &desc, Fecha: testDate(t), IDCuenta: 1, IDCliente: 3,
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), p.ID, Patch{
		Descripcion: httpx.Field[string]{Set: true},
	})
	require.NoError(t, err)
	require.Nil(t, updated.Descripcion)
	require.Equal(t, "PG-1", updated.Numero)
}
