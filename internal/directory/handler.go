package directory

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/andes-erp/cobranzas/internal/platform/httpx"
)

// Fetcher is the read contract against the external directory services.
type Fetcher interface {
	FetchClients(ctx context.Context) ([]Client, error)
	FetchInvoices(ctx context.Context) ([]Invoice, error)
}

// Handler exposes the external directory reads this system composes over.
type Handler struct {
	logger  *slog.Logger
	fetcher Fetcher
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, fetcher Fetcher) *Handler {
	return &Handler{logger: logger, fetcher: fetcher}
}

// MountClientRoutes registers the client listing route.
func (h *Handler) MountClientRoutes(r chi.Router) {
	r.Get("/", h.listClients)
}

// MountInvoiceRoutes registers the per-client invoice route.
func (h *Handler) MountInvoiceRoutes(r chi.Router) {
	r.Get("/cliente/{id}", h.listClientInvoices)
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.fetcher.FetchClients(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err, "Cliente no encontrado")
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

// listClientInvoices returns the client's invoices still open for
// collection, meaning everything not yet marked paid.
func (h *Handler) listClientInvoices(w http.ResponseWriter, r *http.Request) {
	clientID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	invoices, err := h.fetcher.FetchInvoices(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err, "Factura no encontrada")
		return
	}
	open := []Invoice{}
	for _, inv := range invoices {
		if inv.IDCliente == clientID && inv.EstadoFactura != EstadoFacturaPagado {
			open = append(open, inv)
		}
	}
	httpx.JSON(w, http.StatusOK, open)
}
