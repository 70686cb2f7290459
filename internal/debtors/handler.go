package debtors

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andes-erp/cobranzas/internal/platform/httpx"
)

// Handler exposes the debt report endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the debt report route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/deudores", h.report)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	debtors, err := h.service.Report(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err, "Cliente no encontrado")
		return
	}
	httpx.JSON(w, http.StatusOK, debtors)
}
