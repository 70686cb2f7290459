package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/andes-erp/cobranzas/internal/accounts"
	"github.com/andes-erp/cobranzas/internal/auth"
	"github.com/andes-erp/cobranzas/internal/debtors"
	"github.com/andes-erp/cobranzas/internal/directory"
	"github.com/andes-erp/cobranzas/internal/payments"
	"github.com/andes-erp/cobranzas/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AuthMiddleware   func(http.Handler) http.Handler
	AuthHandler      *auth.Handler
	AccountsHandler  *accounts.Handler
	PaymentsHandler  *payments.Handler
	DirectoryHandler *directory.Handler
	DebtorsHandler   *debtors.Handler
	JobHandler       *jobs.Handler

	// PDFDir is served read-only under /pdfs/.
	PDFDir string
}

// NewRouter constructs the chi.Router for the API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		if params.AuthMiddleware != nil {
			api.Use(params.AuthMiddleware)
		}
		params.AuthHandler.MountRoutes(api)
		api.Route("/cuentas", params.AccountsHandler.MountRoutes)
		api.Route("/pagos", params.PaymentsHandler.MountRoutes)
		api.Route("/pagos-detalle", params.PaymentsHandler.MountLineItemRoutes)
		api.Route("/clientes", func(cr chi.Router) {
			params.DebtorsHandler.MountRoutes(cr)
			params.DirectoryHandler.MountClientRoutes(cr)
		})
		api.Route("/facturas", params.DirectoryHandler.MountInvoiceRoutes)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	if params.PDFDir != "" {
		fileServer := http.StripPrefix("/pdfs/", http.FileServer(http.Dir(params.PDFDir)))
		r.Get("/pdfs/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=300")
			fileServer.ServeHTTP(w, r)
		})
	}

	return r
}
