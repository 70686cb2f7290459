package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andes-erp/cobranzas/internal/platform/httpx"
)

// Handler exposes token endpoints.
type Handler struct {
	logger   *slog.Logger
	verifier *Verifier
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, verifier *Verifier) *Handler {
	return &Handler{logger: logger, verifier: verifier}
}

// MountRoutes attaches token routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/token/valido", h.validateToken)
}

type tokenStatus struct {
	Valido  bool   `json:"valido"`
	Usuario *User  `json:"usuario,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) validateToken(w http.ResponseWriter, r *http.Request) {
	token, err := FromAuthorizationHeader(r.Header.Get("Authorization"))
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, tokenStatus{Valido: false, Error: "Token no proporcionado"})
		return
	}
	user, err := h.verifier.Parse(token)
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, tokenStatus{Valido: false, Error: "Token inválido o expirado"})
		return
	}
	httpx.JSON(w, http.StatusOK, tokenStatus{Valido: true, Usuario: user})
}
