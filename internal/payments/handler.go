package payments

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/andes-erp/cobranzas/internal/platform/httpx"
)

const (
	notFoundMessage         = "Pago no encontrado"
	lineItemNotFoundMessage = "Detalle de pago no encontrado"
)

// Handler wires HTTP endpoints for payments and line items.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: httpx.NewValidator()}
}

// MountRoutes registers payment routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/reporte/general", h.generalReport)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/generar-pdf", h.generatePDF)
	r.Get("/{id}/detalles", h.listPaymentLineItems)
	r.Post("/{id}/detalles", h.createPaymentLineItem)
	r.Get("/{id}/detalles/{id_detalle}", h.getPaymentLineItem)
	r.Put("/{id}/detalles/{id_detalle}", h.updatePaymentLineItem)
	r.Delete("/{id}/detalles/{id_detalle}", h.deletePaymentLineItem)
}

// MountLineItemRoutes registers the flat line item routes.
func (h *Handler) MountLineItemRoutes(r chi.Router) {
	r.Get("/", h.listLineItems)
	r.Post("/", h.createLineItem)
	r.Get("/{id}", h.getLineItem)
	r.Put("/{id}", h.updateLineItem)
	r.Delete("/{id}", h.deleteLineItem)
}

func parseParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

// respondError picks the line item 404 body when that is what went missing.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrLineItemNotFound) {
		httpx.RespondError(w, h.logger, err, lineItemNotFoundMessage)
		return
	}
	httpx.RespondError(w, h.logger, err, notFoundMessage)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payments)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(r, "id")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		h.respondError(w, httpx.ValidationError(err))
		return
	}
	p, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(r, "id")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var patch Patch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido")
		return
	}
	p, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(r, "id")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.NoContent(w)
}

// generatePDF streams the receipt to the caller. The generated flag and
// the audit record are only produced once the body has been written.
func (h *Handler) generatePDF(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(r, "id")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	pdf, url, err := h.service.GenerateReceipt(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=comprobante_pago_%d.pdf", id))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Header().Set("X-Pdf-Url", url)
	if _, err := w.Write(pdf); err != nil {
		h.logger.Warn("receipt stream interrupted", slog.Int64("id_pago", id), slog.Any("error", err))
		return
	}
	if err := h.service.ConfirmReceiptDelivered(r.Context(), id); err != nil {
		h.logger.Error("mark receipt delivered", slog.Int64("id_pago", id), slog.Any("error", err))
	}
}

func (h *Handler) generalReport(w http.ResponseWriter, r *http.Request) {
	pdf, url, err := h.service.GenerateGeneralReport(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=reporte_general_pagos.pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Header().Set("X-Pdf-Url", url)
	if _, err := w.Write(pdf); err != nil {
		h.logger.Warn("report stream interrupted", slog.Any("error", err))
	}
}

// --- Nested line item routes ---

func (h *Handler) listPaymentLineItems(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(r, "id")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	items, err := h.service.ListLineItemsByPayment(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) createPaymentLineItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(r, "id")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var input CreateLineItemInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido")
		return
	}
	input.IDPago = id
	if err := h.validate.Struct(input); err != nil {
		h.respondError(w, httpx.ValidationError(err))
		return
	}
	li, err := h.service.CreateLineItem(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, li)
}

func (h *Handler) getPaymentLineItem(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := parseParam(r, "id")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	lineID, ok := parseParam(r, "id_detalle")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	li, err := h.service.GetPaymentLineItem(r.Context(), paymentID, lineID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, li)
}

func (h *Handler) updatePaymentLineItem(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := parseParam(r, "id")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	lineID, ok := parseParam(r, "id_detalle")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var patch LineItemPatch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido")
		return
	}
	li, err := h.service.UpdateLineItem(r.Context(), paymentID, lineID, patch)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, li)
}

func (h *Handler) deletePaymentLineItem(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := parseParam(r, "id")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	lineID, ok := parseParam(r, "id_detalle")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	if err := h.service.DeleteLineItem(r.Context(), paymentID, lineID); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.NoContent(w)
}

// --- Flat line item routes ---

func (h *Handler) listLineItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListLineItems(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) createLineItem(w http.ResponseWriter, r *http.Request) {
	var input CreateLineItemInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		h.respondError(w, httpx.ValidationError(err))
		return
	}
	li, err := h.service.CreateLineItem(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, li)
}

func (h *Handler) getLineItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(r, "id")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	li, err := h.service.GetLineItem(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, li)
}

func (h *Handler) updateLineItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(r, "id")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var patch LineItemPatch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido")
		return
	}
	li, err := h.service.UpdateLineItem(r.Context(), 0, id, patch)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, li)
}

func (h *Handler) deleteLineItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(r, "id")
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	if err := h.service.DeleteLineItem(r.Context(), 0, id); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.NoContent(w)
}
