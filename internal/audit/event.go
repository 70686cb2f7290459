// Package audit forwards action records to the external compliance log.
// Delivery is best-effort: the business operation that triggered an event
// never fails or waits because of it.
package audit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andes-erp/cobranzas/internal/auth"
)

// Actions understood by the external audit service.
const (
	ActionSelect      = "SELECT"
	ActionInsert      = "INSERT"
	ActionUpdate      = "UPDATE"
	ActionDelete      = "DELETE"
	ActionDownloadPDF = "DOWNLOAD_PDF"
)

const (
	defaultModule = "cuentas por cobrar"
	defaultRole   = "Sistema"
)

// Event is one audit record. It is created per request and discarded after
// transmission; this system never reads audit data back.
type Event struct {
	ID        string         `json:"id_evento"`
	Accion    string         `json:"accion"`
	Modulo    string         `json:"modulo"`
	Tabla     string         `json:"tabla"`
	IDUsuario *int64         `json:"id_usuario"`
	Details   map[string]any `json:"details"`
	NombreRol string         `json:"nombre_rol"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent builds an Event with defaults applied and the acting user taken
// from the request context.
func NewEvent(ctx context.Context, action, table string, details map[string]any) Event {
	ev := Event{
		ID:        uuid.NewString(),
		Accion:    strings.ToUpper(action),
		Modulo:    defaultModule,
		Tabla:     table,
		Details:   details,
		NombreRol: defaultRole,
		Timestamp: time.Now().UTC(),
	}
	if ev.Details == nil {
		ev.Details = map[string]any{}
	}
	if user := auth.UserFromContext(ctx); user != nil {
		id := user.ID
		ev.IDUsuario = &id
		ev.NombreRol = user.Role
		ev.Details["usuario_autenticado"] = user.Name
	}
	return ev
}
