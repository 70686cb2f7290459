package audit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForwardPostsEventJSON(t *testing.T) {
	var received Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	f := NewForwarder(srv.URL, srv.Client())
	event := NewEvent(context.Background(), ActionInsert, "pagos", map[string]any{"id_pago": 5})
	require.NoError(t, f.Forward(context.Background(), event))

	require.Equal(t, event.ID, received.ID)
	require.Equal(t, "INSERT", received.Accion)
	require.Equal(t, "cuentas por cobrar", received.Modulo)
	require.Equal(t, "Sistema", received.NombreRol)
	require.Nil(t, received.IDUsuario)
}

func TestForwardNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rechazado", http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewForwarder(srv.URL, srv.Client())
	err := f.Forward(context.Background(), NewEvent(context.Background(), ActionDelete, "pagos", nil))
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
}
