package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTokenRouter(t *testing.T) (chi.Router, *Verifier) {
	t.Helper()
	verifier := NewVerifier("secreto")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, verifier)
	r := chi.NewRouter()
	r.Route("/api", handler.MountRoutes)
	return r, verifier
}

func TestTokenValidoWithoutToken(t *testing.T) {
	router, _ := newTokenRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/token/valido", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	var body tokenStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.False(t, body.Valido)
	require.Equal(t, "Token no proporcionado", body.Error)
}

func TestTokenValidoWithInvalidToken(t *testing.T) {
	router, _ := newTokenRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/token/valido", nil)
	req.Header.Set("Authorization", "Bearer no.es.valido")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	var body tokenStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.False(t, body.Valido)
	require.Equal(t, "Token inválido o expirado", body.Error)
}

func TestTokenValidoWithValidToken(t *testing.T) {
	router, verifier := newTokenRouter(t)
	token, err := verifier.Sign(Claims{UserID: 9, Usuario: "ayala", NombreRol: "Cobrador"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/token/valido", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body tokenStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.True(t, body.Valido)
	require.NotNil(t, body.Usuario)
	require.Equal(t, int64(9), body.Usuario.ID)
	require.Equal(t, "Cobrador", body.Usuario.Role)
}

func TestMiddlewareAttachesUser(t *testing.T) {
	verifier := NewVerifier("secreto")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	token, err := verifier.Sign(Claims{UserID: 9, Usuario: "ayala", NombreRol: "Cobrador"})
	require.NoError(t, err)

	var seen *User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
	})
	mw := Middleware(verifier, logger)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	mw.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, seen)
	require.Equal(t, "ayala", seen.Name)

	// No token still reaches the handler, with no identity attached.
	seen = &User{}
	mw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Nil(t, seen)
}
