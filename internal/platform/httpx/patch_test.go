package httpx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type patchPayload struct {
	Nombre      Field[string] `json:"nombre"`
	Descripcion Field[string] `json:"descripcion"`
	Estado      Field[bool]   `json:"estado"`
}

func TestFieldDistinguishesAbsentNullAndValue(t *testing.T) {
	var p patchPayload
	require.NoError(t, json.Unmarshal([]byte(`{"nombre":"Caja","descripcion":null}`), &p))

	require.True(t, p.Nombre.Set)
	require.True(t, p.Nombre.Valid)
	require.Equal(t, "Caja", p.Nombre.Value)

	require.True(t, p.Descripcion.Set)
	require.False(t, p.Descripcion.Valid)

	require.False(t, p.Estado.Set)
}

func TestFieldMarshalRoundTrip(t *testing.T) {
	p := patchPayload{
		Nombre:      Field[string]{Set: true, Valid: true, Value: "Caja"},
		Descripcion: Field[string]{Set: true},
	}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.JSONEq(t, `{"nombre":"Caja","descripcion":null,"estado":null}`, string(data))
}
