package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStoreSaveReturnsPublicURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "http://localhost:8080/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "comprobante_pago_7.pdf", []byte("%PDF"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/pdfs/comprobante_pago_7.pdf", url)

	data, err := os.ReadFile(filepath.Join(dir, "comprobante_pago_7.pdf"))
	require.NoError(t, err)
	require.Equal(t, "%PDF", string(data))
}

func TestFileStoreFlattensPathTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "http://localhost:8080")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "../fuera.pdf", []byte("%PDF"))
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "fuera.pdf"))
	require.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(filepath.Dir(dir), "fuera.pdf"))
	require.True(t, os.IsNotExist(statErr))
}
