package labelstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/dhlexpress/pkg/labelstore"
)

func TestFileStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "labels", "dhl")
	store := labelstore.NewFileStore(dir)

	require.NoError(t, store.Save("1234567890", []byte("%PDF-1.4 first")))

	data, err := os.ReadFile(filepath.Join(dir, "1234567890.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 first"), data)
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	store := labelstore.NewFileStore(t.TempDir())

	require.NoError(t, store.Save("1234567890", []byte("%PDF-1.4 first version")))
	require.NoError(t, store.Save("1234567890", []byte("%PDF-1.4 second")))

	data, err := os.ReadFile(store.Path("1234567890"))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 second"), data)
}

func TestFileStore_InvalidWaybill(t *testing.T) {
	store := labelstore.NewFileStore(t.TempDir())

	for _, waybill := range []string{"", "..", "../escape", `a\b`} {
		assert.Error(t, store.Save(waybill, []byte("x")), waybill)
	}
}
