package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&CSVParser{})
	p := r.Get("csv")
	require.NotNil(t, p)
	assert.Equal(t, "csv", p.Format())
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(&XLSXParser{})
	assert.NotNil(t, r.Get("XLSX"))
	assert.NotNil(t, r.Get(".xlsx"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&CSVParser{})
	assert.Panics(t, func() { r.Register(&CSVParser{}) })
}

func TestDefaultRegistry(t *testing.T) {
	assert.Equal(t, []string{"csv", "xls", "xlsx"}, DefaultRegistry().Formats())
}

func TestParseFile_UnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.ods")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := DefaultRegistry().ParseFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseFile_AccountFromName(t *testing.T) {
	rows, err := DefaultRegistry().ParseFile("../../testdata/bb-corrente_2024.csv")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	for _, r := range rows {
		assert.Equal(t, "BbCorrente", r.Account)
	}
}

func TestScan_FindsExports(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))

	for _, name := range []string{"bb-corrente.xls", "c6.XLSX", "inter.ofx", "notes.txt", "~$lock.xlsx", ".hidden.csv", "unificado.xlsx"} {
		require.NoError(t, os.WriteFile(filepath.Join(importDir, name), []byte("data"), 0o644))
	}

	files, err := Scan(dir, DefaultRegistry().Formats()...)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "bb-corrente.xls", files[0].Name)
	assert.Equal(t, "xls", files[0].Format)
	assert.Equal(t, "c6.XLSX", files[1].Name)
	assert.Equal(t, "xlsx", files[1].Format)

	files, err = Scan(dir, "ofx")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "inter.ofx", files[0].Name)
}

func TestScan_IgnoresProcessedDir(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	processedDir := filepath.Join(importDir, "processed")
	require.NoError(t, os.MkdirAll(processedDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "new.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(processedDir, "old.csv"), []byte("data"), 0o644))

	files, err := Scan(dir, "csv")
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "new.csv", files[0].Name)
}

func TestScan_EmptyDir(t *testing.T) {
	files, err := Scan(t.TempDir(), "csv")
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "bank.ofx"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(dir, "bank.ofx"))

	_, err := os.Stat(filepath.Join(importDir, "bank.ofx"))
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "bank.ofx"))
	assert.NoError(t, err)
}

func TestMarkProcessed_Missing(t *testing.T) {
	err := MarkProcessed(t.TempDir(), "nope.csv")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "moving nope.csv"))
}
