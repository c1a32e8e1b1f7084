package importlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	e := NewEntry(SourceOrganizze, testTime)
	e.Files = []string{"bb-corrente_2024.xls", "c6-bank_2024.xlsx"}
	e.Rows = 120
	e.Postings = 110
	e.Orphans = 3
	e.Unresolved = 2
	e.CommitHash = "abc1234"
	return e
}

func TestNewEntry(t *testing.T) {
	e := NewEntry(SourceOFX, time.Date(2025, 1, 15, 7, 30, 0, 500, time.FixedZone("BRT", -3*3600)))
	_, err := uuid.Parse(e.RunID)
	require.NoError(t, err)
	assert.Equal(t, SourceOFX, e.Source)
	assert.Equal(t, testTime, e.Timestamp)

	assert.NotEqual(t, e.RunID, NewEntry(SourceOFX, testTime).RunID)
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEntry()))

	data, err := os.ReadFile(filepath.Join(dir, "logs", "import-log.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), Header+"\n"))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, SourceOrganizze, entries[0].Source)
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEntry()))

	e2 := NewEntry(SourceOFX, testTime.Add(time.Hour))
	e2.Files = []string{"inter.ofx"}
	e2.Duplicates = 3
	require.NoError(t, Append(dir, e2))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, SourceOrganizze, entries[0].Source)
	assert.Equal(t, SourceOFX, entries[1].Source)
	assert.Equal(t, 3, entries[1].Duplicates)
}

func TestRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := testEntry()
	require.NoError(t, Append(dir, original))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, original, entries[0])
}

func TestRead_NoFile(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	good := MarshalEntry(testEntry())

	_, err := UnmarshalEntry(good[:5])
	assert.Error(t, err)

	bad := append([]string(nil), good...)
	bad[colRunID] = "not-a-uuid"
	_, err = UnmarshalEntry(bad)
	assert.Error(t, err)

	bad = append([]string(nil), good...)
	bad[colRows] = "many"
	_, err = UnmarshalEntry(bad)
	assert.Error(t, err)

	bad = append([]string(nil), good...)
	bad[colTimestamp] = "yesterday"
	_, err = UnmarshalEntry(bad)
	assert.Error(t, err)
}

func TestUnmarshalEntry_NoFiles(t *testing.T) {
	e := NewEntry(SourceOFX, testTime)
	got, err := UnmarshalEntry(MarshalEntry(e))
	require.NoError(t, err)
	assert.Nil(t, got.Files)
}
