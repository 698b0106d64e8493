package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get(".csv"))
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get(".CSV"))
	assert.NotNil(t, r.Get("xlsx"))
	assert.Equal(t, "xlsx", r.Get(".XLSX").Format())
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&Delimited{})
	assert.Panics(t, func() { r.Register(&Delimited{}) })
}

func TestRegistry_ForPath(t *testing.T) {
	r := DefaultRegistry()

	rd, err := r.ForPath("/data/debts.tsv")
	require.NoError(t, err)
	assert.Equal(t, "csv", rd.Format())

	_, err = r.ForPath("report.pdf")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestRegistry_Extensions(t *testing.T) {
	assert.Equal(t, []string{".csv", ".tsv", ".txt", ".xlsm", ".xlsx"}, DefaultRegistry().Extensions())
}

func TestScan_FiltersAndSorts(t *testing.T) {
	inbox := t.TempDir()
	for _, name := range []string{"b.xlsx", "a.csv", "notes.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(inbox, name), []byte("data"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(inbox, ProcessedDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, ProcessedDir, "old.csv"), []byte("data"), 0o644))

	files, err := Scan(inbox, DefaultRegistry())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.csv", files[0].Name)
	assert.Equal(t, "b.xlsx", files[1].Name)
	assert.Equal(t, int64(4), files[0].Size)
}

func TestScan_MissingInbox(t *testing.T) {
	files, err := Scan(filepath.Join(t.TempDir(), "nope"), DefaultRegistry())
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	inbox := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "debts.csv"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(inbox, "debts.csv"))

	_, err := os.Stat(filepath.Join(inbox, "debts.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(inbox, ProcessedDir, "debts.csv"))
	assert.NoError(t, err)
}
