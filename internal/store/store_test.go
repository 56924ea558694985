package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newTestStore() *Store {
	s := New(zap.NewNop())
	s.Sleep = func(time.Duration) {} // keep retries instant
	return s
}

func TestSaveEmptyRoundTrip(t *testing.T) {
	s := newTestStore()
	path := filepath.Join(t.TempDir(), "users.xlsx")

	require.NoError(t, s.Save(path, "Users", []string{"id", "email"}, nil))

	// An empty table must still be a well-formed, reloadable workbook.
	_, err := os.Stat(path)
	require.NoError(t, err)
	require.Empty(t, s.Load(path, "Users"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore()
	path := filepath.Join(t.TempDir(), "users.xlsx")

	rows := []Row{
		{"id": "1", "name": "Budi", "email": "budi@example.com"},
		{"id": "2", "name": "Sari"},
		{"id": "3", "name": "Agus", "email": "agus@example.com"},
	}
	require.NoError(t, s.Save(path, "Users", []string{"id", "name", "email"}, rows))

	loaded := s.Load(path, "Users")
	require.Equal(t, rows, loaded) // field content and order preserved
}

func TestSaveExtraColumnsSurvive(t *testing.T) {
	s := newTestStore()
	path := filepath.Join(t.TempDir(), "t.xlsx")

	rows := []Row{{"id": "1", "surprise": "yes"}}
	require.NoError(t, s.Save(path, "T", []string{"id"}, rows))
	require.Equal(t, rows, s.Load(path, "T"))
}

func TestLoadMissingFile(t *testing.T) {
	s := newTestStore()
	require.Empty(t, s.Load(filepath.Join(t.TempDir(), "nope.xlsx"), "Users"))
}

func TestLoadMissingSheet(t *testing.T) {
	s := newTestStore()
	path := filepath.Join(t.TempDir(), "users.xlsx")
	require.NoError(t, s.Save(path, "Users", []string{"id"}, []Row{{"id": "1"}}))
	require.Empty(t, s.Load(path, "Payments"))
}

func TestLoadDropsEmptyRows(t *testing.T) {
	// Craft a workbook with a fully blank row between two real ones, the
	// kind of artifact placeholder writes leave behind.
	path := filepath.Join(t.TempDir(), "gaps.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet("Users")
	require.NoError(t, err)
	f.DeleteSheet("Sheet1")
	require.NoError(t, f.SetSheetRow("Users", "A1", &[]string{"id", "name"}))
	require.NoError(t, f.SetSheetRow("Users", "A2", &[]string{"1", "Budi"}))
	require.NoError(t, f.SetSheetRow("Users", "A3", &[]string{"", ""}))
	require.NoError(t, f.SetSheetRow("Users", "A4", &[]string{"2", "Sari"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	s := newTestStore()
	loaded := s.Load(path, "Users")
	require.Len(t, loaded, 2)
	require.Equal(t, "Budi", loaded[0]["name"])
	require.Equal(t, "Sari", loaded[1]["name"])
}

func TestSaveRetriesThenFallsBack(t *testing.T) {
	s := New(zap.NewNop())

	var slept []time.Duration
	s.Sleep = func(d time.Duration) { slept = append(slept, d) }
	var reported error
	s.Report = func(err error) { reported = err }

	// Occupy the temp path with a directory so every write attempt fails.
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.xlsx")
	require.NoError(t, os.Mkdir(path+".tmp", 0o755))

	err := s.Save(path, "Users", []string{"id"}, []Row{{"id": "1"}})
	require.Error(t, err)

	// Linear backoff between the three attempts, none after the last.
	require.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, slept)
	require.Error(t, reported) // the loss went out on the side channel
}
