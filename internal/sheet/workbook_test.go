package sheet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Workbook {
	t.Helper()
	wb, err := Open(filepath.Join(t.TempDir(), "entry.xlsx"))
	require.NoError(t, err)
	t.Cleanup(func() { wb.Close() })
	return wb
}

func TestOpenCreatesTables(t *testing.T) {
	wb := openTemp(t)

	for _, table := range []string{TableEvents, TableContacts, TableLog} {
		rows, err := wb.ReadRows(table)
		require.NoError(t, err)
		assert.Empty(t, rows)
	}
}

func TestOpenExistingWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entry.xlsx")
	wb, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, wb.AppendRow(TableContacts, map[string]string{
		"contact_id":   "c-1",
		"phone_number": "+972501000001",
		"display_name": "Dana",
	}))
	require.NoError(t, wb.Close())

	wb, err = Open(path)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.ReadRows(TableContacts)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Index)
	assert.Equal(t, "Dana", rows[0].Values["display_name"])
}

func TestAppendAssignsSequentialRows(t *testing.T) {
	wb := openTemp(t)

	for _, id := range []string{"ev-1", "ev-2", "ev-3"} {
		require.NoError(t, wb.AppendRow(TableEvents, map[string]string{
			"event_id": id,
			"status":   "pending",
		}))
	}

	rows, err := wb.ReadRows(TableEvents)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, i+2, row.Index)
	}
	assert.Equal(t, "ev-2", rows[1].Values["event_id"])
}

func TestUpdateRowIsPartial(t *testing.T) {
	wb := openTemp(t)
	require.NoError(t, wb.AppendRow(TableEvents, map[string]string{
		"event_id":            "ev-1",
		"assigned_contact_id": "c-1",
		"status":              "pending",
	}))

	require.NoError(t, wb.UpdateRow(TableEvents, 2, map[string]string{
		"status": "awaiting_reply",
	}))

	rows, err := wb.ReadRows(TableEvents)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "awaiting_reply", rows[0].Values["status"])
	assert.Equal(t, "c-1", rows[0].Values["assigned_contact_id"])
}

func TestUpdateRowRejectsHeader(t *testing.T) {
	wb := openTemp(t)
	err := wb.UpdateRow(TableEvents, 1, map[string]string{"status": "pending"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestUnknownTable(t *testing.T) {
	wb := openTemp(t)
	err := wb.UpdateRow("Bogus", 2, map[string]string{"status": "x"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
