package repositories

import (
	"path/filepath"
	"testing"
	"time"

	"tech-entry-bot/internal/models"
	"tech-entry-bot/internal/sheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventRepo(t *testing.T) *SheetEventRepository {
	t.Helper()
	wb, err := sheet.Open(filepath.Join(t.TempDir(), "entry.xlsx"))
	require.NoError(t, err)
	t.Cleanup(func() { wb.Close() })
	return NewSheetEventRepository(wb)
}

func seedEvent(t *testing.T, r *SheetEventRepository, values map[string]string) {
	t.Helper()
	require.NoError(t, r.store.AppendRow(sheet.TableEvents, values))
}

func TestGetByID(t *testing.T) {
	r := newEventRepo(t)
	seedEvent(t, r, map[string]string{
		"event_id":            "ev-1",
		"assigned_contact_id": "c-1",
		"status":              models.StatusPending,
	})

	ev, err := r.GetByID("ev-1")
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "c-1", ev.AssignedContactID)
	assert.Equal(t, 2, ev.RowIndex)
	assert.Zero(t, ev.ReminderCount)
	assert.True(t, ev.LastContactedAt.IsZero())

	ev, err = r.GetByID("ev-missing")
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestEventFieldParsing(t *testing.T) {
	r := newEventRepo(t)
	seedEvent(t, r, map[string]string{
		"event_id":            "ev-1",
		"assigned_contact_id": "c-3",
		"status":              models.StatusAwaitingReply,
		"last_contacted_at":   "2025-06-10T11:00:00Z",
		"reminder_count":      "2",
		"redirect_chain":      "c-1,c-2",
	})

	ev, err := r.GetByID("ev-1")
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, time.Date(2025, 6, 10, 11, 0, 0, 0, time.UTC), ev.LastContactedAt)
	assert.Equal(t, 2, ev.ReminderCount)
	assert.Equal(t, []string{"c-1", "c-2"}, ev.RedirectChain)
}

func TestListByStatusKeepsSheetOrder(t *testing.T) {
	r := newEventRepo(t)
	for _, row := range []map[string]string{
		{"event_id": "ev-1", "status": models.StatusPending},
		{"event_id": "ev-2", "status": models.StatusAnswered},
		{"event_id": "ev-3", "status": models.StatusPending},
		{"event_id": "ev-4", "status": models.StatusUnsure},
	} {
		seedEvent(t, r, row)
	}

	events, err := r.ListByStatus(models.StatusPending)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "ev-1", events[0].EventID)
	assert.Equal(t, "ev-3", events[1].EventID)

	events, err = r.ListByStatus(models.StatusPending, models.StatusUnsure)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestFindActiveByContact(t *testing.T) {
	r := newEventRepo(t)
	seedEvent(t, r, map[string]string{"event_id": "ev-1", "assigned_contact_id": "c-1", "status": models.StatusAnswered})
	seedEvent(t, r, map[string]string{"event_id": "ev-2", "assigned_contact_id": "c-1", "status": models.StatusAwaitingReply})
	seedEvent(t, r, map[string]string{"event_id": "ev-3", "assigned_contact_id": "c-2", "status": models.StatusUnsure})

	ev, err := r.FindActiveByContact("c-1")
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "ev-2", ev.EventID)

	ev, err = r.FindActiveByContact("c-3")
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestUpdateGuarded(t *testing.T) {
	r := newEventRepo(t)
	seedEvent(t, r, map[string]string{
		"event_id":            "ev-1",
		"assigned_contact_id": "c-1",
		"status":              models.StatusPending,
	})

	applied, err := r.UpdateGuarded("ev-1", []string{models.StatusPending}, map[string]string{
		"status": models.StatusSent,
	})
	require.NoError(t, err)
	assert.True(t, applied)

	// Guard no longer matches after the first transition.
	applied, err = r.UpdateGuarded("ev-1", []string{models.StatusPending}, map[string]string{
		"status": models.StatusSent,
	})
	require.NoError(t, err)
	assert.False(t, applied)

	ev, err := r.GetByID("ev-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, ev.Status)
}

func TestUpdateGuardedUnknownEvent(t *testing.T) {
	r := newEventRepo(t)
	_, err := r.UpdateGuarded("ev-missing", nil, map[string]string{"status": models.StatusSent})
	assert.ErrorIs(t, err, models.ErrUnknownEvent)
}

func TestUpdateGuardedNilGuard(t *testing.T) {
	r := newEventRepo(t)
	seedEvent(t, r, map[string]string{"event_id": "ev-1", "status": models.StatusExpired})

	applied, err := r.UpdateGuarded("ev-1", nil, map[string]string{"selected_slot": "10:30"})
	require.NoError(t, err)
	assert.True(t, applied)

	ev, err := r.GetByID("ev-1")
	require.NoError(t, err)
	assert.Equal(t, "10:30", ev.SelectedSlot)
	assert.Equal(t, models.StatusExpired, ev.Status)
}
