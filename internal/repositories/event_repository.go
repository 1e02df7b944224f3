package repositories

import (
	"fmt"
	"strconv"
	"time"

	"tech-entry-bot/internal/models"
	"tech-entry-bot/internal/sheet"
)

type SheetEventRepository struct {
	store sheet.Store
}

func NewSheetEventRepository(store sheet.Store) *SheetEventRepository {
	return &SheetEventRepository{store: store}
}

func (r *SheetEventRepository) GetByID(eventID string) (*models.Event, error) {
	rows, err := r.store.ReadRows(sheet.TableEvents)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Values["event_id"] == eventID {
			return eventFromRow(row)
		}
	}
	return nil, nil
}

func (r *SheetEventRepository) ListByStatus(statuses ...string) ([]*models.Event, error) {
	rows, err := r.store.ReadRows(sheet.TableEvents)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	var events []*models.Event
	for _, row := range rows {
		if !wanted[row.Values["status"]] {
			continue
		}
		ev, err := eventFromRow(row)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func (r *SheetEventRepository) FindActiveByContact(contactID string) (*models.Event, error) {
	rows, err := r.store.ReadRows(sheet.TableEvents)
	if err != nil {
		return nil, err
	}

	active := make(map[string]bool, len(models.ActiveReplyStatuses))
	for _, s := range models.ActiveReplyStatuses {
		active[s] = true
	}

	// Later rows win: the most recently imported event owns the reply.
	var found *models.Event
	for _, row := range rows {
		if row.Values["assigned_contact_id"] != contactID || !active[row.Values["status"]] {
			continue
		}
		ev, err := eventFromRow(row)
		if err != nil {
			return nil, err
		}
		found = ev
	}
	return found, nil
}

func (r *SheetEventRepository) UpdateGuarded(eventID string, expectStatus []string, updates map[string]string) (bool, error) {
	// Re-read immediately before writing; the workbook has no CAS.
	current, err := r.GetByID(eventID)
	if err != nil {
		return false, err
	}
	if current == nil {
		return false, models.ErrUnknownEvent
	}
	if len(expectStatus) > 0 {
		matched := false
		for _, s := range expectStatus {
			if current.Status == s {
				matched = true
				break
			}
		}
		if !matched {
			return false, nil
		}
	}

	if err := r.store.UpdateRow(sheet.TableEvents, current.RowIndex, updates); err != nil {
		return false, err
	}
	return true, nil
}

func eventFromRow(row sheet.Row) (*models.Event, error) {
	ev := &models.Event{
		RowIndex:          row.Index,
		EventID:           row.Values["event_id"],
		AssignedContactID: row.Values["assigned_contact_id"],
		Status:            row.Values["status"],
		SelectedSlot:      row.Values["selected_slot"],
		RedirectChain:     models.ParseChain(row.Values["redirect_chain"]),
	}

	if v := row.Values["last_contacted_at"]; v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("event %s: parsing last_contacted_at %q: %v", ev.EventID, v, err)
		}
		ev.LastContactedAt = ts
	}
	if v := row.Values["reminder_count"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("event %s: parsing reminder_count %q: %v", ev.EventID, v, err)
		}
		ev.ReminderCount = n
	}
	return ev, nil
}

// FormatTimestamp renders a time the way the Events sheet stores it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
