package repositories

import (
	"tech-entry-bot/internal/models"
	"tech-entry-bot/internal/sheet"
)

// SheetLogRepository appends audit rows to the Log table. Rows are never
// updated or deleted.
type SheetLogRepository struct {
	store sheet.Store
}

func NewSheetLogRepository(store sheet.Store) *SheetLogRepository {
	return &SheetLogRepository{store: store}
}

func (r *SheetLogRepository) Append(entry *models.LogEntry) error {
	return r.store.AppendRow(sheet.TableLog, map[string]string{
		"log_id":          entry.LogID,
		"event_id":        entry.EventID,
		"contact_id":      entry.ContactID,
		"direction":       entry.Direction,
		"payload_summary": entry.PayloadSummary,
		"timestamp":       FormatTimestamp(entry.Timestamp),
		"outcome":         entry.Outcome,
	})
}
