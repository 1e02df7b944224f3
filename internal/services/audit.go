package services

import (
	"time"

	"tech-entry-bot/internal/models"

	"github.com/google/uuid"
)

const maxSummaryLen = 120

func newLogEntry(eventID, contactID, direction, summary, outcome string, at time.Time) *models.LogEntry {
	return &models.LogEntry{
		LogID:          uuid.NewString(),
		EventID:        eventID,
		ContactID:      contactID,
		Direction:      direction,
		PayloadSummary: summarize(summary),
		Timestamp:      at,
		Outcome:        outcome,
	}
}

func summarize(s string) string {
	if len(s) <= maxSummaryLen {
		return s
	}
	return s[:maxSummaryLen-3] + "..."
}
