package models

import "time"

const (
	DirectionOutbound = "outbound"
	DirectionInbound  = "inbound"
)

const (
	OutcomeOK          = "ok"
	OutcomeSendFailed  = "send_failed"
	OutcomeParseFailed = "parse_failed"
)

// LogEntry is an append-only audit row. Every inbound or outbound attempt,
// and every event state transition, produces exactly one.
type LogEntry struct {
	LogID          string    `json:"log_id"`
	EventID        string    `json:"event_id"`
	ContactID      string    `json:"contact_id"`
	Direction      string    `json:"direction"`
	PayloadSummary string    `json:"payload_summary"`
	Timestamp      time.Time `json:"timestamp"`
	Outcome        string    `json:"outcome"`
}

type LogRepository interface {
	Append(entry *LogEntry) error
}
