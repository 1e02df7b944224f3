package models

import (
	"strings"
	"time"
)

// Event lifecycle. An event is created by the spreadsheet import as pending,
// moved forward by the dispatcher and the reducer, and nudged or expired by
// the sweeper. expired is terminal; rows are never deleted.
const (
	StatusPending       = "pending"
	StatusSent          = "sent"
	StatusAwaitingReply = "awaiting_reply"
	StatusUnsure        = "unsure"
	StatusAnswered      = "answered"
	StatusRedirected    = "redirected"
	StatusExpired       = "expired"
)

// ActiveReplyStatuses are the states in which an inbound reply is accepted
// for an event. Anything else makes the reply an orphan.
var ActiveReplyStatuses = []string{StatusSent, StatusAwaitingReply, StatusUnsure}

type Event struct {
	RowIndex          int       `json:"-"`
	EventID           string    `json:"event_id"`
	AssignedContactID string    `json:"assigned_contact_id"`
	Status            string    `json:"status"`
	SelectedSlot      string    `json:"selected_slot,omitempty"`
	LastContactedAt   time.Time `json:"last_contacted_at,omitempty"`
	ReminderCount     int       `json:"reminder_count"`
	RedirectChain     []string  `json:"redirect_chain,omitempty"`
}

// InRedirectChain reports whether contactID was already tried for this event.
func (e *Event) InRedirectChain(contactID string) bool {
	for _, id := range e.RedirectChain {
		if id == contactID {
			return true
		}
	}
	return false
}

// ChainString renders the redirect chain the way the Events sheet stores it.
func ChainString(chain []string) string {
	return strings.Join(chain, ",")
}

// ParseChain is the inverse of ChainString.
func ParseChain(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	chain := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			chain = append(chain, p)
		}
	}
	return chain
}

type EventRepository interface {
	// GetByID returns nil, nil when no row carries the id.
	GetByID(eventID string) (*Event, error)
	// ListByStatus returns events in sheet (insertion) order.
	ListByStatus(statuses ...string) ([]*Event, error)
	// FindActiveByContact returns the most recent event assigned to the
	// contact whose status still accepts replies, or nil, nil.
	FindActiveByContact(contactID string) (*Event, error)
	// UpdateGuarded re-reads the row and applies updates only while the
	// status is still one of expectStatus (optimistic guard; nil matches
	// any). Returns false with no error when the guard fails.
	UpdateGuarded(eventID string, expectStatus []string, updates map[string]string) (bool, error)
}
