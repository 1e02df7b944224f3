package services

import (
	"context"
	"strconv"
	"time"

	"tech-entry-bot/internal/gateway"
	"tech-entry-bot/internal/models"
)

// memEventRepo keeps events in insertion order and applies guarded updates
// the way the sheet-backed repository does.
type memEventRepo struct {
	events []*models.Event
}

func (r *memEventRepo) add(ev *models.Event) {
	r.events = append(r.events, ev)
}

func (r *memEventRepo) GetByID(eventID string) (*models.Event, error) {
	for _, ev := range r.events {
		if ev.EventID == eventID {
			copied := *ev
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memEventRepo) ListByStatus(statuses ...string) ([]*models.Event, error) {
	var out []*models.Event
	for _, ev := range r.events {
		for _, s := range statuses {
			if ev.Status == s {
				copied := *ev
				out = append(out, &copied)
				break
			}
		}
	}
	return out, nil
}

func (r *memEventRepo) FindActiveByContact(contactID string) (*models.Event, error) {
	var found *models.Event
	for _, ev := range r.events {
		if ev.AssignedContactID != contactID {
			continue
		}
		for _, s := range models.ActiveReplyStatuses {
			if ev.Status == s {
				copied := *ev
				found = &copied
				break
			}
		}
	}
	return found, nil
}

func (r *memEventRepo) UpdateGuarded(eventID string, expectStatus []string, updates map[string]string) (bool, error) {
	for _, ev := range r.events {
		if ev.EventID != eventID {
			continue
		}
		if expectStatus != nil {
			ok := false
			for _, s := range expectStatus {
				if ev.Status == s {
					ok = true
					break
				}
			}
			if !ok {
				return false, nil
			}
		}
		for key, value := range updates {
			switch key {
			case "status":
				ev.Status = value
			case "assigned_contact_id":
				ev.AssignedContactID = value
			case "selected_slot":
				ev.SelectedSlot = value
			case "redirect_chain":
				ev.RedirectChain = models.ParseChain(value)
			case "reminder_count":
				n, _ := strconv.Atoi(value)
				ev.ReminderCount = n
			case "last_contacted_at":
				t, _ := time.Parse(time.RFC3339, value)
				ev.LastContactedAt = t
			}
		}
		return true, nil
	}
	return false, models.ErrUnknownEvent
}

type memContactRepo struct {
	contacts []*models.TechContact
}

func (r *memContactRepo) add(c *models.TechContact) {
	r.contacts = append(r.contacts, c)
}

func (r *memContactRepo) GetByID(contactID string) (*models.TechContact, error) {
	for _, c := range r.contacts {
		if c.ContactID == contactID {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memContactRepo) GetByPhone(phone string) (*models.TechContact, error) {
	for _, c := range r.contacts {
		if c.PhoneNumber == phone {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memContactRepo) List() ([]*models.TechContact, error) {
	return r.contacts, nil
}

type memLogRepo struct {
	entries []*models.LogEntry
}

func (r *memLogRepo) Append(entry *models.LogEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memLogRepo) byOutcome(outcome string) []*models.LogEntry {
	var out []*models.LogEntry
	for _, e := range r.entries {
		if e.Outcome == outcome {
			out = append(out, e)
		}
	}
	return out
}

// recordingGateway captures outbound sends and can be told to fail for a
// given phone number.
type recordingGateway struct {
	templates map[string][]string // phone -> template ids
	lists     []string            // phones that got the slot list
	buttons   []string            // phones that got the deviation buttons
	failFor   map[string]bool
}

func newRecordingGateway() *recordingGateway {
	return &recordingGateway{
		templates: map[string][]string{},
		failFor:   map[string]bool{},
	}
}

func (g *recordingGateway) SendTemplate(ctx context.Context, phone, templateID string) error {
	if g.failFor[phone] {
		return gateway.ErrSendFailure
	}
	g.templates[phone] = append(g.templates[phone], templateID)
	return nil
}

func (g *recordingGateway) SendSlotList(ctx context.Context, phone string, sections []models.SlotSection) error {
	if g.failFor[phone] {
		return gateway.ErrSendFailure
	}
	g.lists = append(g.lists, phone)
	return nil
}

func (g *recordingGateway) SendOptionButtons(ctx context.Context, phone string) error {
	if g.failFor[phone] {
		return gateway.ErrSendFailure
	}
	g.buttons = append(g.buttons, phone)
	return nil
}

func fixedTime() time.Time {
	return time.Date(2025, 6, 10, 11, 0, 0, 0, time.UTC)
}
