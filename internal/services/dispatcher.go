package services

import (
	"context"
	"strconv"
	"time"

	"tech-entry-bot/internal/gateway"
	"tech-entry-bot/internal/models"
	"tech-entry-bot/internal/repositories"
	"tech-entry-bot/internal/utils"
)

// Dispatcher issues the initial time-slot request. An event is contacted at
// most once: only pending rows are eligible, and the status is re-checked
// right before each send so overlapping kicks, sweeps, and redirects cannot
// double-contact anyone.
type Dispatcher struct {
	events   models.EventRepository
	contacts models.ContactRepository
	log      models.LogRepository
	gw       gateway.Gateway
	now      func() time.Time
}

func NewDispatcher(events models.EventRepository, contacts models.ContactRepository, log models.LogRepository, gw gateway.Gateway) *Dispatcher {
	return &Dispatcher{
		events:   events,
		contacts: contacts,
		log:      log,
		gw:       gw,
		now:      time.Now,
	}
}

// Kick contacts up to limit pending events in sheet order.
func (d *Dispatcher) Kick(ctx context.Context, limit int) (models.KickSummary, error) {
	var summary models.KickSummary

	pending, err := d.events.ListByStatus(models.StatusPending)
	if err != nil {
		return summary, err
	}

	for _, ev := range pending {
		if summary.Sent >= limit {
			break
		}

		// Optimistic guard: a concurrent sweep or redirect may have moved
		// the row since the listing.
		current, err := d.events.GetByID(ev.EventID)
		if err != nil {
			return summary, err
		}
		if current == nil || current.Status != models.StatusPending {
			summary.Skipped++
			continue
		}

		contact, err := d.contacts.GetByID(current.AssignedContactID)
		if err != nil {
			return summary, err
		}
		if contact == nil {
			utils.LogError("Event %s references unknown contact %s", current.EventID, current.AssignedContactID)
			summary.Failed++
			if err := d.log.Append(newLogEntry(
				current.EventID, current.AssignedContactID, models.DirectionOutbound,
				"send aborted: unknown contact", models.OutcomeSendFailed, d.now(),
			)); err != nil {
				return summary, err
			}
			continue
		}

		if err := d.SendSlotPrompt(ctx, contact.PhoneNumber, gateway.TemplateOpening); err != nil {
			utils.LogWarning("Send to %s for event %s failed: %v", contact.PhoneNumber, current.EventID, err)
			summary.Failed++
			// Status stays pending so a later kick retries.
			if err := d.log.Append(newLogEntry(
				current.EventID, contact.ContactID, models.DirectionOutbound,
				"opening request: "+err.Error(), models.OutcomeSendFailed, d.now(),
			)); err != nil {
				return summary, err
			}
			continue
		}

		if err := d.markContacted(current); err != nil {
			return summary, err
		}
		summary.Sent++
		if err := d.log.Append(newLogEntry(
			current.EventID, contact.ContactID, models.DirectionOutbound,
			"opening request with slot list", models.OutcomeOK, d.now(),
		)); err != nil {
			return summary, err
		}
	}

	utils.LogInfo("Kick done: sent=%d failed=%d skipped=%d", summary.Sent, summary.Failed, summary.Skipped)
	return summary, nil
}

// SendSlotPrompt is the outbound primitive shared with the sweeper: the
// template opener (or reminder) followed by the interactive slot list. The
// opening send also carries the deviation buttons.
func (d *Dispatcher) SendSlotPrompt(ctx context.Context, phone, templateID string) error {
	if err := d.gw.SendTemplate(ctx, phone, templateID); err != nil {
		return err
	}
	if err := d.gw.SendSlotList(ctx, phone, models.SlotSections()); err != nil {
		return err
	}
	if templateID == gateway.TemplateOpening {
		return d.gw.SendOptionButtons(ctx, phone)
	}
	return nil
}

func (d *Dispatcher) markContacted(ev *models.Event) error {
	// Two writes on purpose: sent first, then awaiting_reply with the
	// contact timestamp. A crash in between leaves a row the reducer still
	// accepts and the sweeper will re-stamp.
	applied, err := d.events.UpdateGuarded(ev.EventID, []string{models.StatusPending}, map[string]string{
		"status": models.StatusSent,
	})
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}
	_, err = d.events.UpdateGuarded(ev.EventID, []string{models.StatusSent}, map[string]string{
		"status":            models.StatusAwaitingReply,
		"last_contacted_at": repositories.FormatTimestamp(d.now()),
		"reminder_count":    strconv.Itoa(ev.ReminderCount),
	})
	return err
}
