package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tech-entry-bot/internal/models"
	"tech-entry-bot/internal/utils"
	"tech-entry-bot/internal/wsnotify"
)

// Reducer applies inbound replies to event state. It is pure with respect to
// the rows it touches: the same pre-state and intent always produce the same
// post-state. Conversational problems (unrecognized text, unresolvable
// redirect targets) are soft failures recorded in the Log; only store I/O
// surfaces as an error.
type Reducer struct {
	events    models.EventRepository
	contacts  models.ContactRepository
	log       models.LogRepository
	directory *ContactDirectory
	now       func() time.Time
}

func NewReducer(events models.EventRepository, contacts models.ContactRepository, log models.LogRepository, directory *ContactDirectory) *Reducer {
	return &Reducer{
		events:    events,
		contacts:  contacts,
		log:       log,
		directory: directory,
		now:       time.Now,
	}
}

func (r *Reducer) HandleInbound(ctx context.Context, from string, msg models.InboundMessage) error {
	phone := utils.NormalizeE164(from)
	if phone == "" {
		return r.logOrphan(from, msg)
	}

	sender, err := r.contacts.GetByPhone(phone)
	if err != nil {
		return err
	}
	if sender == nil {
		return r.logOrphan(phone, msg)
	}

	ev, err := r.events.FindActiveByContact(sender.ContactID)
	if err != nil {
		return err
	}
	if ev == nil {
		// Replies after expiry or answer change nothing.
		return r.logOrphan(phone, msg)
	}

	intent := Classify(msg)
	utils.LogInfo("Inbound from %s for event %s classified as %s", sender.ContactID, ev.EventID, intent.Kind)

	switch intent.Kind {
	case IntentSlotSelected:
		return r.applySlot(ev, sender, intent.Slot)
	case IntentUnsure:
		return r.applyUnsure(ev, sender, "unsure")
	case IntentNotTheContact:
		return r.applyRedirect(ev, sender, intent)
	default:
		return r.applyUnrecognized(ev, sender, msg)
	}
}

func (r *Reducer) applySlot(ev *models.Event, sender *models.TechContact, slot models.Slot) error {
	applied, err := r.events.UpdateGuarded(ev.EventID, models.ActiveReplyStatuses, map[string]string{
		"selected_slot": slot.Label,
		"status":        models.StatusAnswered,
	})
	if err != nil {
		return err
	}
	if !applied {
		return r.logStale(ev, sender, "slot_selected="+slot.Label)
	}

	wsnotify.SendConversationEvent(ev.EventID, sender.ContactID, models.DirectionInbound,
		IntentSlotSelected.String(), models.StatusAnswered, slot.Label)
	return r.log.Append(newLogEntry(
		ev.EventID, sender.ContactID, models.DirectionInbound,
		"slot_selected="+slot.Label, models.OutcomeOK, r.now(),
	))
}

func (r *Reducer) applyUnsure(ev *models.Event, sender *models.TechContact, summary string) error {
	applied, err := r.events.UpdateGuarded(ev.EventID, models.ActiveReplyStatuses, map[string]string{
		"status": models.StatusUnsure,
	})
	if err != nil {
		return err
	}
	if !applied {
		return r.logStale(ev, sender, summary)
	}

	wsnotify.SendConversationEvent(ev.EventID, sender.ContactID, models.DirectionInbound,
		IntentUnsure.String(), models.StatusUnsure, summary)
	return r.log.Append(newLogEntry(
		ev.EventID, sender.ContactID, models.DirectionInbound,
		summary, models.OutcomeOK, r.now(),
	))
}

func (r *Reducer) applyRedirect(ev *models.Event, sender *models.TechContact, intent Intent) error {
	if intent.ContactRef == "" {
		return r.parkUnsure(ev, sender, "not_the_contact without resolvable reference")
	}

	target, err := r.contacts.GetByPhone(intent.ContactRef)
	if err != nil {
		return err
	}
	if target == nil {
		return r.parkUnsure(ev, sender, fmt.Sprintf("not_the_contact: no contact for %s", intent.ContactRef))
	}

	if err := r.directory.Redirect(ev.EventID, target.ContactID); err != nil {
		if errors.Is(err, models.ErrInvalidRedirect) {
			utils.LogWarning("Redirect rejected for event %s: %v", ev.EventID, err)
			return r.log.Append(newLogEntry(
				ev.EventID, sender.ContactID, models.DirectionInbound,
				"invalid redirect to "+target.ContactID, models.OutcomeParseFailed, r.now(),
			))
		}
		return err
	}

	// The directory wrote the audit row for the transition.
	wsnotify.SendConversationEvent(ev.EventID, target.ContactID, models.DirectionInbound,
		IntentNotTheContact.String(), models.StatusPending, "redirected from "+sender.ContactID)
	return nil
}

// parkUnsure handles the intentionally soft case: the contact says they are
// the wrong person but gives nothing we can resolve. The event waits at
// unsure for manual resolution or the next sweep.
func (r *Reducer) parkUnsure(ev *models.Event, sender *models.TechContact, summary string) error {
	applied, err := r.events.UpdateGuarded(ev.EventID, models.ActiveReplyStatuses, map[string]string{
		"status": models.StatusUnsure,
	})
	if err != nil {
		return err
	}
	if !applied {
		return r.logStale(ev, sender, summary)
	}

	wsnotify.SendConversationEvent(ev.EventID, sender.ContactID, models.DirectionInbound,
		IntentNotTheContact.String(), models.StatusUnsure, summary)
	return r.log.Append(newLogEntry(
		ev.EventID, sender.ContactID, models.DirectionInbound,
		summary, models.OutcomeParseFailed, r.now(),
	))
}

func (r *Reducer) applyUnrecognized(ev *models.Event, sender *models.TechContact, msg models.InboundMessage) error {
	// No status change; the next sweep cycle re-prompts.
	wsnotify.SendConversationEvent(ev.EventID, sender.ContactID, models.DirectionInbound,
		IntentUnrecognized.String(), ev.Status, msg.Body)
	return r.log.Append(newLogEntry(
		ev.EventID, sender.ContactID, models.DirectionInbound,
		"unrecognized: "+msg.Body, models.OutcomeParseFailed, r.now(),
	))
}

func (r *Reducer) logStale(ev *models.Event, sender *models.TechContact, summary string) error {
	utils.LogWarning("Inbound for event %s lost its precondition, recording only", ev.EventID)
	return r.log.Append(newLogEntry(
		ev.EventID, sender.ContactID, models.DirectionInbound,
		"stale: "+summary, models.OutcomeParseFailed, r.now(),
	))
}

func (r *Reducer) logOrphan(phone string, msg models.InboundMessage) error {
	utils.LogInfo("Orphan inbound from %s ignored", phone)
	summary := msg.Body
	if summary == "" {
		summary = msg.ListReplyID + msg.ButtonID
	}
	return r.log.Append(newLogEntry(
		"-", phone, models.DirectionInbound,
		"orphan: "+summary, models.OutcomeParseFailed, r.now(),
	))
}
