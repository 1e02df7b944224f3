package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"tech-entry-bot/internal/gateway"
	"tech-entry-bot/internal/models"
	"tech-entry-bot/internal/repositories"
	"tech-entry-bot/internal/utils"
)

// Sweeper re-prompts events still waiting for an answer. Each stale
// awaiting_reply or unsure row gets the reminder prompt until the reminder
// budget runs out, after which the event expires and is never contacted
// again. Interval and budget come from configuration; the sweep itself is
// triggered externally.
type Sweeper struct {
	events       models.EventRepository
	contacts     models.ContactRepository
	log          models.LogRepository
	dispatcher   *Dispatcher
	interval     time.Duration
	maxReminders int
	now          func() time.Time
}

func NewSweeper(events models.EventRepository, contacts models.ContactRepository, log models.LogRepository, dispatcher *Dispatcher, interval time.Duration, maxReminders int) *Sweeper {
	return &Sweeper{
		events:       events,
		contacts:     contacts,
		log:          log,
		dispatcher:   dispatcher,
		interval:     interval,
		maxReminders: maxReminders,
		now:          time.Now,
	}
}

func (s *Sweeper) Sweep(ctx context.Context) (models.SweepSummary, error) {
	var summary models.SweepSummary

	stale, err := s.events.ListByStatus(models.StatusAwaitingReply, models.StatusUnsure)
	if err != nil {
		return summary, err
	}

	now := s.now()
	for _, ev := range stale {
		if ev.LastContactedAt.IsZero() || now.Sub(ev.LastContactedAt) < s.interval {
			continue
		}

		if ev.ReminderCount >= s.maxReminders {
			if err := s.expire(ev); err != nil {
				return summary, err
			}
			summary.Expired++
			continue
		}

		reminded, err := s.remind(ctx, ev)
		if err != nil {
			return summary, err
		}
		if reminded {
			summary.Reminded++
		} else {
			summary.Failed++
		}
	}

	utils.LogInfo("Sweep done: reminded=%d expired=%d failed=%d", summary.Reminded, summary.Expired, summary.Failed)
	return summary, nil
}

func (s *Sweeper) remind(ctx context.Context, ev *models.Event) (bool, error) {
	contact, err := s.contacts.GetByID(ev.AssignedContactID)
	if err != nil {
		return false, err
	}
	if contact == nil {
		utils.LogError("Event %s references unknown contact %s", ev.EventID, ev.AssignedContactID)
		return false, s.log.Append(newLogEntry(
			ev.EventID, ev.AssignedContactID, models.DirectionOutbound,
			"reminder aborted: unknown contact", models.OutcomeSendFailed, s.now(),
		))
	}

	if err := s.dispatcher.SendSlotPrompt(ctx, contact.PhoneNumber, gateway.TemplateReminder); err != nil {
		utils.LogWarning("Reminder to %s for event %s failed: %v", contact.PhoneNumber, ev.EventID, err)
		// State untouched; the reminder budget is not spent on a failed send.
		return false, s.log.Append(newLogEntry(
			ev.EventID, contact.ContactID, models.DirectionOutbound,
			"reminder: "+err.Error(), models.OutcomeSendFailed, s.now(),
		))
	}

	applied, err := s.events.UpdateGuarded(ev.EventID, []string{ev.Status}, map[string]string{
		"status":            models.StatusAwaitingReply,
		"reminder_count":    strconv.Itoa(ev.ReminderCount + 1),
		"last_contacted_at": repositories.FormatTimestamp(s.now()),
	})
	if err != nil {
		return false, err
	}
	if !applied {
		utils.LogWarning("Reminder stamp for event %s lost its precondition", ev.EventID)
	}

	return true, s.log.Append(newLogEntry(
		ev.EventID, contact.ContactID, models.DirectionOutbound,
		fmt.Sprintf("reminder %d/%d", ev.ReminderCount+1, s.maxReminders),
		models.OutcomeOK, s.now(),
	))
}

func (s *Sweeper) expire(ev *models.Event) error {
	applied, err := s.events.UpdateGuarded(ev.EventID, []string{ev.Status}, map[string]string{
		"status": models.StatusExpired,
	})
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	utils.LogInfo("Event %s expired after %d reminders", ev.EventID, ev.ReminderCount)
	return s.log.Append(newLogEntry(
		ev.EventID, ev.AssignedContactID, models.DirectionOutbound,
		fmt.Sprintf("expired: retries exhausted (%d reminders)", ev.ReminderCount),
		models.OutcomeOK, s.now(),
	))
}
