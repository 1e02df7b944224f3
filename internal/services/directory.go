package services

import (
	"fmt"
	"time"

	"tech-entry-bot/internal/models"
	"tech-entry-bot/internal/utils"
)

// ContactDirectory resolves which contact currently owns an event and
// re-targets an event when the current contact denies being the right
// person. The redirect history is kept, never rewritten.
type ContactDirectory struct {
	events   models.EventRepository
	contacts models.ContactRepository
	log      models.LogRepository
	now      func() time.Time
}

func NewContactDirectory(events models.EventRepository, contacts models.ContactRepository, log models.LogRepository) *ContactDirectory {
	return &ContactDirectory{
		events:   events,
		contacts: contacts,
		log:      log,
		now:      time.Now,
	}
}

func (d *ContactDirectory) CurrentContact(eventID string) (string, error) {
	ev, err := d.events.GetByID(eventID)
	if err != nil {
		return "", err
	}
	if ev == nil {
		return "", fmt.Errorf("%w: %s", models.ErrUnknownEvent, eventID)
	}
	return ev.AssignedContactID, nil
}

// Redirect reassigns the event to newContactID: the old contact joins the
// redirect chain, the status drops back to pending so the next kick reaches
// the new contact, and the selected slot is cleared. Self-redirects and
// chain cycles are rejected with the event untouched.
func (d *ContactDirectory) Redirect(eventID, newContactID string) error {
	ev, err := d.events.GetByID(eventID)
	if err != nil {
		return err
	}
	if ev == nil {
		return fmt.Errorf("%w: %s", models.ErrUnknownEvent, eventID)
	}

	target, err := d.contacts.GetByID(newContactID)
	if err != nil {
		return err
	}
	if target == nil {
		return fmt.Errorf("%w: %s", models.ErrUnknownContact, newContactID)
	}
	if newContactID == ev.AssignedContactID {
		return fmt.Errorf("%w: event %s is already assigned to %s", models.ErrInvalidRedirect, eventID, newContactID)
	}
	if ev.InRedirectChain(newContactID) {
		return fmt.Errorf("%w: %s was already tried for event %s", models.ErrInvalidRedirect, newContactID, eventID)
	}

	chain := append(append([]string{}, ev.RedirectChain...), ev.AssignedContactID)
	applied, err := d.events.UpdateGuarded(eventID, []string{ev.Status}, map[string]string{
		"assigned_contact_id": newContactID,
		"status":              models.StatusPending,
		"selected_slot":       "",
		"redirect_chain":      models.ChainString(chain),
	})
	if err != nil {
		return err
	}
	if !applied {
		utils.LogWarning("Redirect of event %s lost its precondition, skipping", eventID)
		return nil
	}

	utils.LogInfo("Event %s redirected from %s to %s", eventID, ev.AssignedContactID, newContactID)
	return d.log.Append(newLogEntry(
		eventID, newContactID, models.DirectionInbound,
		fmt.Sprintf("redirected from %s to %s", ev.AssignedContactID, newContactID),
		models.OutcomeOK, d.now(),
	))
}
