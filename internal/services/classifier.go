package services

import (
	"strings"

	"tech-entry-bot/internal/models"
	"tech-entry-bot/internal/utils"
)

type IntentKind int

const (
	IntentUnrecognized IntentKind = iota
	IntentSlotSelected
	IntentUnsure
	IntentNotTheContact
)

func (k IntentKind) String() string {
	switch k {
	case IntentSlotSelected:
		return "slot_selected"
	case IntentUnsure:
		return "unsure"
	case IntentNotTheContact:
		return "not_the_contact"
	}
	return "unrecognized"
}

// Intent is the tagged result of classifying one inbound payload.
type Intent struct {
	Kind IntentKind
	Slot models.Slot // set for IntentSlotSelected
	// ContactRef is the E.164 phone of the proposed new contact for
	// IntentNotTheContact; empty when the reference is absent or unreadable.
	ContactRef string
}

// Classify maps an inbound payload to one of the four intents. Interactive
// reply ids are authoritative; free text is accepted only where the cloud
// gateway renders the list as text (a bare slot label) or where the contact
// reply carries a phone number.
func Classify(msg models.InboundMessage) Intent {
	if msg.ListReplyID != "" {
		if slot, ok := models.SlotByID(msg.ListReplyID); ok {
			return Intent{Kind: IntentSlotSelected, Slot: slot}
		}
		return Intent{Kind: IntentUnrecognized}
	}

	switch msg.ButtonID {
	case models.ButtonIDUnsure:
		return Intent{Kind: IntentUnsure}
	case models.ButtonIDNotContact:
		return Intent{Kind: IntentNotTheContact, ContactRef: contactRef(msg)}
	}

	// A shared contact card without the button still means a redirect.
	if msg.ContactPhone != "" {
		return Intent{Kind: IntentNotTheContact, ContactRef: contactRef(msg)}
	}

	body := strings.TrimSpace(msg.Body)
	if slot, ok := models.SlotByLabel(body); ok {
		return Intent{Kind: IntentSlotSelected, Slot: slot}
	}
	// The text fallback gateway asks for exactly this phrase.
	if strings.EqualFold(body, "not sure") {
		return Intent{Kind: IntentUnsure}
	}
	if strings.HasPrefix(body, "05") || strings.HasPrefix(body, "+") {
		if phone := utils.NormalizeE164(body); phone != "" {
			return Intent{Kind: IntentNotTheContact, ContactRef: phone}
		}
	}

	return Intent{Kind: IntentUnrecognized}
}

func contactRef(msg models.InboundMessage) string {
	if phone := utils.NormalizeE164(msg.ContactPhone); phone != "" {
		return phone
	}
	return utils.NormalizeE164(strings.TrimSpace(msg.Body))
}
