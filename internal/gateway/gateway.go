// Package gateway abstracts WhatsApp delivery. The conversation core only
// sees the Gateway interface; the native whatsmeow client and the Twilio
// cloud API are interchangeable behind it. Delivery is at-least-once-or-lost;
// the core guarantees exactly-once issuance on its own side.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"tech-entry-bot/internal/models"
)

// ErrSendFailure wraps any delivery failure. The caller records it and
// leaves the event in a state the next kick or sweep will retry.
var ErrSendFailure = errors.New("gateway send failure")

const (
	TemplateOpening  = "tech_entry_request"
	TemplateReminder = "tech_entry_followup"
)

type Gateway interface {
	// SendTemplate delivers the free-text opener or reminder.
	SendTemplate(ctx context.Context, phone, templateID string) error
	// SendSlotList delivers the interactive time list (29 half-hour slots).
	SendSlotList(ctx context.Context, phone string, sections []models.SlotSection) error
	// SendOptionButtons delivers the two deviation buttons ("not sure yet"
	// and "I'm not the right contact").
	SendOptionButtons(ctx context.Context, phone string) error
}

// InboundHandler receives webhook-equivalent payloads from gateways that
// push inbound messages directly (the native client).
type InboundHandler func(from string, msg models.InboundMessage)

func templateBody(templateID string) (string, error) {
	switch templateID {
	case TemplateOpening:
		return "Hi! This is the venue's production assistant. " +
			"What entry time works for your tech setup? " +
			"Pick a half-hour slot from the list (06:00-20:00), " +
			"tell us you're not sure yet, or point us to the right contact.", nil
	case TemplateReminder:
		return "Hi, following up about the tech entry time for your event. " +
			"Could you pick a slot from the list?", nil
	}
	return "", fmt.Errorf("unknown template %q", templateID)
}
