package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tech-entry-bot/internal/models"
	"tech-entry-bot/internal/utils"

	"github.com/go-resty/resty/v2"
)

// TwilioGateway delivers through the Twilio WhatsApp API instead of a paired
// device. Interactive content is rendered as plain text, so replies come back
// as slot labels or phone numbers in the message body; inbound traffic
// arrives on the /webhook endpoint rather than through this type.
type TwilioGateway struct {
	httpClient *resty.Client
	accountSID string
	from       string
}

func NewTwilioGateway(accountSID, authToken, from string) *TwilioGateway {
	client := resty.New().
		SetBaseURL("https://api.twilio.com").
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetBasicAuth(accountSID, authToken)

	return &TwilioGateway{
		httpClient: client,
		accountSID: accountSID,
		from:       from,
	}
}

func (g *TwilioGateway) SendTemplate(ctx context.Context, phone, templateID string) error {
	body, err := templateBody(templateID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailure, err)
	}
	return g.post(ctx, phone, body)
}

func (g *TwilioGateway) SendSlotList(ctx context.Context, phone string, sections []models.SlotSection) error {
	var b strings.Builder
	b.WriteString("Available entry times (reply with one, e.g. 14:30):\n")
	for _, section := range sections {
		b.WriteString("\n")
		b.WriteString(section.Title)
		b.WriteString(": ")
		labels := make([]string, 0, len(section.Slots))
		for _, slot := range section.Slots {
			labels = append(labels, slot.Label)
		}
		b.WriteString(strings.Join(labels, ", "))
	}
	return g.post(ctx, phone, b.String())
}

func (g *TwilioGateway) SendOptionButtons(ctx context.Context, phone string) error {
	return g.post(ctx, phone,
		"Not sure yet? Reply \"not sure\".\n"+
			"Not the right person? Reply with the correct contact's phone number.")
}

func (g *TwilioGateway) post(ctx context.Context, phone, body string) error {
	utils.LogInfo("Sending Twilio message to %s", phone)

	resp, err := g.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"To":   "whatsapp:" + phone,
			"From": g.from,
			"Body": body,
		}).
		Post(fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", g.accountSID))

	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailure, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: twilio returned %d: %s", ErrSendFailure, resp.StatusCode(), resp.String())
	}
	return nil
}
