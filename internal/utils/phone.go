package utils

import (
	"strings"

	"go.mau.fi/whatsmeow/types"
)

// NormalizeE164 converts the phone formats seen in event imports and webhook
// payloads ("whatsapp:+972...", "05XXXXXXXX", "972...") to E.164. Returns ""
// when the input cannot be normalized.
func NormalizeE164(raw string) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "whatsapp:")
	var b strings.Builder
	for _, ch := range s {
		if ch >= '0' && ch <= '9' || ch == '+' {
			b.WriteRune(ch)
		}
	}
	s = b.String()

	switch {
	case s == "":
		return ""
	case strings.HasPrefix(s, "+"):
		if len(s) < 8 {
			return ""
		}
		return s
	case strings.HasPrefix(s, "972"):
		return "+" + s
	// Local Israeli numbers: 05XXXXXXXX or shorter landline forms
	case strings.HasPrefix(s, "0") && (len(s) == 9 || len(s) == 10):
		return "+972" + s[1:]
	}
	return ""
}

// ParseJID builds the WhatsApp JID for an E.164 phone number.
func ParseJID(phone string) (types.JID, error) {
	return types.ParseJID(strings.TrimPrefix(phone, "+") + "@s.whatsapp.net")
}
