package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+972521234567", "+972521234567"},
		{"whatsapp:+972521234567", "+972521234567"},
		{"972521234567", "+972521234567"},
		{"0521234567", "+972521234567"},
		{"052-123-4567", "+972521234567"},
		{"052 123 4567", "+972521234567"},
		{"03-1234567", "+97231234567"},
		{"+14155552671", "+14155552671"},
		{"", ""},
		{"hello", ""},
		{"+123", ""},
		{"12345", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeE164(tc.in), "input %q", tc.in)
	}
}

func TestParseJID(t *testing.T) {
	jid, err := ParseJID("+972521234567")
	assert.NoError(t, err)
	assert.Equal(t, "972521234567", jid.User)
	assert.Equal(t, "s.whatsapp.net", jid.Server)
}
