package gmail_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartleadhq/smartlead-backend/internal/gmail"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		from    string
		to      string
		subject string
		body    string
	}{
		{
			name:    "plain ascii",
			from:    "sales@smartlead.example",
			to:      "bob.jones@example.com",
			subject: "Follow up from SmartLead CRM",
			body:    "Hello Bob,\n\nJust checking in.",
		},
		{
			name:    "non-ascii subject and body",
			from:    "sales@smartlead.example",
			to:      "amelie@example.fr",
			subject: "héllo 🎉",
			body:    "Bonjour Amélie, café à 15h? 🎉",
		},
		{
			name:    "empty body",
			from:    "sales@smartlead.example",
			to:      "bob.jones@example.com",
			subject: "Quick question",
			body:    "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := gmail.EncodeMessage(tc.from, tc.to, tc.subject, tc.body)

			decoded, err := gmail.DecodeMessage(raw)
			require.NoError(t, err)

			assert.Equal(t, tc.from, decoded.From)
			assert.Equal(t, tc.to, decoded.To)
			assert.Equal(t, tc.subject, decoded.Subject)
			assert.Equal(t, tc.body, decoded.Body)
		})
	}
}

func TestEncodeMessageIsURLSafe(t *testing.T) {
	// Enough non-ascii bytes to force +/ into a standard base64 encoding.
	raw := gmail.EncodeMessage("a@x.com", "b@y.com", "🎉🎉🎉", strings.Repeat("ü", 300))

	assert.NotContains(t, raw, "+")
	assert.NotContains(t, raw, "/")
	assert.NotContains(t, raw, "=")
}

func TestEncodeMessageMimeEncodesNonAsciiSubject(t *testing.T) {
	raw := gmail.EncodeMessage("a@x.com", "b@y.com", "héllo", "body")

	decoded, err := gmail.DecodeMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, "héllo", decoded.Subject)

	// The wire form must carry an RFC 2047 encoded word, not raw UTF-8.
	plain := mustDecodeRaw(t, raw)
	assert.Contains(t, plain, "Subject: =?UTF-8?B?")
	assert.Contains(t, plain, "MIME-Version: 1.0")
	assert.Contains(t, plain, "Content-Type: text/plain; charset=UTF-8")
}

func TestEncodeMessageKeepsAsciiSubjectReadable(t *testing.T) {
	raw := gmail.EncodeMessage("a@x.com", "b@y.com", "Plain subject", "body")

	plain := mustDecodeRaw(t, raw)
	assert.Contains(t, plain, "Subject: Plain subject\r\n")
}

func mustDecodeRaw(t *testing.T, raw string) string {
	t.Helper()
	data, err := base64.RawURLEncoding.DecodeString(raw)
	require.NoError(t, err)
	return string(data)
}
