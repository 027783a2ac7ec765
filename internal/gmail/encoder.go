// internal/gmail/encoder.go
package gmail

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/mail"
	"strings"

	"github.com/pkg/errors"
)

// EncodeMessage builds an RFC 2822 plain-text message and encodes it as
// URL-safe base64 without padding, which is the only form the Gmail send
// endpoint accepts in its "raw" field.
func EncodeMessage(from, to, subject, body string) string {
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + encodeSubject(subject) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)

	return base64.RawURLEncoding.EncodeToString([]byte(sb.String()))
}

// encodeSubject MIME-encodes the subject per RFC 2047 when it contains
// anything outside printable ASCII. ASCII subjects pass through untouched.
func encodeSubject(subject string) string {
	if isPrintableASCII(subject) {
		return subject
	}
	return fmt.Sprintf("=?UTF-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(subject)))
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 32 || s[i] > 126 {
			return false
		}
	}
	return true
}

// DecodedMessage is the parsed form of an encoded outbound message.
type DecodedMessage struct {
	From    string
	To      string
	Subject string
	Body    string
}

// DecodeMessage reverses EncodeMessage. Used by tests and the activity log
// debug endpoint; the send path never needs it.
func DecodeMessage(raw string) (*DecodedMessage, error) {
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(raw, "="))
	if err != nil {
		return nil, errors.Wrap(err, "decode raw message")
	}

	msg, err := mail.ReadMessage(strings.NewReader(string(data)))
	if err != nil {
		return nil, errors.Wrap(err, "parse rfc2822 message")
	}

	dec := new(mime.WordDecoder)
	subject, err := dec.DecodeHeader(msg.Header.Get("Subject"))
	if err != nil {
		return nil, errors.Wrap(err, "decode subject")
	}

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}

	return &DecodedMessage{
		From:    msg.Header.Get("From"),
		To:      msg.Header.Get("To"),
		Subject: subject,
		Body:    string(body),
	}, nil
}
