// internal/gmail/transport.go
package gmail

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	appErrors "github.com/smartleadhq/smartlead-backend/internal/errors"
)

const defaultSendEndpoint = "https://gmail.googleapis.com/gmail/v1/users/me/messages/send"

// Mailer submits an already-encoded message on behalf of a mailbox.
// Callers receive this as an injected capability; nothing in the codebase
// intercepts HTTP traffic to route mail.
type Mailer interface {
	Send(ctx context.Context, accessToken, raw string) (string, error)
}

// Transport is the real Gmail submission client.
type Transport struct {
	HTTPClient   *http.Client
	SendEndpoint string
}

func NewTransport() *Transport {
	return &Transport{
		HTTPClient:   http.DefaultClient,
		SendEndpoint: defaultSendEndpoint,
	}
}

// Send POSTs the raw payload with bearer auth. Any non-2xx answer is a hard
// transport failure carrying the provider's status and body; no retries here.
func (t *Transport) Send(ctx context.Context, accessToken, raw string) (string, error) {
	payload, err := json.Marshal(map[string]string{"raw": raw})
	if err != nil {
		return "", errors.Wrap(err, "marshal send payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.SendEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "build send request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "call gmail send endpoint")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read send response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", appErrors.NewTransport(resp.StatusCode, string(respBody))
	}

	var sendResp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &sendResp); err != nil {
		return "", errors.Wrap(err, "parse send response")
	}
	return sendResp.ID, nil
}

var _ Mailer = (*Transport)(nil)
