// internal/gmail/oauth.go
package gmail

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const (
	defaultAuthEndpoint     = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenEndpoint    = "https://oauth2.googleapis.com/token"
	defaultUserinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// Scopes requested during the connection flow. Send alone is not enough:
// the inbound processor reads and labels the mailbox too.
var Scopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/gmail.labels",
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

// TokenResponse is the token endpoint's answer for both the
// authorization_code and refresh_token grants.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
}

// OAuthClient talks to Google's OAuth endpoints with plain net/http.
// Endpoints are overridable so tests can point it at a mock server.
type OAuthClient struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	HTTPClient       *http.Client
	AuthEndpoint     string
	TokenEndpoint    string
	UserinfoEndpoint string
}

func NewOAuthClient(clientID, clientSecret, redirectURI string) *OAuthClient {
	return &OAuthClient{
		ClientID:         clientID,
		ClientSecret:     clientSecret,
		RedirectURI:      redirectURI,
		HTTPClient:       http.DefaultClient,
		AuthEndpoint:     defaultAuthEndpoint,
		TokenEndpoint:    defaultTokenEndpoint,
		UserinfoEndpoint: defaultUserinfoEndpoint,
	}
}

// AuthURL builds the consent-screen redirect. state carries the path the
// browser should return to after the callback.
func (c *OAuthClient) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.ClientID)
	q.Set("redirect_uri", c.RedirectURI)
	q.Set("response_type", "code")
	q.Set("access_type", "offline")
	q.Set("prompt", "consent")
	q.Set("scope", strings.Join(Scopes, " "))
	q.Set("state", state)

	return c.AuthEndpoint + "?" + q.Encode()
}

// ExchangeCode trades an authorization code for tokens.
func (c *OAuthClient) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", c.RedirectURI)
	form.Set("grant_type", "authorization_code")

	return c.postToken(ctx, form)
}

// RefreshToken mints a new access token from a stored refresh token.
func (c *OAuthClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")

	return c.postToken(ctx, form)
}

func (c *OAuthClient) postToken(ctx context.Context, form url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "call token endpoint")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read token response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(respBody))
	}

	var token TokenResponse
	if err := json.Unmarshal(respBody, &token); err != nil {
		return nil, errors.Wrap(err, "parse token response")
	}
	return &token, nil
}

// FetchUserEmail resolves the authenticated mailbox address via the
// user-info endpoint.
func (c *OAuthClient) FetchUserEmail(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.UserinfoEndpoint, nil)
	if err != nil {
		return "", errors.Wrap(err, "build userinfo request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "call userinfo endpoint")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read userinfo response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Errorf("userinfo endpoint returned %d: %s", resp.StatusCode, string(respBody))
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(respBody, &info); err != nil {
		return "", errors.Wrap(err, "parse userinfo response")
	}
	if info.Email == "" {
		return "", errors.New("userinfo response missing email")
	}
	return info.Email, nil
}
