package gmail_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartleadhq/smartlead-backend/internal/gmail"
)

func newTestClient() *gmail.OAuthClient {
	return gmail.NewOAuthClient("client-id", "client-secret", "http://localhost:8080/auth/gmail/callback")
}

func TestAuthURL(t *testing.T) {
	c := newTestClient()

	authURL := c.AuthURL("/leads")

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "http://localhost:8080/auth/gmail/callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "/leads", q.Get("state"))

	scopes := strings.Split(q.Get("scope"), " ")
	assert.Contains(t, scopes, "https://www.googleapis.com/auth/gmail.send")
	assert.Contains(t, scopes, "https://www.googleapis.com/auth/gmail.readonly")
	assert.Contains(t, scopes, "https://www.googleapis.com/auth/gmail.modify")
	assert.Contains(t, scopes, "https://www.googleapis.com/auth/gmail.labels")
	assert.Contains(t, scopes, "https://www.googleapis.com/auth/userinfo.email")
}

func TestExchangeCode(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c := newTestClient()

	httpmock.RegisterResponder("POST", c.TokenEndpoint,
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, req.ParseForm())
			assert.Equal(t, "authorization_code", req.PostForm.Get("grant_type"))
			assert.Equal(t, "auth-code-1", req.PostForm.Get("code"))
			assert.Equal(t, "client-id", req.PostForm.Get("client_id"))
			assert.Equal(t, "client-secret", req.PostForm.Get("client_secret"))
			assert.Equal(t, c.RedirectURI, req.PostForm.Get("redirect_uri"))

			return httpmock.NewJsonResponse(200, map[string]interface{}{
				"access_token":  "at-1",
				"refresh_token": "rt-1",
				"expires_in":    3599,
				"token_type":    "Bearer",
			})
		})

	token, err := c.ExchangeCode(context.Background(), "auth-code-1")
	require.NoError(t, err)
	assert.Equal(t, "at-1", token.AccessToken)
	assert.Equal(t, "rt-1", token.RefreshToken)
	assert.EqualValues(t, 3599, token.ExpiresIn)
}

func TestExchangeCodeRejectedByProvider(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c := newTestClient()
	httpmock.RegisterResponder("POST", c.TokenEndpoint,
		httpmock.NewStringResponder(400, `{"error":"invalid_grant"}`))

	_, err := c.ExchangeCode(context.Background(), "bad-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestRefreshToken(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c := newTestClient()
	httpmock.RegisterResponder("POST", c.TokenEndpoint,
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, req.ParseForm())
			assert.Equal(t, "refresh_token", req.PostForm.Get("grant_type"))
			assert.Equal(t, "rt-1", req.PostForm.Get("refresh_token"))

			return httpmock.NewJsonResponse(200, map[string]interface{}{
				"access_token": "at-2",
				"expires_in":   3599,
			})
		})

	token, err := c.RefreshToken(context.Background(), "rt-1")
	require.NoError(t, err)
	assert.Equal(t, "at-2", token.AccessToken)
	assert.Empty(t, token.RefreshToken)
}

func TestFetchUserEmail(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c := newTestClient()
	httpmock.RegisterResponder("GET", c.UserinfoEndpoint,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer at-1", req.Header.Get("Authorization"))
			return httpmock.NewJsonResponse(200, map[string]interface{}{
				"email": "sales@smartlead.example",
			})
		})

	email, err := c.FetchUserEmail(context.Background(), "at-1")
	require.NoError(t, err)
	assert.Equal(t, "sales@smartlead.example", email)
}

func TestFetchUserEmailMissingEmail(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c := newTestClient()
	httpmock.RegisterResponder("GET", c.UserinfoEndpoint,
		httpmock.NewStringResponder(200, `{}`))

	_, err := c.FetchUserEmail(context.Background(), "at-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing email")
}
