// internal/controller/oauth_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/smartleadhq/smartlead-backend/internal/gmail"
	"github.com/smartleadhq/smartlead-backend/internal/model"
	"github.com/smartleadhq/smartlead-backend/internal/repository"
)

// adminSettingsPath is where the browser lands after the OAuth round trip
// when the state parameter carries no other return path.
const adminSettingsPath = "/admin/settings"

type OAuthController struct {
	CredentialRepo repository.CredentialRepositoryInterface
	OAuth          *gmail.OAuthClient
	OwnerID        string
}

// Connect starts the authorization leg: a full browser redirect to the
// consent screen, with the originating path stashed in state.
func (c *OAuthController) Connect(w http.ResponseWriter, r *http.Request) {
	returnTo := r.URL.Query().Get("return_to")
	if returnTo == "" {
		returnTo = adminSettingsPath
	}
	http.Redirect(w, r, c.OAuth.AuthURL(returnTo), http.StatusFound)
}

// Callback finishes the handshake: exchange the code, resolve the mailbox
// address, upsert the credential, and bounce back to the carried path.
// Nothing is persisted if any step fails.
func (c *OAuthController) Callback(w http.ResponseWriter, r *http.Request) {
	returnTo := r.URL.Query().Get("state")
	if returnTo == "" {
		returnTo = adminSettingsPath
	}

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		logrus.WithField("error", errParam).Warn("gmail authorization denied")
		c.redirectWithError(w, r, returnTo, "Gmail authorization was denied")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		c.redirectWithError(w, r, returnTo, "missing authorization code")
		return
	}

	token, err := c.OAuth.ExchangeCode(r.Context(), code)
	if err != nil {
		logrus.WithError(err).Error("gmail code exchange failed")
		c.redirectWithError(w, r, returnTo, "failed to connect Gmail account")
		return
	}

	email, err := c.OAuth.FetchUserEmail(r.Context(), token.AccessToken)
	if err != nil {
		logrus.WithError(err).Error("gmail userinfo fetch failed")
		c.redirectWithError(w, r, returnTo, "failed to connect Gmail account")
		return
	}

	expiresAt := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	cred := &model.Credential{
		OwnerID:     c.OwnerID,
		Email:       email,
		AccessToken: token.AccessToken,
		ExpiresAt:   &expiresAt,
	}
	if token.RefreshToken != "" {
		cred.RefreshToken = &token.RefreshToken
	}

	if err := c.CredentialRepo.Upsert(cred); err != nil {
		logrus.WithError(err).Error("failed to persist gmail credential")
		c.redirectWithError(w, r, returnTo, "failed to save Gmail connection")
		return
	}

	logrus.WithField("email", email).Info("gmail account connected")
	http.Redirect(w, r, returnTo, http.StatusFound)
}

func (c *OAuthController) redirectWithError(w http.ResponseWriter, r *http.Request, returnTo, msg string) {
	http.Redirect(w, r, returnTo+"?error="+url.QueryEscape(msg), http.StatusFound)
}

// Disconnect nulls the stored token fields for a mailbox.
func (c *OAuthController) Disconnect(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := c.CredentialRepo.Clear(c.OwnerID, body.Email); err != nil {
		logrus.WithError(err).Error("failed to disconnect gmail account")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "failed to disconnect Gmail account",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Gmail account disconnected",
	})
}

// Status reports whether a sendable mailbox is connected.
func (c *OAuthController) Status(w http.ResponseWriter, r *http.Request) {
	cred, err := c.CredentialRepo.GetActive(c.OwnerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{"connected": false}
	if cred.Connected() {
		resp["connected"] = true
		resp["email"] = cred.Email
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
