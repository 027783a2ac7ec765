// internal/service/token_service.go
package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	appErrors "github.com/smartleadhq/smartlead-backend/internal/errors"
	"github.com/smartleadhq/smartlead-backend/internal/gmail"
	"github.com/smartleadhq/smartlead-backend/internal/repository"
)

// TokenRefresher is the send pipeline's view of the token service.
type TokenRefresher interface {
	RefreshAccessToken(ctx context.Context, email string) (string, error)
}

// TokenService keeps a usable access token available for a connected
// mailbox. It always hits the refresh endpoint rather than trusting the
// stored expiry, trading a little latency for immunity to clock skew.
type TokenService struct {
	CredentialRepo repository.CredentialRepositoryInterface
	OAuth          *gmail.OAuthClient
	OwnerID        string
}

// RefreshAccessToken mints a new access token for the mailbox and persists
// it with its computed expiry. Failures are not retried here; the caller
// aborts the send rather than risk a stale token.
func (s *TokenService) RefreshAccessToken(ctx context.Context, email string) (string, error) {
	cred, err := s.CredentialRepo.GetByEmail(s.OwnerID, email)
	if err != nil {
		return "", err
	}
	if cred == nil {
		return "", appErrors.NewNotConnected()
	}
	if !cred.Connected() {
		return "", appErrors.NewNoRefreshToken(email)
	}

	token, err := s.OAuth.RefreshToken(ctx, *cred.RefreshToken)
	if err != nil {
		return "", appErrors.NewRefreshFailed(err.Error())
	}
	if token.AccessToken == "" {
		return "", appErrors.NewRefreshFailed("token endpoint response missing access_token")
	}

	expiresAt := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	if err := s.CredentialRepo.UpdateToken(s.OwnerID, email, token.AccessToken, expiresAt); err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"email":      email,
		"expires_at": expiresAt,
	}).Debug("refreshed gmail access token")

	return token.AccessToken, nil
}

var _ TokenRefresher = (*TokenService)(nil)
