package repository

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/smartleadhq/smartlead-backend/internal/model"
)

// CredentialRepositoryInterface defines the credential store contract used by
// the token service and the OAuth connection flow.
type CredentialRepositoryInterface interface {
	Upsert(c *model.Credential) error
	GetActive(ownerID string) (*model.Credential, error)
	GetByEmail(ownerID, email string) (*model.Credential, error)
	UpdateToken(ownerID, email, accessToken string, expiresAt time.Time) error
	Clear(ownerID, email string) error
}

type CredentialRepository struct {
	DB *sql.DB
}

// Upsert creates or overwrites the credential for (owner, email). Re-running
// the OAuth flow for an already-connected mailbox lands here and is safe.
func (r *CredentialRepository) Upsert(c *model.Credential) error {
	c.CreatedAt = time.Now()
	query := `
        INSERT INTO credentials (owner_id, email, access_token, refresh_token, expires_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (owner_id, email) DO UPDATE
        SET access_token = EXCLUDED.access_token,
            refresh_token = EXCLUDED.refresh_token,
            expires_at = EXCLUDED.expires_at,
            updated_at = NOW()
        RETURNING id, created_at
    `
	err := r.DB.QueryRow(query, c.OwnerID, c.Email, c.AccessToken, c.RefreshToken, c.ExpiresAt, c.CreatedAt).
		Scan(&c.ID, &c.CreatedAt)
	return errors.Wrap(err, "upsert credential")
}

// GetActive returns the most recently created credential for the owner, or
// nil when the owner has never connected a mailbox.
func (r *CredentialRepository) GetActive(ownerID string) (*model.Credential, error) {
	query := `
        SELECT id, owner_id, email, access_token, refresh_token, expires_at, created_at, updated_at
        FROM credentials
        WHERE owner_id = $1
        ORDER BY created_at DESC
        LIMIT 1
    `
	return r.scanOne(r.DB.QueryRow(query, ownerID))
}

func (r *CredentialRepository) GetByEmail(ownerID, email string) (*model.Credential, error) {
	query := `
        SELECT id, owner_id, email, access_token, refresh_token, expires_at, created_at, updated_at
        FROM credentials
        WHERE owner_id = $1 AND email = $2
    `
	return r.scanOne(r.DB.QueryRow(query, ownerID, email))
}

func (r *CredentialRepository) scanOne(row *sql.Row) (*model.Credential, error) {
	var c model.Credential
	err := row.Scan(&c.ID, &c.OwnerID, &c.Email, &c.AccessToken, &c.RefreshToken, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not connected
		}
		return nil, err
	}
	return &c, nil
}

// UpdateToken persists a freshly minted access token and its expiry.
func (r *CredentialRepository) UpdateToken(ownerID, email, accessToken string, expiresAt time.Time) error {
	query := `
        UPDATE credentials
        SET access_token = $3, expires_at = $4, updated_at = NOW()
        WHERE owner_id = $1 AND email = $2
    `
	_, err := r.DB.Exec(query, ownerID, email, accessToken, expiresAt)
	return errors.Wrap(err, "update credential token")
}

// Clear nulls the token fields on disconnect. The row stays so history keeps
// a marker of the mailbox that was connected.
func (r *CredentialRepository) Clear(ownerID, email string) error {
	query := `
        UPDATE credentials
        SET access_token = '', refresh_token = NULL, expires_at = NULL, updated_at = NOW()
        WHERE owner_id = $1 AND email = $2
    `
	_, err := r.DB.Exec(query, ownerID, email)
	return errors.Wrap(err, "clear credential")
}

var _ CredentialRepositoryInterface = (*CredentialRepository)(nil)
