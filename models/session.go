package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
)

// SessionID is the fixed primary key of the singleton auth session row.
const SessionID = "trakt"

// Session holds the device-code OAuth tokens and the resolved user identity.
// At most one row exists; it is created on a successful device-code exchange,
// updated in place on token refresh and deleted on logout or when a refresh
// fails for good.
type Session struct {
	tableName struct{} `pg:"session"`

	ID           string     `pg:"session_id,pk"`
	AccessToken  string     `pg:"access_token,notnull"`
	RefreshToken string     `pg:"refresh_token,notnull"`
	ExpiresIn    int64      `pg:"expires_in,notnull"`
	Scope        string     `pg:"scope"`
	CreatedAt    int64      `pg:"created_at,notnull"` // unix seconds, as issued by the token endpoint
	Username     *string    `pg:"username"`
	UserSlug     *string    `pg:"user_slug"`
	LastSyncAt   *time.Time `pg:"last_sync_at"` // last successful token exchange with the upstream
}

// ExpiresWithin reports whether the access token expires within the lookahead
// window from now.
func (s *Session) ExpiresWithin(lookahead time.Duration, now time.Time) bool {
	expiry := time.Unix(s.CreatedAt+s.ExpiresIn, 0)
	return !expiry.After(now.Add(lookahead))
}

func GetSession(ctx context.Context, db *pg.DB) (*Session, error) {
	s := &Session{}
	err := db.Model(s).
		Context(ctx).
		Where("session_id = ?", SessionID).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func SaveSession(ctx context.Context, db *pg.DB, s *Session) error {
	s.ID = SessionID
	_, err := db.Model(s).
		Context(ctx).
		OnConflict("(session_id) DO UPDATE").
		Set(`
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_in = EXCLUDED.expires_in,
			scope = EXCLUDED.scope,
			created_at = EXCLUDED.created_at,
			username = EXCLUDED.username,
			user_slug = EXCLUDED.user_slug,
			last_sync_at = EXCLUDED.last_sync_at
		`).
		Insert()
	return err
}

// UpdateSessionTokens rotates the tokens after a refresh, leaving the user
// identity fields untouched.
func UpdateSessionTokens(ctx context.Context, db *pg.DB, accessToken, refreshToken string, expiresIn, createdAt int64) error {
	_, err := db.Model((*Session)(nil)).
		Context(ctx).
		Set("access_token = ?", accessToken).
		Set("refresh_token = ?", refreshToken).
		Set("expires_in = ?", expiresIn).
		Set("created_at = ?", createdAt).
		Set("last_sync_at = now()").
		Where("session_id = ?", SessionID).
		Update()
	return err
}

func DeleteSession(ctx context.Context, db *pg.DB) error {
	_, err := db.Model((*Session)(nil)).
		Context(ctx).
		Where("session_id = ?", SessionID).
		Delete()
	return err
}
