package auth

import (
	"context"

	"github.com/pkg/errors"
	cs "github.com/webtor-io/common-services"

	"github.com/strmhub-io/catalog/models"
)

// SessionStore persists the single upstream session.
type SessionStore interface {
	Get(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	UpdateTokens(ctx context.Context, accessToken, refreshToken string, expiresIn, createdAt int64) error
	Delete(ctx context.Context) error
}

var errDBNotInitialized = errors.New("db is nil")

type pgSessionStore struct {
	pg *cs.PG
}

func NewSessionStore(pg *cs.PG) SessionStore {
	return &pgSessionStore{pg: pg}
}

func (s *pgSessionStore) Get(ctx context.Context) (*models.Session, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errDBNotInitialized
	}
	return models.GetSession(ctx, db)
}

func (s *pgSessionStore) Save(ctx context.Context, sess *models.Session) error {
	db := s.pg.Get()
	if db == nil {
		return errDBNotInitialized
	}
	return models.SaveSession(ctx, db, sess)
}

func (s *pgSessionStore) UpdateTokens(ctx context.Context, accessToken, refreshToken string, expiresIn, createdAt int64) error {
	db := s.pg.Get()
	if db == nil {
		return errDBNotInitialized
	}
	return models.UpdateSessionTokens(ctx, db, accessToken, refreshToken, expiresIn, createdAt)
}

func (s *pgSessionStore) Delete(ctx context.Context) error {
	db := s.pg.Get()
	if db == nil {
		return errDBNotInitialized
	}
	return models.DeleteSession(ctx, db)
}
