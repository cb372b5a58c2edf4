// Package credentials is the Persistent Credential Store: exactly one opaque
// bearer token kept in the local metadata table under a fixed key.
//
// Readers (the Request Gateway) get the Reader interface; only the Session
// Manager is handed the full Store and may write.
package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dokanload/internal/client/repositories/metadata"
)

// TokenKey is the metadata key the bearer token lives under.
const TokenKey = "token"

var ErrEmptyToken = errors.New("empty token")

// Reader exposes the stored token. An absent token is "" with a nil error.
type Reader interface {
	Token(ctx context.Context) (string, error)
}

// Store is the writable credential store.
type Store interface {
	Reader
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type store struct {
	repo metadata.Repository
}

func NewStore(repo metadata.Repository) Store {
	return &store{repo: repo}
}

func (s *store) Token(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, TokenKey)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return string(v), nil
}

func (s *store) Save(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := s.repo.Set(ctx, TokenKey, []byte(token)); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Clear removes the token; clearing an empty store is not an error.
func (s *store) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
