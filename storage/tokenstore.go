package storage

import (
	"context"
	"errors"
)

// TokenStore keeps the bearer token under TokenKey.
type TokenStore struct {
	Store Store
}

func NewTokenStore(s Store) *TokenStore {
	return &TokenStore{Store: s}
}

// Token returns "" when no token is stored.
func (t *TokenStore) Token(ctx context.Context) (string, error) {
	token, err := t.Store.Get(ctx, TokenKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return token, err
}

func (t *TokenStore) SetToken(ctx context.Context, token string) error {
	return t.Store.Set(ctx, TokenKey, token)
}

func (t *TokenStore) Clear(ctx context.Context) error {
	return t.Store.Delete(ctx, TokenKey)
}
