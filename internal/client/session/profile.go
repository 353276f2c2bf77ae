package session

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/crux/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/crux/internal/dbx"
)

const keyIdentity = "identity"

// ProfileStore caches the signed-in profile on the device.
type ProfileStore interface {
	Save(ctx context.Context, u *AuthUser) error
	Load(ctx context.Context) (*AuthUser, error)
	Clear(ctx context.Context) error
}

// SQLProfileStore keeps the profile in the vault metadata table.
type SQLProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *SQLProfileStore {
	return &SQLProfileStore{db: db}
}

// Save writes the identity and the profile document in one transaction.
func (p *SQLProfileStore) Save(ctx context.Context, u *AuthUser) error {
	return dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyIdentity, []byte(u.Identity)); err != nil {
			return err
		}
		return metadata.SetJSON(ctx, repo, metadata.KeyProfile, u)
	})
}

// Load returns nil, nil when nothing is cached.
func (p *SQLProfileStore) Load(ctx context.Context) (*AuthUser, error) {
	var u AuthUser
	ok, err := metadata.GetJSON(ctx, metadata.NewSQLiteRepository(p.db), metadata.KeyProfile, &u)
	if err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

// Clear removes the cached profile. Settings stay.
func (p *SQLProfileStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, keyIdentity); err != nil {
			return err
		}
		return repo.Delete(ctx, metadata.KeyProfile)
	})
}
