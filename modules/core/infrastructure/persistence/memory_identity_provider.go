package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/modules/core/domain/identity"
	"github.com/iota-uz/iota-admin/pkg/memstore"
)

type memoryAccount struct {
	identity.Account
	PasswordHash string
}

type MemoryIdentityProvider struct {
	accounts *memstore.Table[uuid.UUID, memoryAccount]
}

func NewMemoryIdentityProvider(db *memstore.DB) identity.Provider {
	accounts := memstore.Use[uuid.UUID, memoryAccount](db, AccountsTable).
		Unique("accounts_email_key", func(a memoryAccount) (string, bool) {
			return strings.ToLower(a.Email), a.Email != ""
		})
	users := MemoryUsers(db)
	// users.id ON DELETE CASCADE
	accounts.OnDelete(func(ctx context.Context, id uuid.UUID) {
		users.DeleteWhere(ctx, func(u user.User) bool { return u.ID == id })
	})
	return &MemoryIdentityProvider{accounts: accounts}
}

func (p *MemoryIdentityProvider) CreateAccount(ctx context.Context, email, password string) (identity.Account, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return identity.Account{}, err
	}
	account := identity.Account{ID: uuid.New(), Email: email, CreatedAt: time.Now().UTC()}
	if err := p.accounts.Insert(ctx, account.ID, memoryAccount{Account: account, PasswordHash: hash}); err != nil {
		return identity.Account{}, err
	}
	return account, nil
}

func (p *MemoryIdentityProvider) Verify(ctx context.Context, email, password string) (identity.Account, error) {
	found := p.accounts.Filter(ctx, func(a memoryAccount) bool { return strings.EqualFold(a.Email, email) })
	if len(found) == 0 {
		return identity.Account{}, identity.ErrInvalidCredentials
	}
	if err := checkPassword(found[0].PasswordHash, password); err != nil {
		return identity.Account{}, err
	}
	return found[0].Account, nil
}

func (p *MemoryIdentityProvider) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	a, ok := p.accounts.Get(ctx, id)
	if !ok {
		return identity.ErrAccountNotFound
	}
	a.Email = email
	_, err := p.accounts.Update(ctx, id, a)
	return err
}

func (p *MemoryIdentityProvider) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if !p.accounts.Delete(ctx, id) {
		return identity.ErrAccountNotFound
	}
	return nil
}
