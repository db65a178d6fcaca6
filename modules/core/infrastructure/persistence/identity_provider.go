package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/iota-uz/iota-admin/modules/core/domain/identity"
	"github.com/iota-uz/iota-admin/pkg/composables"
)

const (
	accountInsertQuery      = `INSERT INTO accounts (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`
	accountByEmailQuery     = `SELECT id, email, password_hash, created_at FROM accounts WHERE email = $1`
	accountUpdateEmailQuery = `UPDATE accounts SET email = $2 WHERE id = $1`
	accountDeleteQuery      = `DELETE FROM accounts WHERE id = $1`
)

// HashPassword hashes with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}
	return string(hash), nil
}

func checkPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return identity.ErrInvalidCredentials
	}
	return nil
}

type PgIdentityProvider struct{}

func NewIdentityProvider() identity.Provider {
	return &PgIdentityProvider{}
}

func (p *PgIdentityProvider) CreateAccount(ctx context.Context, email, password string) (identity.Account, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return identity.Account{}, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return identity.Account{}, errors.Wrap(err, "failed to get transaction")
	}
	account := identity.Account{ID: uuid.New(), Email: email, CreatedAt: time.Now().UTC()}
	if _, err := tx.Exec(ctx, accountInsertQuery, account.ID, account.Email, hash, account.CreatedAt); err != nil {
		return identity.Account{}, errors.Wrap(err, "failed to insert account")
	}
	return account, nil
}

func (p *PgIdentityProvider) Verify(ctx context.Context, email, password string) (identity.Account, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return identity.Account{}, errors.Wrap(err, "failed to get transaction")
	}
	var account identity.Account
	var hash string
	err = tx.QueryRow(ctx, accountByEmailQuery, email).Scan(&account.ID, &account.Email, &hash, &account.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return identity.Account{}, identity.ErrInvalidCredentials
	}
	if err != nil {
		return identity.Account{}, errors.Wrap(err, "failed to get account")
	}
	if err := checkPassword(hash, password); err != nil {
		return identity.Account{}, err
	}
	return account, nil
}

func (p *PgIdentityProvider) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, accountUpdateEmailQuery, id, email)
	if err != nil {
		return errors.Wrap(err, "failed to update account email")
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrAccountNotFound
	}
	return nil
}

func (p *PgIdentityProvider) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, accountDeleteQuery, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete account")
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrAccountNotFound
	}
	return nil
}
