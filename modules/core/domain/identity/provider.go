// Package identity describes the account store that owns credentials. A user
// record shares the id of the account minted for it.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
)

type Account struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time
}

type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (Account, error)
	Verify(ctx context.Context, email, password string) (Account, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}
