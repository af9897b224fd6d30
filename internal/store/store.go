// Package store provides durable keyed persistence for accounts and users.
// Two implementations exist: PostgresStore (the production write store) and
// MemoryStore (dev mode and tests). Both guarantee that Mutate is atomic per
// account id.
package store

import (
	"context"
	"errors"

	"github.com/harborbank/ledger-service/internal/models"
)

var (
	// ErrNotFound is returned when no record exists for the given key.
	ErrNotFound = errors.New("record not found")

	// ErrEmailTaken is returned by CreateUser when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// AccountStore is the persistence contract the ledger service runs on.
//
// Mutate is the atomic read-modify-write primitive: it reads the current
// record for id, applies fn to a private copy, and writes the result back,
// indivisibly with respect to any concurrent Mutate/Update/Delete on the same
// id. If fn returns an error, nothing is written and the error is propagated
// unchanged. Operations on different ids never block one another.
type AccountStore interface {
	Insert(ctx context.Context, account *models.Account) (*models.Account, error)
	Get(ctx context.Context, id int64) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Mutate(ctx context.Context, id int64, fn func(*models.Account) error) (*models.Account, error)
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]models.Account, error)
}

// UserStore persists registered API users for the auth service.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}
