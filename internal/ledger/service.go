// Package ledger enforces the business rules over the account store: amounts
// must be positive, balances never go negative, and every balance mutation is
// an atomic read-modify-write on its account id.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harborbank/ledger-service/internal/cache"
	"github.com/harborbank/ledger-service/internal/events"
	"github.com/harborbank/ledger-service/internal/models"
	"github.com/harborbank/ledger-service/internal/store"
)

// DefaultStorageTimeout bounds every store round-trip; expiry surfaces as
// ErrStorage.
const DefaultStorageTimeout = 5 * time.Second

const accountViewKeyPrefix = "account:view:"

// Service is the stateless rule-enforcing layer. All account state lives in
// the store; every operation re-reads current state before acting.
//
// The view cache and publisher are optional: pass nil to run without Redis
// (dev mode, tests). When present, every mutation refreshes the cached view
// before returning and publishes a domain event afterwards.
type Service struct {
	store     store.AccountStore
	views     *cache.ViewCache[models.Account]
	publisher *events.Publisher
	timeout   time.Duration
}

func NewService(st store.AccountStore, views *cache.ViewCache[models.Account], publisher *events.Publisher, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultStorageTimeout
	}
	return &Service{
		store:     st,
		views:     views,
		publisher: publisher,
		timeout:   timeout,
	}
}

// OpenAccount creates an account with a server-assigned id. The opening
// balance may be zero but never negative.
func (s *Service) OpenAccount(ctx context.Context, holderName string, initialBalance decimal.Decimal) (*models.Account, error) {
	if strings.TrimSpace(holderName) == "" {
		return nil, fmt.Errorf("%w: holder name must not be empty", ErrInvalidInput)
	}
	if initialBalance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance must not be negative", ErrInvalidAmount)
	}

	sctx, cancel := s.storeContext(ctx)
	defer cancel()
	account, err := s.store.Insert(sctx, &models.Account{
		HolderName: holderName,
		Balance:    initialBalance,
	})
	if err != nil {
		return nil, s.storeError(err)
	}

	s.cacheView(account)
	s.publish(events.AccountOpened, events.AccountOpenedEvent{
		AccountID:  account.ID,
		HolderName: account.HolderName,
		Balance:    account.Balance,
	})
	return account, nil
}

// GetAccount returns the current state of an account, Redis-first.
func (s *Service) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	if s.views != nil {
		if view, ok := s.views.Get(ctx, viewKey(id)); ok {
			return view, nil
		}
	}

	sctx, cancel := s.storeContext(ctx)
	defer cancel()
	account, err := s.store.Get(sctx, id)
	if err != nil {
		return nil, s.storeError(err)
	}

	// Warm the cache for the next read.
	s.cacheView(account)
	return account, nil
}

// Deposit adds a strictly positive amount to the balance. The read, the
// addition and the write-back form one atomic unit per account id.
func (s *Service) Deposit(ctx context.Context, id int64, amount decimal.Decimal) (*models.Account, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: deposit amount must be positive", ErrInvalidAmount)
	}

	sctx, cancel := s.storeContext(ctx)
	defer cancel()
	account, err := s.store.Mutate(sctx, id, func(a *models.Account) error {
		a.Balance = a.Balance.Add(amount)
		return nil
	})
	if err != nil {
		return nil, s.storeError(err)
	}

	s.cacheView(account)
	s.publish(events.BalanceUpdated, events.BalanceUpdatedEvent{
		AccountID:  account.ID,
		NewBalance: account.Balance,
		Change:     amount,
	})
	return account, nil
}

// Withdraw removes a strictly positive amount from the balance. The
// sufficient-funds check runs inside the same atomic unit as the write-back:
// a check that passes is still valid at write time, so the balance can never
// go negative under concurrent withdrawals.
func (s *Service) Withdraw(ctx context.Context, id int64, amount decimal.Decimal) (*models.Account, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive", ErrInvalidAmount)
	}

	sctx, cancel := s.storeContext(ctx)
	defer cancel()
	account, err := s.store.Mutate(sctx, id, func(a *models.Account) error {
		if a.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		a.Balance = a.Balance.Sub(amount)
		return nil
	})
	if err != nil {
		return nil, s.storeError(err)
	}

	s.cacheView(account)
	s.publish(events.BalanceUpdated, events.BalanceUpdatedEvent{
		AccountID:  account.ID,
		NewBalance: account.Balance,
		Change:     amount.Neg(),
	})
	return account, nil
}

// ListAccounts returns every open account in id order, straight from the
// write store.
func (s *Service) ListAccounts(ctx context.Context) ([]models.Account, error) {
	sctx, cancel := s.storeContext(ctx)
	defer cancel()
	accounts, err := s.store.ListAll(sctx)
	if err != nil {
		return nil, s.storeError(err)
	}
	return accounts, nil
}

// DeleteAccount closes an account. A nonzero balance does not block deletion.
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	sctx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.store.Delete(sctx, id); err != nil {
		return s.storeError(err)
	}

	if s.views != nil {
		s.views.Delete(context.Background(), viewKey(id))
	}
	s.publish(events.AccountClosed, events.AccountClosedEvent{AccountID: id})
	return nil
}

func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// storeError re-labels store errors into the ledger taxonomy. Domain errors
// raised inside a Mutate callback pass through untouched.
func (s *Service) storeError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrAccountNotFound
	case errors.Is(err, ErrInsufficientFunds):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
}

func (s *Service) cacheView(account *models.Account) {
	if s.views == nil {
		return
	}
	s.views.Set(context.Background(), viewKey(account.ID), account)
}

func (s *Service) publish(eventType string, data any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.Background(), events.AccountEventsStream, eventType, data); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}

func viewKey(id int64) string {
	return accountViewKeyPrefix + strconv.FormatInt(id, 10)
}
