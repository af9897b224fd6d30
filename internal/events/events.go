package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	AccountOpened  = "account.opened"
	AccountClosed  = "account.closed"
	BalanceUpdated = "balance.updated"
)

// AccountEventsStream is the Redis stream carrying account lifecycle and
// balance events.
const AccountEventsStream = "account.events"

// Event is the envelope written to the stream. ID is a UUID assigned at
// publish time for external tracing.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type AccountOpenedEvent struct {
	AccountID  int64           `json:"accountId"`
	HolderName string          `json:"holderName"`
	Balance    decimal.Decimal `json:"balance"`
}

type AccountClosedEvent struct {
	AccountID int64 `json:"accountId"`
}

// BalanceUpdatedEvent records a balance mutation. Change is positive for
// deposits and negative for withdrawals.
type BalanceUpdatedEvent struct {
	AccountID  int64           `json:"accountId"`
	NewBalance decimal.Decimal `json:"newBalance"`
	Change     decimal.Decimal `json:"change"`
}
