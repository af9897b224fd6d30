package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the persisted write model. ID is always server-assigned and
// HolderName is fixed at creation; Balance only changes through the ledger's
// deposit and withdraw operations and is never negative.
type Account struct {
	ID         int64           `json:"id"`
	HolderName string          `json:"holderName"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"createdTimestamp"`
	UpdatedAt  time.Time       `json:"updatedTimestamp"`
}

// User is a registered API caller. PasswordHash is bcrypt and never serialised.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdTimestamp"`
}
