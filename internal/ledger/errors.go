package ledger

import "errors"

// The ledger's error taxonomy. Callers match with errors.Is; the HTTP
// boundary maps each kind to a status code. Every kind except ErrStorage
// guarantees stored state is unchanged.
var (
	// ErrInvalidInput reports a malformed or missing required field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidAmount reports a non-positive or otherwise out-of-domain
	// monetary amount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAccountNotFound reports an operation against a nonexistent account id.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientFunds reports a withdrawal exceeding the current balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrStorage reports that the underlying store was unavailable or timed
	// out. It is the only kind that may leave the mutation state ambiguous.
	ErrStorage = errors.New("storage failure")
)
