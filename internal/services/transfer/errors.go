package transfer

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Engine errors. Callers branch with errors.Is; the distinction between
// a rejected request, a recorded business failure and an engine failure
// is part of the contract.
var (
	ErrSameAccount         = errors.New("source and destination accounts must be different")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransferNotFound    = errors.New("transfer not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTransferFailed      = errors.New("transfer failed")
)

// InsufficientBalanceError reports a failed sufficiency check together
// with the balances involved. It matches ErrInsufficientBalance under
// errors.Is.
type InsufficientBalanceError struct {
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %s, required %s",
		e.Available.StringFixed(2), e.Required.StringFixed(2))
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}
