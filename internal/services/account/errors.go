package account

import "errors"

// Service errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailExists     = errors.New("account with this email already exists")
	ErrNegativeBalance = errors.New("initial balance cannot be negative")
	ErrNothingToUpdate = errors.New("no fields to update")
)
