package repositories

import "errors"

// Repository errors. Uniqueness violations are reported as distinct
// sentinels so services can branch without string matching.
var (
	ErrAccountNotFound       = errors.New("account not found")
	ErrTransferNotFound      = errors.New("transfer not found")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrDuplicateEmail        = errors.New("account with this email already exists")
	ErrDuplicateToken        = errors.New("payment method with this token already exists")
	ErrDuplicateRecord       = errors.New("record with this id already exists")
)
