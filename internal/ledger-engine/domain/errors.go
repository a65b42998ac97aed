package domain

import "errors"

// Violações de regra de negócio: a transação é ignorada e o processamento segue.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountFrozen     = errors.New("account is frozen")
	ErrDuplicateDeposit  = errors.New("deposit already processed")
	ErrNotDisputable     = errors.New("transaction is not disputable")
	ErrNotInDispute      = errors.New("transaction is not in dispute")
)
