package domain

import "errors"

var (
	// ErrInvalidAmount indicates invalid amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNegativeAmount indicates negative amount.
	ErrNegativeAmount = errors.New("negative amount")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrSameAccount indicates that the source and destination accounts are the same.
	ErrSameAccount = errors.New("source and destination accounts are the same")
	// ErrInvalidInterestRate indicates invalid interest rate.
	ErrInvalidInterestRate = errors.New("invalid interest rate")
)

// CreateTransferParams is the input data for the transfer between two accounts.
type CreateTransferParams struct {
	FromNumber int64  `json:"from_number"`
	ToNumber   int64  `json:"to_number"`
	Amount     string `json:"amount"`
}

// TransferTxResult is the result of the transfer between two accounts.
type TransferTxResult struct {
	FromAccount Account `json:"from_account"`
	ToAccount   Account `json:"to_account"`
}
