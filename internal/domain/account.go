// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountAlreadyExists indicates that an account with the given number already exists.
	ErrAccountAlreadyExists = errors.New("account already exists")
	// ErrInitialBalanceRequired indicates that the account type requires a positive initial balance.
	ErrInitialBalanceRequired = errors.New("initial balance required")
	// ErrUnsupportedAccountType indicates that the account type is not supported.
	ErrUnsupportedAccountType = errors.New("unsupported account type")
)

// AccountType discriminates the supported account variants.
type AccountType string

// Constants for all supported account types.
const (
	Default AccountType = "Default"
	Saving  AccountType = "Saving"
	Bonus   AccountType = "Bonus"
)

// SupportedAccountTypes holds all the supported account types.
var SupportedAccountTypes = []AccountType{
	Default,
	Saving,
	Bonus,
}

// IsSupportedAccountType returns true if the account type is supported.
func IsSupportedAccountType(accountType AccountType) bool {
	for _, t := range SupportedAccountTypes {
		if t == accountType {
			return true
		}
	}

	return false
}

// Account holds balance data for a single account number.
//
// BonusScore is set only for Bonus accounts so that the serialized
// shape differs by variant.
type Account struct {
	ID         int64       `json:"id"`
	Number     int64       `json:"number"`
	Balance    string      `json:"balance"`
	Type       AccountType `json:"type"`
	BonusScore *int64      `json:"bonus_score,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// CreateAccountParams is the input data to persist a new account.
type CreateAccountParams struct {
	Number     int64
	Balance    string
	Type       AccountType
	BonusScore *int64
}

// UpdateAccountParams is the input data to persist new balance state
// for the account with the given number.
//
// BonusScore is nil when the update does not touch the score.
type UpdateAccountParams struct {
	Number     int64
	Balance    string
	BonusScore *int64
}
