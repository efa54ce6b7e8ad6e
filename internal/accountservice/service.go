// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/account-bank/internal/domain"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	GetByNumber(ctx context.Context, number int64) (domain.Account, error)
	ListByType(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error)
	Update(ctx context.Context, arg domain.UpdateAccountParams) (domain.Account, error)
	Transfer(ctx context.Context, from, to domain.UpdateAccountParams) (domain.Account, domain.Account, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo Repo
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo) *Service {
	return &Service{repo: ar}
}

// bonusPoints returns the score accrued by crediting the given amount:
// 1 point per 100 units, truncated.
func bonusPoints(amount decimal.Decimal) int64 {
	return amount.Shift(-2).Floor().IntPart()
}

func parseAmount(ctx context.Context, amount string) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	amountDecimal, err := decimal.NewFromString(amount)
	if err != nil {
		l.Info().Err(err).Send()
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	if amountDecimal.LessThanOrEqual(decimal.Zero) {
		l.Info().Msgf("non-positive amount %s", amount)
		return decimal.Decimal{}, domain.ErrNegativeAmount
	}

	return amountDecimal, nil
}

// Create creates and returns the account with the given number, type and
// initial balance.
//
// Default and Saving accounts require a positive initial balance. Bonus
// accounts accept a zero balance and start with a score accrued from the
// initial balance at the same rate as credits.
func (s *Service) Create(ctx context.Context, number int64, accountType domain.AccountType, initialBalance string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if !domain.IsSupportedAccountType(accountType) {
		return domain.Account{}, domain.ErrUnsupportedAccountType
	}

	balance, err := decimal.NewFromString(initialBalance)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.Account{}, domain.ErrInvalidAmount
	}

	if balance.IsNegative() {
		return domain.Account{}, domain.ErrNegativeAmount
	}

	if accountType != domain.Bonus && !balance.IsPositive() {
		return domain.Account{}, domain.ErrInitialBalanceRequired
	}

	_, err = s.repo.GetByNumber(ctx, number)
	if err == nil {
		return domain.Account{}, domain.ErrAccountAlreadyExists
	}

	if err != domain.ErrAccountNotFound {
		l.Error().Err(err).Send()
		return domain.Account{}, err
	}

	arg := domain.CreateAccountParams{
		Number:  number,
		Balance: balance.String(),
		Type:    accountType,
	}

	if accountType == domain.Bonus {
		score := bonusPoints(balance)
		arg.BonusScore = &score
	}

	account, err := s.repo.Create(ctx, arg)
	if err != nil {
		return account, err
	}

	return account, nil
}

// Get returns the account with the given number.
func (s *Service) Get(ctx context.Context, number int64) (domain.Account, error) {
	account, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return account, err
	}

	return account, nil
}

// Debit withdraws the given amount from the account with the given number.
func (s *Service) Debit(ctx context.Context, number int64, amount string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	amountDecimal, err := parseAmount(ctx, amount)
	if err != nil {
		return domain.Account{}, err
	}

	account, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return domain.Account{}, err
	}

	balance, err := decimal.NewFromString(account.Balance)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, err
	}

	if balance.LessThan(amountDecimal) {
		return domain.Account{}, domain.ErrInsufficientBalance
	}

	arg := domain.UpdateAccountParams{
		Number:  number,
		Balance: balance.Sub(amountDecimal).String(),
	}

	account, err = s.repo.Update(ctx, arg)
	if err != nil {
		return account, err
	}

	return account, nil
}

// Credit deposits the given amount to the account with the given number.
// Bonus accounts additionally accrue 1 score point per 100 units credited.
func (s *Service) Credit(ctx context.Context, number int64, amount string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	amountDecimal, err := parseAmount(ctx, amount)
	if err != nil {
		return domain.Account{}, err
	}

	account, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return domain.Account{}, err
	}

	balance, err := decimal.NewFromString(account.Balance)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, err
	}

	arg := creditParams(account, balance, amountDecimal)

	account, err = s.repo.Update(ctx, arg)
	if err != nil {
		return account, err
	}

	return account, nil
}

// creditParams computes the update produced by crediting amount to the
// given account, including the Bonus score accrual.
func creditParams(account domain.Account, balance, amount decimal.Decimal) domain.UpdateAccountParams {
	arg := domain.UpdateAccountParams{
		Number:  account.Number,
		Balance: balance.Add(amount).String(),
	}

	if account.Type == domain.Bonus {
		var current int64
		if account.BonusScore != nil {
			current = *account.BonusScore
		}

		score := current + bonusPoints(amount)
		arg.BonusScore = &score
	}

	return arg
}

// Transfer moves the given amount between two accounts.
//
// The debited side follows the Debit rule regardless of its type; the
// credited side follows the Credit rule including the Bonus accrual.
// Both writes are applied atomically by the repository.
func (s *Service) Transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	amountDecimal, err := parseAmount(ctx, arg.Amount)
	if err != nil {
		return domain.TransferTxResult{}, err
	}

	if arg.FromNumber == arg.ToNumber {
		return domain.TransferTxResult{}, domain.ErrSameAccount
	}

	fromAccount, err := s.repo.GetByNumber(ctx, arg.FromNumber)
	if err != nil {
		return domain.TransferTxResult{}, err
	}

	fromBalance, err := decimal.NewFromString(fromAccount.Balance)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.TransferTxResult{}, err
	}

	if fromBalance.LessThan(amountDecimal) {
		return domain.TransferTxResult{}, domain.ErrInsufficientBalance
	}

	toAccount, err := s.repo.GetByNumber(ctx, arg.ToNumber)
	if err != nil {
		return domain.TransferTxResult{}, err
	}

	toBalance, err := decimal.NewFromString(toAccount.Balance)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.TransferTxResult{}, err
	}

	fromArg := domain.UpdateAccountParams{
		Number:  arg.FromNumber,
		Balance: fromBalance.Sub(amountDecimal).String(),
	}
	toArg := creditParams(toAccount, toBalance, amountDecimal)

	fromAccount, toAccount, err = s.repo.Transfer(ctx, fromArg, toArg)
	if err != nil {
		return domain.TransferTxResult{}, err
	}

	return domain.TransferTxResult{FromAccount: fromAccount, ToAccount: toAccount}, nil
}

func parseRate(ctx context.Context, ratePercent string) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	rate, err := decimal.NewFromString(ratePercent)
	if err != nil {
		l.Info().Err(err).Send()
		return decimal.Decimal{}, domain.ErrInvalidInterestRate
	}

	if rate.IsNegative() {
		return decimal.Decimal{}, domain.ErrInvalidInterestRate
	}

	return rate, nil
}

// interestFactor returns 1 + ratePercent/100.
func interestFactor(rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Add(rate.Shift(-2))
}

// YieldInterestByAccount scales the balance of the account with the given
// number by 1 + ratePercent/100. Callable on any account type.
func (s *Service) YieldInterestByAccount(ctx context.Context, number int64, ratePercent string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rate, err := parseRate(ctx, ratePercent)
	if err != nil {
		return domain.Account{}, err
	}

	account, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return domain.Account{}, err
	}

	balance, err := decimal.NewFromString(account.Balance)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, err
	}

	arg := domain.UpdateAccountParams{
		Number:  number,
		Balance: balance.Mul(interestFactor(rate)).String(),
	}

	account, err = s.repo.Update(ctx, arg)
	if err != nil {
		return account, err
	}

	return account, nil
}

// YieldInterest applies the interest rate to every Saving account and
// returns the updated accounts in repository order.
//
// Writes are sequential and are not rolled back when a later one fails.
func (s *Service) YieldInterest(ctx context.Context, ratePercent string) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rate, err := parseRate(ctx, ratePercent)
	if err != nil {
		return nil, err
	}

	factor := interestFactor(rate)

	accounts, err := s.repo.ListByType(ctx, domain.Saving)
	if err != nil {
		return nil, err
	}

	updated := make([]domain.Account, 0, len(accounts))

	for _, account := range accounts {
		balance, err := decimal.NewFromString(account.Balance)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, err
		}

		arg := domain.UpdateAccountParams{
			Number:  account.Number,
			Balance: balance.Mul(factor).String(),
		}

		account, err = s.repo.Update(ctx, arg)
		if err != nil {
			return nil, err
		}

		updated = append(updated, account)
	}

	return updated, nil
}
