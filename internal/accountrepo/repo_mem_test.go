package accountrepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-petr/account-bank/internal/domain"
)

func score(v int64) *int64 {
	return &v
}

func createMemAccount(t *testing.T, r *RepoMem, number int64, accountType domain.AccountType, balance string, bonusScore *int64) domain.Account {
	t.Helper()

	account, err := r.Create(context.Background(), domain.CreateAccountParams{
		Number:     number,
		Balance:    balance,
		Type:       accountType,
		BonusScore: bonusScore,
	})
	require.NoError(t, err)
	require.NotEmpty(t, account)

	require.Equal(t, number, account.Number)
	require.Equal(t, balance, account.Balance)
	require.Equal(t, accountType, account.Type)
	require.NotZero(t, account.ID)
	require.NotZero(t, account.CreatedAt)

	return account
}

func TestMemCreate(t *testing.T) {
	r := NewRepoMem()

	account := createMemAccount(t, r, 1236757, domain.Saving, "1000", nil)
	require.Nil(t, account.BonusScore)

	bonus := createMemAccount(t, r, 1230390, domain.Bonus, "1000", score(10))
	require.NotNil(t, bonus.BonusScore)
	require.EqualValues(t, 10, *bonus.BonusScore)

	_, err := r.Create(context.Background(), domain.CreateAccountParams{
		Number:  1236757,
		Balance: "50",
		Type:    domain.Default,
	})
	require.ErrorIs(t, err, domain.ErrAccountAlreadyExists)
}

func TestMemGetByNumber(t *testing.T) {
	r := NewRepoMem()
	created := createMemAccount(t, r, 1236757, domain.Saving, "1000", nil)

	got, err := r.GetByNumber(context.Background(), created.Number)
	require.NoError(t, err)
	require.Equal(t, created, got)

	_, err = r.GetByNumber(context.Background(), 404404)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestMemUpdate(t *testing.T) {
	r := NewRepoMem()
	bonus := createMemAccount(t, r, 1230390, domain.Bonus, "1000", score(10))

	// Balance-only update keeps the score.
	got, err := r.Update(context.Background(), domain.UpdateAccountParams{
		Number:  bonus.Number,
		Balance: "900",
	})
	require.NoError(t, err)
	require.Equal(t, "900", got.Balance)
	require.EqualValues(t, 10, *got.BonusScore)

	got, err = r.Update(context.Background(), domain.UpdateAccountParams{
		Number:     bonus.Number,
		Balance:    "1400",
		BonusScore: score(15),
	})
	require.NoError(t, err)
	require.Equal(t, "1400", got.Balance)
	require.EqualValues(t, 15, *got.BonusScore)

	_, err = r.Update(context.Background(), domain.UpdateAccountParams{
		Number:  404404,
		Balance: "100",
	})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestMemListByType(t *testing.T) {
	r := NewRepoMem()

	saving1 := createMemAccount(t, r, 1, domain.Saving, "525", nil)
	createMemAccount(t, r, 2, domain.Default, "100", nil)
	saving2 := createMemAccount(t, r, 3, domain.Saving, "1000", nil)

	got, err := r.ListByType(context.Background(), domain.Saving)
	require.NoError(t, err)
	require.Equal(t, []domain.Account{saving1, saving2}, got)

	got, err = r.ListByType(context.Background(), domain.Bonus)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMemTransfer(t *testing.T) {
	r := NewRepoMem()

	from := createMemAccount(t, r, 1, domain.Default, "1000", nil)
	to := createMemAccount(t, r, 2, domain.Bonus, "1000", score(10))

	fromAccount, toAccount, err := r.Transfer(context.Background(),
		domain.UpdateAccountParams{Number: from.Number, Balance: "500"},
		domain.UpdateAccountParams{Number: to.Number, Balance: "1500", BonusScore: score(15)},
	)
	require.NoError(t, err)
	require.Equal(t, "500", fromAccount.Balance)
	require.Equal(t, "1500", toAccount.Balance)
	require.EqualValues(t, 15, *toAccount.BonusScore)

	_, _, err = r.Transfer(context.Background(),
		domain.UpdateAccountParams{Number: from.Number, Balance: "400"},
		domain.UpdateAccountParams{Number: 404404, Balance: "100"},
	)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	// The failed transfer must not have touched the source account.
	got, err := r.GetByNumber(context.Background(), from.Number)
	require.NoError(t, err)
	require.Equal(t, "500", got.Balance)
}

func TestMemDelete(t *testing.T) {
	r := NewRepoMem()
	account := createMemAccount(t, r, 1236757, domain.Saving, "1000", nil)

	err := r.Delete(context.Background(), account.Number)
	require.NoError(t, err)

	_, err = r.GetByNumber(context.Background(), account.Number)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	got, err := r.ListByType(context.Background(), domain.Saving)
	require.NoError(t, err)
	require.Empty(t, got)
}
