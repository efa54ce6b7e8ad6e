package accountrepo

import (
	"context"
	"sync"
	"time"

	"github.com/go-petr/account-bank/internal/domain"
)

// RepoMem is an in-memory implementation of the account repository,
// used in tests and local runs without a database.
type RepoMem struct {
	mu       sync.Mutex
	accounts map[int64]domain.Account
	numbers  []int64
	nextID   int64
}

// NewRepoMem returns an empty in-memory account repository.
func NewRepoMem() *RepoMem {
	return &RepoMem{
		accounts: make(map[int64]domain.Account),
	}
}

func cloneAccount(a domain.Account) domain.Account {
	if a.BonusScore != nil {
		score := *a.BonusScore
		a.BonusScore = &score
	}

	return a
}

// Create creates the account and then returns it.
func (r *RepoMem) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[arg.Number]; ok {
		return domain.Account{}, domain.ErrAccountAlreadyExists
	}

	r.nextID++

	a := domain.Account{
		ID:        r.nextID,
		Number:    arg.Number,
		Balance:   arg.Balance,
		Type:      arg.Type,
		CreatedAt: time.Now().UTC(),
	}

	if arg.BonusScore != nil {
		score := *arg.BonusScore
		a.BonusScore = &score
	}

	r.accounts[arg.Number] = a
	r.numbers = append(r.numbers, arg.Number)

	return cloneAccount(a), nil
}

// GetByNumber returns the account with the given number.
func (r *RepoMem) GetByNumber(ctx context.Context, number int64) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[number]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return cloneAccount(a), nil
}

// ListByType returns all accounts of the given type in insertion order.
func (r *RepoMem) ListByType(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := []domain.Account{}

	for _, number := range r.numbers {
		if a, ok := r.accounts[number]; ok && a.Type == accountType {
			items = append(items, cloneAccount(a))
		}
	}

	return items, nil
}

func (r *RepoMem) update(arg domain.UpdateAccountParams) (domain.Account, error) {
	a, ok := r.accounts[arg.Number]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	a.Balance = arg.Balance
	if arg.BonusScore != nil {
		score := *arg.BonusScore
		a.BonusScore = &score
	}

	r.accounts[arg.Number] = a

	return cloneAccount(a), nil
}

// Update persists new balance state for the account with the given number.
// The bonus score is left untouched when arg.BonusScore is nil.
func (r *RepoMem) Update(ctx context.Context, arg domain.UpdateAccountParams) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.update(arg)
}

// Transfer applies both balance updates within a single locked section so
// that no caller observes one side of the transfer without the other.
func (r *RepoMem) Transfer(ctx context.Context, from, to domain.UpdateAccountParams) (domain.Account, domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[from.Number]; !ok {
		return domain.Account{}, domain.Account{}, domain.ErrAccountNotFound
	}

	if _, ok := r.accounts[to.Number]; !ok {
		return domain.Account{}, domain.Account{}, domain.ErrAccountNotFound
	}

	fromAccount, err := r.update(from)
	if err != nil {
		return domain.Account{}, domain.Account{}, err
	}

	toAccount, err := r.update(to)
	if err != nil {
		return domain.Account{}, domain.Account{}, err
	}

	return fromAccount, toAccount, nil
}

// Delete removes the account with the given number.
func (r *RepoMem) Delete(ctx context.Context, number int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.accounts, number)

	for i, n := range r.numbers {
		if n == number {
			r.numbers = append(r.numbers[:i], r.numbers[i+1:]...)
			break
		}
	}

	return nil
}
