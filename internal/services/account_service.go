package services

import (
	"context"
	"strings"

	"plata/internal/core"
	"plata/internal/storage"
)

// AccountService manages accounts and categories. Balances are never set
// here: they move only through the ledger.
type AccountService struct {
	store *storage.Store
}

func NewAccountService(store *storage.Store) *AccountService {
	return &AccountService{store: store}
}

type CreateAccountParams struct {
	UserID       int64
	Name         string
	Type         core.AccountType
	Institution  string
	CurrencyCode string
}

func (s *AccountService) Create(ctx context.Context, p CreateAccountParams) (*core.Account, error) {
	account := core.Account{
		UserID:       p.UserID,
		Name:         strings.TrimSpace(p.Name),
		Type:         p.Type,
		Institution:  strings.TrimSpace(p.Institution),
		CurrencyCode: strings.ToUpper(strings.TrimSpace(p.CurrencyCode)),
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}

	created, err := s.store.CreateAccount(ctx, storage.CreateAccountParams{
		UserID:       account.UserID,
		Name:         account.Name,
		Type:         account.Type,
		Institution:  account.Institution,
		CurrencyCode: account.CurrencyCode,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *AccountService) Get(ctx context.Context, id int64) (*core.Account, error) {
	a, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AccountService) List(ctx context.Context, userID int64) ([]core.Account, error) {
	return s.store.ListAccounts(ctx, userID)
}

func (s *AccountService) Delete(ctx context.Context, id int64) error {
	return s.store.SoftDeleteAccount(ctx, id)
}

func (s *AccountService) CreateCategory(ctx context.Context, userID int64, name string, typ core.CategoryType) (*core.Category, error) {
	category := core.Category{UserID: userID, Name: strings.TrimSpace(name), Type: typ}
	if err := category.Validate(); err != nil {
		return nil, err
	}
	created, err := s.store.CreateCategory(ctx, userID, category.Name, typ)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *AccountService) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	return s.store.ListCategories(ctx, userID)
}

func (s *AccountService) DeleteCategory(ctx context.Context, id int64) error {
	return s.store.SoftDeleteCategory(ctx, id)
}
