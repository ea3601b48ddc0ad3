package service

import (
	"context" // Request-scoped cancellation
	"errors"  // Sentinel matching
	"strings" // Category validation

	"finance_tracker/internal/domain"     // Importing domain models
	"finance_tracker/internal/repository" // Persistence

	"github.com/shopspring/decimal" // Balance arithmetic
	"github.com/sirupsen/logrus"    // Logging library
)

// LedgerService creates, updates and deletes transactions while keeping each
// owner's balance equal to the sum of the effects of their transactions.
// Every mutation runs in one database transaction that locks the owner row.
type LedgerService struct {
	store *repository.Store
}

// NewLedgerService creates a ledger service on top of store
func NewLedgerService(store *repository.Store) *LedgerService {
	return &LedgerService{store: store}
}

func validateInput(in domain.TransactionInput) error {
	if in.Amount.IsNegative() {
		return validationErr("amount must be >= 0")
	}
	if !domain.FitsMoney(in.Amount) {
		return validationErr("amount must have at most %d decimal places and be below %s", domain.MoneyScale, domain.MaxMoney)
	}
	if in.Date.IsZero() {
		return validationErr("date is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return validationErr("category is required")
	}
	return nil
}

// lockOwner loads the acting user and holds its row lock for the rest of the transaction
func lockOwner(ctx context.Context, tx *repository.Store, p domain.Principal) (*domain.User, error) {
	user, err := tx.Users.FindByUsernameForUpdate(ctx, p.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundErr("user not found")
	}
	if err != nil {
		return nil, internalErr("failed to load user", err)
	}
	return user, nil
}

// applyDelta moves the locked user's balance by delta. The sum is taken in
// decimal arithmetic and written back as a value.
func applyDelta(ctx context.Context, tx *repository.Store, user *domain.User, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	balance := user.Balance.Add(delta)
	if !domain.FitsMoney(balance) {
		return validationErr("balance would leave the supported range")
	}
	if err := tx.Users.SetBalance(ctx, user.ID, balance); err != nil {
		return internalErr("failed to update balance", err)
	}
	user.Balance = balance
	return nil
}

// findOwned loads transaction id when user owns it. A transaction owned by
// someone else is Forbidden, a missing one is repository.ErrNotFound.
func findOwned(ctx context.Context, tx *repository.Store, user *domain.User, id uint) (*domain.Transaction, error) {
	t, err := tx.Transactions.FindByIDAndOwner(ctx, id, user.ID)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, internalErr("failed to load transaction", err)
	}
	// Tell a foreign transaction apart from a missing one
	if _, err := tx.Transactions.FindByID(ctx, id); err == nil {
		return nil, forbiddenErr("transaction is owned by another user")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, internalErr("failed to load transaction", err)
	}
	return nil, repository.ErrNotFound
}

// CreateTransaction records a transaction for the acting user and applies its effect to the balance
func (s *LedgerService) CreateTransaction(ctx context.Context, p domain.Principal, in domain.TransactionInput) (*domain.Transaction, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var created *domain.Transaction
	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		user, err := lockOwner(ctx, tx, p)
		if err != nil {
			return err
		}
		t := &domain.Transaction{
			IsIncome: in.IsIncome,
			Date:     in.Date.UTC(),
			Amount:   in.Amount,
			Category: in.Category,
			UserID:   user.ID,
		}
		if _, err := tx.Transactions.Save(ctx, t); err != nil {
			return internalErr("failed to save transaction", err)
		}
		if err := applyDelta(ctx, tx, user, t.Effect()); err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		logFailure(err, p, 0, "Create transaction failed")
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user":           p.Username,
		"transaction_id": created.ID,
		"amount":         created.Amount.String(),
		"is_income":      created.IsIncome,
		"delta":          created.Effect().String(),
	}).Info("Transaction created")
	return created, nil
}

// UpdateTransaction replaces the fields of a transaction owned by the acting
// user and adjusts the balance by effect(new) - effect(old)
func (s *LedgerService) UpdateTransaction(ctx context.Context, p domain.Principal, id uint, in domain.TransactionInput) (*domain.Transaction, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var (
		updated *domain.Transaction
		delta   decimal.Decimal
	)
	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		user, err := lockOwner(ctx, tx, p)
		if err != nil {
			return err
		}
		t, err := findOwned(ctx, tx, user, id)
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundErr("transaction not found")
		}
		if err != nil {
			return err
		}

		oldEffect := t.Effect() // Snapshot before applying the new values
		t.IsIncome = in.IsIncome
		t.Date = in.Date.UTC()
		t.Amount = in.Amount
		t.Category = in.Category
		delta = t.Effect().Sub(oldEffect)

		if _, err := tx.Transactions.Save(ctx, t); err != nil {
			return internalErr("failed to save transaction", err)
		}
		if err := applyDelta(ctx, tx, user, delta); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		logFailure(err, p, id, "Update transaction failed")
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user":           p.Username,
		"transaction_id": updated.ID,
		"amount":         updated.Amount.String(),
		"is_income":      updated.IsIncome,
		"delta":          delta.String(),
	}).Info("Transaction updated")
	return updated, nil
}

// DeleteTransaction removes a transaction owned by the acting user and reverses
// its effect. It returns false when the transaction does not exist.
func (s *LedgerService) DeleteTransaction(ctx context.Context, p domain.Principal, id uint) (bool, error) {
	var reversed decimal.Decimal
	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		user, err := lockOwner(ctx, tx, p)
		if err != nil {
			return err
		}
		t, err := findOwned(ctx, tx, user, id)
		if err != nil {
			return err // ErrNotFound is reported as false below
		}
		if _, err := tx.Transactions.DeleteByID(ctx, t.ID); err != nil {
			return internalErr("failed to delete transaction", err)
		}
		reversed = t.Effect().Neg()
		if err := applyDelta(ctx, tx, user, reversed); err != nil {
			return err
		}
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		logFailure(err, p, id, "Delete transaction failed")
		return false, err
	}
	logrus.WithFields(logrus.Fields{
		"user":           p.Username,
		"transaction_id": id,
		"delta":          reversed.String(),
	}).Info("Transaction deleted")
	return true, nil
}

// GetTransaction returns any transaction by id; the ledger is globally readable
func (s *LedgerService) GetTransaction(ctx context.Context, id uint) (*domain.Transaction, error) {
	t, err := s.store.Transactions.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundErr("transaction not found")
	}
	if err != nil {
		return nil, internalErr("failed to load transaction", err)
	}
	return t, nil
}

// ListTransactions returns one page of transactions matching filter
func (s *LedgerService) ListTransactions(ctx context.Context, filter domain.TransactionFilter, page, size int, sortBy, sortDir string) (domain.Page[domain.Transaction], error) {
	req, err := domain.NewPageRequest(page, size, sortBy, sortDir)
	if err != nil {
		return domain.Page[domain.Transaction]{}, validationErr("%v", err)
	}
	result, err := s.store.Transactions.Query(ctx, filter, req)
	if err != nil {
		return domain.Page[domain.Transaction]{}, internalErr("failed to query transactions", err)
	}
	return result, nil
}

func logFailure(err error, p domain.Principal, id uint, msg string) {
	if KindOf(err) != KindInternal {
		return // Client errors are reported by the HTTP layer
	}
	logrus.WithFields(logrus.Fields{
		"user":           p.Username,
		"transaction_id": id,
		"error":          err.Error(),
	}).Error(msg)
}
