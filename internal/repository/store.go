// Package repository persists users, transactions and categories with GORM.
package repository

import (
	"context" // Request-scoped cancellation
	"errors"  // Sentinel errors

	"gorm.io/gorm" // GORM ORM library
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated
	ErrDuplicate = errors.New("duplicate record")
)

// Store groups the per-entity repositories that share one database handle
type Store struct {
	db           *gorm.DB
	Users        *UserRepository
	Transactions *TransactionRepository
	Categories   *CategoryRepository
}

// NewStore builds a store on top of db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Users:        &UserRepository{db: db},
		Transactions: &TransactionRepository{db: db},
		Categories:   &CategoryRepository{db: db},
	}
}

// WithTransaction runs fn against a store bound to one database transaction.
// The transaction commits when fn returns nil and rolls back otherwise,
// including when ctx is cancelled.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translate maps driver errors onto the package sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Join(ErrDuplicate, err)
	}
	return err
}
