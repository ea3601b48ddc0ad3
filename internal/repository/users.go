package repository

import (
	"context" // Request-scoped cancellation

	"finance_tracker/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Balance deltas
	"gorm.io/gorm"                  // GORM ORM library
	"gorm.io/gorm/clause"           // Row locking
)

// UserRepository persists users
type UserRepository struct {
	db *gorm.DB
}

// FindByUsername returns the user with the given username or ErrNotFound
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindByUsernameForUpdate is FindByUsername with a row lock held until the
// surrounding transaction ends. Only meaningful inside Store.WithTransaction.
func (r *UserRepository) FindByUsernameForUpdate(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// ExistsByUsername reports whether a user with the username exists
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts the user when it has no ID and updates every column otherwise
func (r *UserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	db := r.db.WithContext(ctx).Omit(clause.Associations)
	var err error
	if user.ID == 0 {
		err = db.Create(user).Error
	} else {
		err = db.Save(user).Error
	}
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// DeleteByUsername removes the user and reports whether a row was deleted
func (r *UserRepository) DeleteByUsername(ctx context.Context, username string) (bool, error) {
	res := r.db.WithContext(ctx).Where("username = ?", username).Delete(&domain.User{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdatePassword replaces the stored hash and reports whether a row matched
func (r *UserRepository) UpdatePassword(ctx context.Context, username, hash string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", username).Update("password", hash)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetBalance writes the user's balance. The value is computed by the caller
// while it holds the row lock from FindByUsernameForUpdate, so no arithmetic
// happens in SQL where REAL or DECIMAL rounding could creep in.
func (r *UserRepository) SetBalance(ctx context.Context, userID uint, balance decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("balance", balance).Error
}
