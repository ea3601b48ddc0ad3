package repository

import (
	"context" // Request-scoped cancellation
	"fmt"     // Error wrapping

	"finance_tracker/internal/domain" // Importing domain models

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // Ordering
)

// TransactionRepository persists transactions
type TransactionRepository struct {
	db *gorm.DB
}

// FindByID returns the transaction or ErrNotFound
func (r *TransactionRepository) FindByID(ctx context.Context, id uint) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := r.db.WithContext(ctx).First(&tx, id).Error; err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

// FindByIDAndOwner returns the transaction only when userID owns it, ErrNotFound otherwise
func (r *TransactionRepository) FindByIDAndOwner(ctx context.Context, id, userID uint) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

// Save inserts the transaction when it has no ID and updates it otherwise
func (r *TransactionRepository) Save(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	var err error
	if tx.ID == 0 {
		err = r.db.WithContext(ctx).Create(tx).Error
	} else {
		err = r.db.WithContext(ctx).Save(tx).Error
	}
	if err != nil {
		return nil, translate(err)
	}
	return tx, nil
}

// DeleteByID removes the transaction and reports whether a row was deleted
func (r *TransactionRepository) DeleteByID(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&domain.Transaction{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteByOwner removes every transaction owned by userID
func (r *TransactionRepository) DeleteByOwner(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Transaction{})
	return res.RowsAffected, res.Error
}

// Query returns one page of transactions matching filter, ordered by req.
// Ties on the sort column are broken by id so pages never overlap.
func (r *TransactionRepository) Query(ctx context.Context, filter domain.TransactionFilter, req domain.PageRequest) (domain.Page[domain.Transaction], error) {
	column, ok := req.SortField.Column()
	if !ok {
		return domain.Page[domain.Transaction]{}, fmt.Errorf("unknown sort field %q", req.SortField)
	}
	// New session so Count and Find each start from the filtered statement
	query := r.applyFilter(r.db.WithContext(ctx).Model(&domain.Transaction{}), filter).Session(&gorm.Session{})

	var total int64 // Total matching rows
	if err := query.Count(&total).Error; err != nil {
		return domain.Page[domain.Transaction]{}, fmt.Errorf("count transactions: %w", err)
	}

	var txs []domain.Transaction
	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: req.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: req.Desc}).
		Offset(req.Offset()).
		Limit(req.Size).
		Find(&txs).Error
	if err != nil {
		return domain.Page[domain.Transaction]{}, fmt.Errorf("fetch transactions: %w", err)
	}
	return domain.NewPage(txs, req, total), nil
}

func (r *TransactionRepository) applyFilter(query *gorm.DB, f domain.TransactionFilter) *gorm.DB {
	if f.IsIncome != nil {
		query = query.Where("is_income = ?", *f.IsIncome)
	}
	if f.StartDate != nil {
		query = query.Where("date >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		query = query.Where("date <= ?", *f.EndDate)
	}
	if f.MinAmount != nil {
		query = query.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		query = query.Where("amount <= ?", *f.MaxAmount)
	}
	if f.Category != nil && *f.Category != "" {
		// instr avoids LIKE wildcards; MySQL compares bytes to stay case-sensitive
		if r.db.Dialector.Name() == "mysql" {
			query = query.Where("INSTR(CAST(category AS BINARY), CAST(? AS BINARY)) > 0", *f.Category)
		} else {
			query = query.Where("instr(category, ?) > 0", *f.Category)
		}
	}
	return query
}
