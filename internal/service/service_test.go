package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"finance_tracker/internal/db"
	"finance_tracker/internal/domain"
	"finance_tracker/internal/repository"
	"finance_tracker/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	store      *repository.Store
	tokens     *utils.TokenService
	users      *UserService
	ledger     *LedgerService
	categories *CategoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logrus.SetLevel(logrus.WarnLevel)
	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	store := repository.NewStore(gdb)
	tokens, err := utils.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	return &fixture{
		store:      store,
		tokens:     tokens,
		users:      NewUserService(store, utils.BcryptHasher{Cost: bcrypt.MinCost}, tokens),
		ledger:     NewLedgerService(store),
		categories: NewCategoryService(store, nil),
	}
}

// register creates a user and returns its principal
func (f *fixture) register(t *testing.T, name string) domain.Principal {
	t.Helper()
	u, err := f.users.Register(context.Background(), name, "password1")
	require.NoError(t, err)
	return domain.Principal{Username: u.Username, Role: u.Role}
}

func (f *fixture) balance(t *testing.T, name string) decimal.Decimal {
	t.Helper()
	u, err := f.store.Users.FindByUsername(context.Background(), name)
	require.NoError(t, err)
	return u.Balance
}

// requireConsistent checks balance == sum of effects over the user's transactions
func (f *fixture) requireConsistent(t *testing.T, name string) {
	t.Helper()
	ctx := context.Background()
	u, err := f.store.Users.FindByUsername(ctx, name)
	require.NoError(t, err)
	sum := decimal.Zero
	for page := 0; ; page++ {
		p, err := f.ledger.ListTransactions(ctx, domain.TransactionFilter{}, page, domain.MaxPageSize, "id", "asc")
		require.NoError(t, err)
		for _, tx := range p.Content {
			if tx.UserID == u.ID {
				sum = sum.Add(tx.Effect())
			}
		}
		if page+1 >= p.TotalPages {
			break
		}
	}
	require.True(t, sum.Equal(u.Balance), "balance %s != sum of effects %s", u.Balance, sum)
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "error: %v", err)
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func at(day int) time.Time {
	return time.Date(2024, 1, day, 10, 0, 0, 0, time.UTC)
}
