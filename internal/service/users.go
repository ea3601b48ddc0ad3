package service

import (
	"context" // Request-scoped cancellation
	"errors"  // Sentinel matching
	"strings" // Username validation

	"finance_tracker/internal/domain"     // Importing domain models
	"finance_tracker/internal/repository" // Persistence
	"finance_tracker/internal/utils"      // Token service

	"github.com/shopspring/decimal" // Initial balance
	"github.com/sirupsen/logrus"    // Logging library
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

// PasswordHasher hashes and verifies passwords without exposing the hash format
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) (bool, error)
}

// UserService handles registration, login, password changes and account deletion
type UserService struct {
	store  *repository.Store
	hasher PasswordHasher
	tokens *utils.TokenService
}

// NewUserService creates a user service
func NewUserService(store *repository.Store, hasher PasswordHasher, tokens *utils.TokenService) *UserService {
	return &UserService{store: store, hasher: hasher, tokens: tokens}
}

// Register creates an enabled CLIENT account with a zero balance
func (s *UserService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username) // " alice" and "alice" are the same account
	if username == "" {
		return nil, validationErr("username is required")
	}
	if len(password) < MinPasswordLength {
		return nil, validationErr("password must be at least %d characters", MinPasswordLength)
	}
	exists, err := s.store.Users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, internalErr("failed to check username", err)
	}
	if exists {
		return nil, conflictErr("username already exists")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, internalErr("failed to hash password", err)
	}
	user := &domain.User{
		Username: username,
		Password: hash,
		Role:     domain.RoleClient,
		Enabled:  true,
		Balance:  decimal.Zero,
	}
	if _, err := s.store.Users.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflictErr("username already exists") // Lost a registration race
		}
		return nil, internalErr("failed to create user", err)
	}
	logrus.WithField("user", user.Username).Info("User registered")
	return user, nil
}

// Authenticate checks credentials and issues a bearer token
func (s *UserService) Authenticate(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.Users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return "", unauthorizedErr("invalid username or password", nil)
	}
	if err != nil {
		return "", internalErr("failed to load user", err)
	}
	ok, err := s.hasher.Verify(password, user.Password)
	if err != nil {
		return "", internalErr("failed to verify password", err)
	}
	if !ok {
		return "", unauthorizedErr("invalid username or password", nil)
	}
	if !user.Enabled {
		return "", unauthorizedErr("account is disabled", nil)
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", internalErr("failed to generate token", err)
	}
	logrus.WithField("user", user.Username).Info("User logged in")
	return token, nil
}

// ChangePassword replaces the acting user's password after checking the old one
func (s *UserService) ChangePassword(ctx context.Context, p domain.Principal, oldPassword, newPassword string) (*domain.User, error) {
	user, err := s.store.Users.FindByUsername(ctx, p.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundErr("user not found")
	}
	if err != nil {
		return nil, internalErr("failed to load user", err)
	}
	ok, err := s.hasher.Verify(oldPassword, user.Password)
	if err != nil {
		return nil, internalErr("failed to verify password", err)
	}
	if !ok {
		return nil, unauthorizedErr("old password is incorrect", nil)
	}
	if len(newPassword) < MinPasswordLength {
		return nil, validationErr("password must be at least %d characters", MinPasswordLength)
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, internalErr("failed to hash password", err)
	}
	updated, err := s.store.Users.UpdatePassword(ctx, user.Username, hash)
	if err != nil {
		return nil, internalErr("failed to update password", err)
	}
	if !updated {
		return nil, notFoundErr("user not found")
	}
	user.Password = hash
	logrus.WithField("user", user.Username).Info("Password changed")
	return user, nil
}

// GetUser returns the user with the given username
func (s *UserService) GetUser(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.store.Users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundErr("user not found")
	}
	if err != nil {
		return nil, internalErr("failed to load user", err)
	}
	return user, nil
}

// DeleteUser deletes target and all of its transactions. The requester's role
// is read from the database so a revoked admin cannot use an old token.
// It reports whether target no longer exists.
func (s *UserService) DeleteUser(ctx context.Context, p domain.Principal, target string) (bool, error) {
	requester, err := s.store.Users.FindByUsername(ctx, p.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return false, unauthorizedErr("requesting user no longer exists", nil)
	}
	if err != nil {
		return false, internalErr("failed to load user", err)
	}
	if !domain.CanDeleteUser(domain.Principal{Username: requester.Username, Role: requester.Role}, target) {
		return false, forbiddenErr("only admins may delete other users")
	}

	var removed int64
	err = s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		victim, err := tx.Users.FindByUsernameForUpdate(ctx, target)
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundErr("user not found")
		}
		if err != nil {
			return internalErr("failed to load user", err)
		}
		if removed, err = tx.Transactions.DeleteByOwner(ctx, victim.ID); err != nil {
			return internalErr("failed to delete transactions", err)
		}
		if _, err := tx.Users.DeleteByUsername(ctx, target); err != nil {
			return internalErr("failed to delete user", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	exists, err := s.store.Users.ExistsByUsername(ctx, target)
	if err != nil {
		return false, internalErr("failed to confirm deletion", err)
	}
	logrus.WithFields(logrus.Fields{
		"user":         target,
		"deleted_by":   requester.Username,
		"transactions": removed,
	}).Info("User deleted")
	return !exists, nil
}
