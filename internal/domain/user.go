package domain

import "github.com/shopspring/decimal" // Fixed-point money

// Role is the authorization role carried by a user and its tokens
type Role string

const (
	RoleClient Role = "CLIENT" // Regular self-registered user
	RoleAdmin  Role = "ADMIN"  // Administrator
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleAdmin
}

// User Model
type User struct {
	ID           uint            `gorm:"primaryKey" json:"id"`                                 // Primary key
	Username     string          `gorm:"size:191;uniqueIndex;not null" json:"username"`        // Unique, case-sensitive username
	Password     string          `gorm:"not null" json:"-"`                                    // Hashed password, never serialized
	Role         Role            `gorm:"size:16;not null;default:CLIENT" json:"role"`          // CLIENT or ADMIN
	Enabled      bool            `gorm:"not null" json:"enabled"`                              // Disabled users cannot log in
	Balance      decimal.Decimal `gorm:"type:decimal(19,4);not null;default:0" json:"balance"` // Running balance
	Transactions []Transaction   `gorm:"constraint:OnDelete:CASCADE;" json:"-"`                // Owned transactions
}

// Principal is the acting user identified by a verified bearer token
type Principal struct {
	Username string
	Role     Role
}

// IsAdmin reports whether the principal has the ADMIN role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanDeleteUser reports whether p may delete the account named target.
// Admins may delete anyone; everyone else only themselves.
func CanDeleteUser(p Principal, target string) bool {
	return p.IsAdmin() || p.Username == target
}
