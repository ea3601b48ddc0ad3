package domain

import (
	"encoding/json" // Custom JSON rendering of the date
	"time"          // Transaction timestamps

	"github.com/shopspring/decimal" // Fixed-point money
)

// DateTimeLayout is the ISO-8601 local date-time layout used on the wire
const DateTimeLayout = "2006-01-02T15:04:05"

func init() {
	// Render amounts and balances as JSON numbers rather than strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Transaction Model
type Transaction struct {
	ID       uint            `gorm:"primaryKey" json:"id"`                        // Primary key
	IsIncome bool            `gorm:"not null" json:"isIncome"`                    // Income adds to the balance, expense subtracts
	Date     time.Time       `gorm:"not null;index" json:"date"`                  // Client supplied date
	Amount   decimal.Decimal `gorm:"type:decimal(19,4);not null" json:"amount"`   // Non-negative magnitude
	Category string          `gorm:"size:255;not null;index" json:"category"`     // Free-form category label
	UserID   uint            `gorm:"not null;index" json:"userId"`                // Owner, never changes
}

// MarshalJSON renders the date as a local date-time
func (t Transaction) MarshalJSON() ([]byte, error) {
	type alias Transaction
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias: alias(t), Date: t.Date.Format(DateTimeLayout)})
}

// Effect returns the signed contribution of a transaction to its owner's balance
func Effect(isIncome bool, amount decimal.Decimal) decimal.Decimal {
	if isIncome {
		return amount
	}
	return amount.Neg()
}

// Effect returns the signed contribution of t to its owner's balance
func (t Transaction) Effect() decimal.Decimal {
	return Effect(t.IsIncome, t.Amount)
}

// Money limits. A value with at most MoneyScale decimals and a magnitude below
// MaxMoney has at most 15 significant digits, which both decimal(19,4) and an
// IEEE double (SQLite REAL) hold exactly.
const MoneyScale = 4

// MaxMoney is the exclusive bound on the magnitude of amounts and balances
var MaxMoney = decimal.New(1, 11)

// FitsMoney reports whether d can be stored without rounding
func FitsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale)) && d.Abs().LessThan(MaxMoney)
}

// TransactionInput carries the client-editable fields of a transaction
type TransactionInput struct {
	IsIncome bool
	Date     time.Time
	Amount   decimal.Decimal
	Category string
}

// ParseDateTime parses the date formats accepted from clients.
// Zone-less values are taken as UTC.
func ParseDateTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range []string{"2006-01-02T15:04", DateTimeLayout, "2006-01-02T15:04:05.999999999", time.RFC3339Nano} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
