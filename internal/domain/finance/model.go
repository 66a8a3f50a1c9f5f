package finance

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"clubdash/internal/domain/calendar"
)

// MaxNameLength bounds purchase descriptions.
const MaxNameLength = 200

// Domain errors
var (
	ErrEmptyName      = errors.New("purchase name cannot be empty")
	ErrNonPositive    = errors.New("purchase amount must be greater than zero")
	ErrMissingDate    = errors.New("purchase date is required")
	ErrInvalidAmount  = errors.New("amount must be a decimal number with at most two decimal places")
	ErrNegativeBudget = errors.New("budget cannot be negative")
	ErrNameTooLong    = errors.New("purchase name cannot exceed 200 characters")
	ErrMissingClub    = errors.New("purchase must belong to a club")
)

// Purchase is money spent from a club's budget.
type Purchase struct {
	ID          string
	ClubID      string
	Name        string
	AmountCents int64
	Date        calendar.Date
	CreatedBy   string
	CreatedAt   time.Time
}

// Validate checks the purchase's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (p *Purchase) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if p.AmountCents <= 0 {
		return ErrNonPositive
	}
	if p.Date.IsZero() {
		return ErrMissingDate
	}
	if p.ClubID == "" {
		return ErrMissingClub
	}
	return nil
}

// Summary is a club's budget position.
type Summary struct {
	BudgetCents int64
	SpentCents  int64
	FundCents   int64 // BudgetCents - SpentCents; negative when overspent
	Purchases   []Purchase
}

// Summarize totals purchases against the budget.
// INVARIANT: FundCents == BudgetCents - sum(AmountCents)
func Summarize(budgetCents int64, purchases []Purchase) Summary {
	var spent int64
	for _, p := range purchases {
		spent += p.AmountCents
	}
	return Summary{
		BudgetCents: budgetCents,
		SpentCents:  spent,
		FundCents:   budgetCents - spent,
		Purchases:   purchases,
	}
}

// FormatCents renders cents as a two-place decimal string, e.g. "-12.05".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// ParseAmount reads a non-negative decimal string such as "12", "12.5" or
// "12.50" into cents. A leading "$" is ignored.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, ErrInvalidAmount
	}
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseUint(whole, 10, 62)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	f, err := strconv.ParseUint(frac, 10, 8)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return int64(w)*100 + int64(f), nil
}
