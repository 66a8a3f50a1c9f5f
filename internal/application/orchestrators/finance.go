package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"clubdash/internal/domain/calendar"
	"clubdash/internal/domain/club"
	"clubdash/internal/domain/finance"
)

// PurchaseStore defines the ledger operations.
type PurchaseStore interface {
	Save(ctx context.Context, p finance.Purchase) error
	Delete(ctx context.Context, clubID, id string) error
}

// RecordPurchaseInput carries the purchase form. Amount is a decimal string.
type RecordPurchaseInput struct {
	ClubID    string
	Name      string
	Amount    string
	Date      string
	CreatedBy string
}

// FinanceDeps holds dependencies for RecordPurchase and DeletePurchase.
type FinanceDeps struct {
	PurchaseStore PurchaseStore
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteRecordPurchase adds a purchase to a club's ledger.
// PRE: caller belongs to the club
// POST: purchase saved with a positive amount
func ExecuteRecordPurchase(ctx context.Context, input RecordPurchaseInput, deps FinanceDeps) (finance.Purchase, error) {
	cents, err := finance.ParseAmount(input.Amount)
	if err != nil {
		return finance.Purchase{}, err
	}
	var date calendar.Date
	if input.Date != "" {
		if date, err = calendar.ParseDate(input.Date); err != nil {
			return finance.Purchase{}, err
		}
	}
	p := finance.Purchase{
		ID:          deps.GenerateID(),
		ClubID:      input.ClubID,
		Name:        strings.TrimSpace(input.Name),
		AmountCents: cents,
		Date:        date,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   deps.Now(),
	}
	if err := p.Validate(); err != nil {
		return finance.Purchase{}, err
	}
	if err := deps.PurchaseStore.Save(ctx, p); err != nil {
		return finance.Purchase{}, err
	}
	slog.Info("finance_event", "event", "purchase_recorded", "club_id", p.ClubID, "purchase_id", p.ID, "amount_cents", p.AmountCents)
	return p, nil
}

// ExecuteDeletePurchase removes one purchase from a club's ledger.
func ExecuteDeletePurchase(ctx context.Context, clubID, id string, deps FinanceDeps) error {
	if err := deps.PurchaseStore.Delete(ctx, clubID, id); err != nil {
		return err
	}
	slog.Info("finance_event", "event", "purchase_deleted", "club_id", clubID, "purchase_id", id)
	return nil
}

// ClubStoreForBudget defines the club operations SetBudget needs.
type ClubStoreForBudget interface {
	GetByID(ctx context.Context, id string) (club.Club, error)
	GetMembership(ctx context.Context, clubID, accountID string) (club.Membership, error)
	Save(ctx context.Context, c club.Club) error
}

// SetBudgetInput carries the new budget as a decimal string.
type SetBudgetInput struct {
	ClubID    string
	AccountID string
	Budget    string
}

// SetBudgetDeps holds dependencies for SetBudget.
type SetBudgetDeps struct {
	ClubStore ClubStoreForBudget
}

// ErrNotClubOwner is returned when a non-owner changes owner-only settings.
var ErrNotClubOwner = errors.New("only the club owner can do that")

// ExecuteSetBudget replaces a club's budget.
// PRE: none
// POST: budget saved when the caller owns the club; ErrNotClubOwner otherwise
func ExecuteSetBudget(ctx context.Context, input SetBudgetInput, deps SetBudgetDeps) (club.Club, error) {
	cents, err := finance.ParseAmount(input.Budget)
	if err != nil {
		return club.Club{}, err
	}
	m, err := deps.ClubStore.GetMembership(ctx, input.ClubID, input.AccountID)
	if errors.Is(err, sql.ErrNoRows) {
		return club.Club{}, ErrNotClubOwner
	}
	if err != nil {
		return club.Club{}, err
	}
	if !m.IsOwner() {
		return club.Club{}, ErrNotClubOwner
	}

	c, err := deps.ClubStore.GetByID(ctx, input.ClubID)
	if err != nil {
		return club.Club{}, err
	}
	c.BudgetCents = cents
	if err := c.Validate(); err != nil {
		return club.Club{}, err
	}
	if err := deps.ClubStore.Save(ctx, c); err != nil {
		return club.Club{}, err
	}
	slog.Info("finance_event", "event", "budget_set", "club_id", c.ID, "budget_cents", cents)
	return c, nil
}
