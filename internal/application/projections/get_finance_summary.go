package projections

import (
	"context"

	domainFinance "clubdash/internal/domain/finance"
)

// GetFinanceSummaryDeps holds dependencies for QueryFinanceSummary.
type GetFinanceSummaryDeps struct {
	ClubStore     ClubStore
	PurchaseStore PurchaseStore
}

// QueryFinanceSummary totals a club's purchases against its budget.
// POST: Purchases newest first; FundCents = BudgetCents - SpentCents
func QueryFinanceSummary(ctx context.Context, clubID string, deps GetFinanceSummaryDeps) (domainFinance.Summary, error) {
	c, err := deps.ClubStore.GetByID(ctx, clubID)
	if err != nil {
		return domainFinance.Summary{}, err
	}
	purchases, err := deps.PurchaseStore.ListByClub(ctx, clubID)
	if err != nil {
		return domainFinance.Summary{}, err
	}
	if purchases == nil {
		purchases = []domainFinance.Purchase{}
	}
	return domainFinance.Summarize(c.BudgetCents, purchases), nil
}
