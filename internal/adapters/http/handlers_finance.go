package web

import (
	"net/http"

	"clubdash/internal/application/orchestrators"
	"clubdash/internal/application/projections"
)

type purchaseRequest struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
}

type budgetRequest struct {
	Budget string `json:"budget"`
}

func financeDeps() orchestrators.FinanceDeps {
	return orchestrators.FinanceDeps{
		PurchaseStore: stores.PurchaseStore,
		GenerateID:    generateID,
		Now:           timeNow,
	}
}

// handleFinance returns the club's fund position (GET /api/clubs/{club}/finance).
// POST: fund = budget - sum of purchases; purchases newest first
func handleFinance(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	summary, err := projections.QueryFinanceSummary(r.Context(), access.Club.ID, projections.GetFinanceSummaryDeps{
		ClubStore:     stores.ClubStore,
		PurchaseStore: stores.PurchaseStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFinanceDTO(summary))
}

// handleRecordPurchase records money spent (POST /api/clubs/{club}/finance/purchases).
// POST: 201 with the purchase; 400 for a non-positive amount or bad date
func handleRecordPurchase(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	var req purchaseRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, err := orchestrators.ExecuteRecordPurchase(r.Context(), orchestrators.RecordPurchaseInput{
		ClubID:    access.Club.ID,
		Name:      req.Name,
		Amount:    req.Amount,
		Date:      req.Date,
		CreatedBy: access.Session.AccountID,
	}, financeDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPurchaseDTO(p))
}

// handleDeletePurchase removes a purchase (DELETE /api/clubs/{club}/finance/purchases/{id}).
func handleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	if err := orchestrators.ExecuteDeletePurchase(r.Context(), access.Club.ID, r.PathValue("id"), financeDeps()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetBudget replaces the budget (PUT /api/clubs/{club}/finance/budget).
// PRE: caller owns the club
// POST: 403 for other members
func handleSetBudget(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	var req budgetRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	c, err := orchestrators.ExecuteSetBudget(r.Context(), orchestrators.SetBudgetInput{
		ClubID:    access.Club.ID,
		AccountID: access.Session.AccountID,
		Budget:    req.Budget,
	}, orchestrators.SetBudgetDeps{ClubStore: stores.ClubStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClubDTO(c))
}
