package projections

import (
	"context"
	"errors"
	"strings"

	accountStore "clubdash/internal/adapters/storage/account"
	"clubdash/internal/application/listutil"
)

// ErrEmptyQuery is returned when a search has nothing to match.
var ErrEmptyQuery = errors.New("query parameter is required")

// AccountSummary is an account as shown in search results.
type AccountSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SearchAccountsQuery carries the search term and page.
type SearchAccountsQuery struct {
	Query string
	Page  listutil.PageParams
}

// SearchAccountsResult is one page of matches.
type SearchAccountsResult struct {
	Accounts []AccountSummary `json:"accounts"`
	Page     listutil.PageInfo `json:"page"`
}

// QuerySearchAccounts matches usernames and emails containing the query,
// ignoring case.
// PRE: none
// POST: ErrEmptyQuery for a blank query; Accounts is never nil
func QuerySearchAccounts(ctx context.Context, q SearchAccountsQuery, accounts AccountStore) (SearchAccountsResult, error) {
	term := strings.TrimSpace(q.Query)
	if term == "" {
		return SearchAccountsResult{}, ErrEmptyQuery
	}
	total, err := accounts.CountSearch(ctx, term)
	if err != nil {
		return SearchAccountsResult{}, err
	}
	page := listutil.NewPageInfo(q.Page, total)
	found, err := accounts.Search(ctx, accountStore.SearchFilter{Query: term, Limit: page.PerPage, Offset: page.Offset()})
	if err != nil {
		return SearchAccountsResult{}, err
	}
	res := SearchAccountsResult{Accounts: make([]AccountSummary, 0, len(found)), Page: page}
	for _, a := range found {
		res.Accounts = append(res.Accounts, AccountSummary{ID: a.ID, Username: a.Username, Email: a.Email})
	}
	return res, nil
}
