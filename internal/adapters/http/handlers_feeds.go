package web

import (
	"context"
	"net/http"
	"time"

	"clubdash/internal/application/orchestrators"
)

// manualRefreshTimeout bounds POST .../feeds/{id}/refresh.
var manualRefreshTimeout = 30 * time.Second

type feedRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// handleListFeeds lists a club's subscriptions (GET /api/clubs/{club}/feeds).
func handleListFeeds(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	feeds, err := stores.FeedStore.ListByClub(r.Context(), access.Club.ID)
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]feedDTO, 0, len(feeds))
	for _, f := range feeds {
		out = append(out, toFeedDTO(f))
	}
	writeJSON(w, http.StatusOK, map[string]any{"feeds": out})
}

// handleCreateFeed subscribes a club to an ICS URL (POST /api/clubs/{club}/feeds).
// POST: 201; events arrive on the next refresh; 409 for a duplicate URL
func handleCreateFeed(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	var req feedRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	f, err := orchestrators.ExecuteCreateFeed(r.Context(), orchestrators.CreateFeedInput{
		ClubID:    access.Club.ID,
		Name:      req.Name,
		URL:       req.URL,
		CreatedBy: access.Session.AccountID,
	}, FeedDeps(feedFetcher))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFeedDTO(f))
}

// handleDeleteFeed drops a subscription and its cached events
// (DELETE /api/clubs/{club}/feeds/{id}).
func handleDeleteFeed(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	if err := orchestrators.ExecuteDeleteFeed(r.Context(), access.Club.ID, r.PathValue("id"), FeedDeps(feedFetcher)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRefreshFeed refreshes one feed now (POST /api/clubs/{club}/feeds/{id}/refresh).
// POST: 200 with the updated feed; 502 when the fetch or parse fails, in
// which case the previous events are kept
func handleRefreshFeed(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	f, err := stores.FeedStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil || f.ClubID != access.Club.ID {
		if err != nil && errorStatus(err) != http.StatusNotFound {
			internalError(w, err)
			return
		}
		http.Error(w, orchestrators.ErrFeedNotFound.Error(), http.StatusNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), manualRefreshTimeout)
	defer cancel()
	if _, err := orchestrators.ExecuteRefreshFeed(ctx, f, FeedDeps(feedFetcher)); err != nil {
		http.Error(w, "feed refresh failed", http.StatusBadGateway)
		return
	}
	refreshed, err := stores.FeedStore.GetByID(r.Context(), f.ID)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFeedDTO(refreshed))
}
