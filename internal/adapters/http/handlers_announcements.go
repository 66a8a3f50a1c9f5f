package web

import (
	"net/http"
	"strconv"

	"clubdash/internal/application/orchestrators"
	"clubdash/internal/application/projections"
	domainAnnouncement "clubdash/internal/domain/announcement"
)

// maxAnnouncementList caps GET .../announcements?limit=.
const maxAnnouncementList = 100

type announcementRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// handleSendAnnouncement emails a markdown announcement to every member
// (POST /api/clubs/{club}/announcements).
// PRE: caller is a member of the club
// POST: 201 when sent; 502 when the provider rejects the batch (the
// announcement is stored as failed); delivery is not retried
func handleSendAnnouncement(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	var req announcementRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	a, err := orchestrators.ExecuteSendAnnouncement(r.Context(), orchestrators.SendAnnouncementInput{
		ClubID:   access.Club.ID,
		ClubName: access.Club.Name,
		SenderID: access.Session.AccountID,
		Subject:  req.Subject,
		Body:     req.Body,
	}, orchestrators.SendAnnouncementDeps{
		AnnouncementStore: stores.AnnouncementStore,
		Members:           stores.ClubStore,
		EmailSender:       emailSender,
		GenerateID:        generateID,
		Now:               timeNow,
		FromAddress:       emailFromAddress,
		ReplyTo:           emailReplyTo,
	})
	if err != nil {
		if a.Status == domainAnnouncement.StatusFailed {
			writeJSON(w, http.StatusBadGateway, toAnnouncementDTO(a))
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAnnouncementDTO(a))
}

// handleListAnnouncements lists a club's announcements, newest first
// (GET /api/clubs/{club}/announcements?limit=).
func handleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > maxAnnouncementList {
		limit = maxAnnouncementList
	}
	list, err := projections.QueryAnnouncements(r.Context(), access.Club.ID, limit, stores.AnnouncementStore)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"announcements": toAnnouncementDTOs(list)})
}
