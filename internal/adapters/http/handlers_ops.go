package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"clubdash/internal/adapters/formtext"
	"clubdash/internal/application/orchestrators"
)

// handleHealth reports liveness and whether mail delivery is set up (GET /health).
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "healthy",
		"mail_configured": mailConfigured,
	})
}

// handleAdminPerf returns request and query timings (GET /api/admin/perf?minutes=&top=).
// PRE: caller is a site admin
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if perfCollector == nil {
		http.Error(w, "perf collection disabled", http.StatusNotFound)
		return
	}
	q := r.URL.Query()
	minutes, _ := strconv.Atoi(q.Get("minutes"))
	if minutes <= 0 {
		minutes = 15
	}
	top, _ := strconv.Atoi(q.Get("top"))
	if top <= 0 || top > 100 {
		top = 10
	}
	snap := perfCollector.Snapshot(timeNow().Add(-time.Duration(minutes)*time.Minute), top)
	writeJSON(w, http.StatusOK, snap)
}

// handleAnalyzeForm reviews an uploaded funding form (POST /api/analyze-form).
// PRE: multipart field "file" holding a PDF, DOCX or text file of at most 10 MiB
// POST: {issues, recommendations, checks}; nothing is stored
func handleAnalyzeForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}
	// Headroom for the multipart envelope; the file itself is checked below.
	r.Body = http.MaxBytesReader(w, r.Body, formtext.MaxUploadBytes+64<<10)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, formtext.ErrTooLarge.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, formtext.MaxUploadBytes+1))
	if err != nil {
		internalError(w, err)
		return
	}
	analysis, err := orchestrators.ExecuteAnalyzeForm(r.Context(), orchestrators.AnalyzeFormInput{
		Filename: header.Filename,
		Data:     data,
	}, orchestrators.AnalyzeFormDeps{Analyzer: formAnalyzer})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}
