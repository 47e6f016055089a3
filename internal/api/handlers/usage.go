package handlers

import (
	"net/http"
	"time"

	"github.com/voicelab/voiceprobe/internal/audit"
)

type UsageHandler struct {
	usage *audit.Service
}

func NewUsageHandler(usage *audit.Service) *UsageHandler {
	return &UsageHandler{usage: usage}
}

// Summary aggregates recorded API calls per operation. Without a database
// there is nothing recorded and the summary is empty.
func (h *UsageHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var since *time.Time
	if s := r.URL.Query().Get("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeWarning(w, http.StatusBadRequest, "invalid since timestamp, want RFC 3339")
			return
		}
		since = &t
	}

	summaries, err := h.usage.Summary(r.Context(), since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if summaries == nil {
		summaries = []audit.UsageSummary{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"usage": summaries})
}
