package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lofarb/fund-monitor/internal/database"
	"github.com/lofarb/fund-monitor/internal/models"
	"github.com/lofarb/fund-monitor/internal/monitor"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db   *database.DB
	orch *monitor.Orchestrator
	loc  *time.Location
}

// NewHandler creates a new Handler
func NewHandler(db *database.DB, orch *monitor.Orchestrator, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		db:   db,
		orch: orch,
		loc:  loc,
	}
}

// TriggerRun handles POST /monitor/run. It executes one orchestrator
// run synchronously. The endpoint's job is only to kick the pipeline:
// pipeline-internal failures are reported in the body but never change
// the status code.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "completed"}
	if err := h.orch.RunOnce(r.Context()); err != nil {
		resp["detail"] = err.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetNotifications handles GET /notifications?date=YYYY-MM-DD,
// defaulting to today in the exchange timezone.
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	date := time.Now().In(h.loc)
	if s := r.URL.Query().Get("date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	notifications, err := h.db.GetNotificationsByDate(date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if notifications == nil {
		notifications = []*models.FundNotification{}
	}

	respondJSON(w, http.StatusOK, notifications)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
