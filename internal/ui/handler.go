package ui

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/opencatalog/repo-scanner/cfg"
	"github.com/opencatalog/repo-scanner/internal/model"
	"github.com/opencatalog/repo-scanner/internal/scanner"
	"github.com/opencatalog/repo-scanner/pkg/db"
	"github.com/opencatalog/repo-scanner/pkg/log"
)

// Handler serves the scan status, manual trigger, and catalog query routes.
type Handler struct {
	Logger    log.Logger
	Config    *cfg.Config
	MySQL     *db.Mysql
	Scanner   *scanner.Scanner
	Scheduler *scanner.Scheduler
}

// statusResponse is the observability snapshot consumed by the surrounding
// service.
type statusResponse struct {
	scanner.Stats
	NextScanIn string `json:"next_scan_in"`
}

func NewHandler(logger log.Logger, config *cfg.Config, mysql *db.Mysql, scn *scanner.Scanner, sched *scanner.Scheduler) (*Handler, error) {
	return &Handler{
		Logger:    logger,
		Config:    config,
		MySQL:     mysql,
		Scanner:   scn,
		Scheduler: sched,
	}, nil
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", h.getStatus)
	mux.HandleFunc("/api/scan", h.triggerScan)
	mux.HandleFunc("/api/records", h.getRecords)
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := statusResponse{
		Stats:      h.Scanner.Stats(),
		NextScanIn: h.Scheduler.TimeUntilNext().String(),
	}
	writeJson(w, resp)
}

// triggerScan starts a manual scan through the same single-flight gate the
// scheduler uses; a request during a running scan is acknowledged but does
// not start a second run.
func (h *Handler) triggerScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.Scanner.IsRunning() {
		writeJson(w, map[string]string{"status": "already running"})
		return
	}

	go h.Scanner.Run(r.Context())
	writeJson(w, map[string]string{"status": "started"})
}

func (h *Handler) getRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db, err := h.MySQL.Db()
	if err != nil {
		h.Logger.Error(r.Context(), "Database unavailable: %v", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	query := db.WithContext(r.Context()).Model(&model.CatalogRecord{})

	if language := r.URL.Query().Get("language"); language != "" {
		query = query.Where("language = ?", language)
	}
	if category := r.URL.Query().Get("category"); category != "" {
		query = query.Where("analysis->>'$.category' = ?", category)
	}
	if minScore := r.URL.Query().Get("min_score"); minScore != "" {
		if score, err := strconv.ParseFloat(minScore, 64); err == nil {
			query = query.Where("utility_score >= ?", score)
		}
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	var records []model.CatalogRecord
	if err := query.Order("utility_score DESC, popularity DESC").Limit(limit).Find(&records).Error; err != nil {
		h.Logger.Error(r.Context(), "Failed to query records: %v", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	writeJson(w, records)
}

func writeJson(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding failed", http.StatusInternalServerError)
	}
}
