package http

import (
	"net/http"
	"sync"

	"energiebuch/internal/auth"
	application "energiebuch/internal/ingest/application"
	"energiebuch/internal/ingest/interfaces"
	"energiebuch/internal/observability/metrics"
)

type sessionRecord struct {
	installationID string
	result         *application.Result
}

// ResultCache remembers the most recent session result per caller so the
// report can be fetched again after the upload response was consumed.
type ResultCache struct {
	mu   sync.Mutex
	last map[string]sessionRecord
}

// NewResultCache constructs an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{last: make(map[string]sessionRecord)}
}

// Put stores the latest result of one caller.
func (c *ResultCache) Put(caller, installationID string, result *application.Result) {
	if c == nil || result == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[caller] = sessionRecord{installationID: installationID, result: result}
}

// Get returns the latest result of one caller.
func (c *ResultCache) Get(caller string) (string, *application.Result, bool) {
	if c == nil {
		return "", nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	record, ok := c.last[caller]
	if !ok {
		return "", nil, false
	}
	return record.installationID, record.result, true
}

// ReportHandler serves the caller's last import report.
type ReportHandler struct {
	cache *ResultCache
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(cache *ResultCache) *ReportHandler {
	return &ReportHandler{cache: cache}
}

// ServeHTTP handles GET /api/v1/imports/report.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.cache == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	installationID, result, ok := h.cache.Get(callerKey(r))
	if !ok {
		http.Error(w, "no import session yet", http.StatusNotFound)
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "xlsx":
		metrics.IncExportRequest(format)
		data, err := interfaces.BuildResultXLSX(installationID, result)
		if err != nil {
			http.Error(w, "report rendering failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="import-report.xlsx"`)
		_, _ = w.Write(data)
	case "", "pdf":
		metrics.IncExportRequest("pdf")
		data, err := interfaces.BuildResultPDF(installationID, result)
		if err != nil {
			http.Error(w, "report rendering failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="import-report.pdf"`)
		_, _ = w.Write(data)
	default:
		http.Error(w, "format must be pdf or xlsx", http.StatusBadRequest)
	}
}

func callerKey(r *http.Request) string {
	if subject := auth.SubjectFromContext(r.Context()); subject != "" {
		return subject
	}
	if tenant := auth.TenantIDFromContext(r.Context()); tenant != "" {
		return tenant
	}
	return "anonymous"
}
