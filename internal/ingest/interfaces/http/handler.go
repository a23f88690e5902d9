package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"time"

	"energiebuch/internal/audit"
	"energiebuch/internal/auth"
	application "energiebuch/internal/ingest/application"
	"energiebuch/internal/ingest/interfaces"
	"energiebuch/internal/observability/metrics"
)

const maxUploadBytes = 16 << 20

// SummaryStore persists period summaries after a session.
type SummaryStore interface {
	SaveAll(ctx context.Context, summaries []application.PeriodSummary) error
}

// SummaryPublisher pushes period summaries to an external sink.
type SummaryPublisher interface {
	Publish(ctx context.Context, summary application.PeriodSummary) error
}

// UploadHandler accepts spreadsheet uploads and runs import sessions.
type UploadHandler struct {
	service   *application.SessionService
	summaries SummaryStore
	publisher SummaryPublisher
	checker   auth.InstallationTenantChecker
	audit     audit.Logger
	cfg       application.Config
	logger    *log.Logger
	results   *ResultCache
}

// Option configures an UploadHandler.
type Option func(*UploadHandler)

// WithResultCache keeps the last session result of each caller for the
// report endpoint.
func WithResultCache(cache *ResultCache) Option {
	return func(h *UploadHandler) {
		h.results = cache
	}
}

// NewUploadHandler constructs a handler. Publisher and audit may be nil.
func NewUploadHandler(service *application.SessionService, summaries SummaryStore, publisher SummaryPublisher, checker auth.InstallationTenantChecker, auditLogger audit.Logger, cfg application.Config, logger *log.Logger, opts ...Option) (*UploadHandler, error) {
	if service == nil {
		return nil, errors.New("upload handler: nil service")
	}
	if summaries == nil {
		return nil, errors.New("upload handler: nil summary store")
	}
	if logger == nil {
		logger = log.Default()
	}
	handler := &UploadHandler{
		service:   service,
		summaries: summaries,
		publisher: publisher,
		checker:   checker,
		audit:     auditLogger,
		cfg:       cfg,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(handler)
	}
	return handler, nil
}

// ServeHTTP handles POST /api/v1/imports.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	installationID, rows, overwrite, err := h.decodeRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(rows) > h.cfg.MaxRows {
		http.Error(w, fmt.Sprintf("upload exceeds %d rows", h.cfg.MaxRows), http.StatusRequestEntityTooLarge)
		return
	}

	tenantID := auth.TenantIDFromContext(r.Context())
	if tenantID != "" && h.checker != nil {
		if err := h.checker.EnsureInstallationTenant(r.Context(), tenantID, installationID); err != nil {
			respondTenantError(w, err)
			return
		}
	}

	result, err := h.service.Run(r.Context(), installationID, rows, overwrite)
	if err != nil {
		metrics.ObserveImportSession(metrics.ResultError, time.Since(start))
		http.Error(w, "import failed", http.StatusInternalServerError)
		h.logger.Printf("import session failed: installation=%s err=%v", installationID, err)
		return
	}

	if err := h.summaries.SaveAll(r.Context(), result.Summaries); err != nil {
		metrics.ObserveImportSession(metrics.ResultError, time.Since(start))
		http.Error(w, "saving period summaries failed", http.StatusInternalServerError)
		h.logger.Printf("period summary save failed: installation=%s err=%v", installationID, err)
		return
	}
	if h.publisher != nil {
		for _, summary := range result.Summaries {
			if err := h.publisher.Publish(r.Context(), summary); err != nil {
				h.logger.Printf("summary publish failed: installation=%s period=%04d-%02d err=%v",
					installationID, summary.Year, summary.Month, err)
			}
		}
	}

	sessionResult := metrics.ResultSuccess
	if !result.Success {
		sessionResult = metrics.ResultPartial
	}
	metrics.ObserveImportSession(sessionResult, time.Since(start))
	metrics.AddImportRows(result.Imported, result.Skipped, len(result.Errors))

	h.results.Put(callerKey(r), installationID, result)
	h.logAudit(r, installationID, overwrite, result)
	h.respond(w, r, installationID, result)
}

func (h *UploadHandler) decodeRequest(r *http.Request) (string, []application.RowInput, bool, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)

	overwrite := h.cfg.DefaultOverwrite
	if value := r.URL.Query().Get("overwrite"); value != "" {
		overwrite = value == "true"
	}

	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if contentType == "multipart/form-data" {
		installationID := r.URL.Query().Get("installation_id")
		if installationID == "" {
			return "", nil, false, errors.New("installation_id is required")
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", nil, false, errors.New("file field is required")
		}
		defer file.Close()
		rows, err := interfaces.RowsFromXLSX(file)
		if err != nil {
			return "", nil, false, err
		}
		return installationID, rows, overwrite, nil
	}

	var req struct {
		InstallationID string                 `json:"installation_id"`
		Overwrite      *bool                  `json:"overwrite"`
		Rows           []application.RowInput `json:"rows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", nil, false, errors.New("invalid json")
	}
	if req.InstallationID == "" {
		return "", nil, false, errors.New("installation_id is required")
	}
	if req.Overwrite != nil {
		overwrite = *req.Overwrite
	}
	return req.InstallationID, req.Rows, overwrite, nil
}

func (h *UploadHandler) respond(w http.ResponseWriter, r *http.Request, installationID string, result *application.Result) {
	format := r.URL.Query().Get("format")
	switch format {
	case "pdf":
		metrics.IncExportRequest(format)
		data, err := interfaces.BuildResultPDF(installationID, result)
		if err != nil {
			http.Error(w, "report rendering failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="import-report.pdf"`)
		_, _ = w.Write(data)
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
	default:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}
}

func (h *UploadHandler) logAudit(r *http.Request, installationID string, overwrite bool, result *application.Result) {
	if h.audit == nil {
		return
	}
	metadata, _ := json.Marshal(map[string]any{
		"overwrite":     overwrite,
		"importiert":    result.Imported,
		"uebersprungen": result.Skipped,
		"fehler":        len(result.Errors),
	})
	entry := audit.Entry{
		TenantID:       auth.TenantIDFromContext(r.Context()),
		Actor:          auth.SubjectFromContext(r.Context()),
		Role:           string(auth.RoleFromContext(r.Context())),
		Action:         "import.run",
		ResourceType:   "import_session",
		InstallationID: installationID,
		Metadata:       metadata,
		IP:             r.RemoteAddr,
		UserAgent:      r.UserAgent(),
	}
	if err := h.audit.Log(r.Context(), entry); err != nil {
		h.logger.Printf("audit log failed: %v", err)
	}
}

func respondTenantError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrTenantMismatch):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, auth.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
