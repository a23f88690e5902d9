package apihttp

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"energiebuch/internal/auth"
	masterdata "energiebuch/internal/masterdata/domain"
	"energiebuch/internal/periods"
)

// DevicesHandler serves the configured device list of an installation.
type DevicesHandler struct {
	devices masterdata.DeviceRepository
	checker auth.InstallationTenantChecker
}

// NewDevicesHandler constructs a DevicesHandler.
func NewDevicesHandler(devices masterdata.DeviceRepository, checker auth.InstallationTenantChecker) *DevicesHandler {
	return &DevicesHandler{devices: devices, checker: checker}
}

// ServeHTTP handles GET /api/v1/devices.
func (h *DevicesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.devices == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	installationID, ok := requireInstallation(w, r, h.checker)
	if !ok {
		return
	}

	devices, err := h.devices.ListByInstallation(r.Context(), installationID)
	if err != nil {
		http.Error(w, "query devices error", http.StatusInternalServerError)
		return
	}

	rows := make([]deviceRow, 0, len(devices))
	for _, device := range devices {
		rows = append(rows, deviceRow{
			ID:             device.ID,
			InstallationID: device.InstallationID,
			Label:          device.Label,
			Type:           string(device.Type),
			Category:       string(device.Category),
			Position:       device.Position,
			CreatedAt:      device.CreatedAt.UTC(),
			UpdatedAt:      device.UpdatedAt.UTC(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

// PeriodsHandler serves stored period summaries.
type PeriodsHandler struct {
	periods *periods.Repository
	checker auth.InstallationTenantChecker
}

// NewPeriodsHandler constructs a PeriodsHandler.
func NewPeriodsHandler(repo *periods.Repository, checker auth.InstallationTenantChecker) *PeriodsHandler {
	return &PeriodsHandler{periods: repo, checker: checker}
}

// ServeHTTP handles GET /api/v1/periods.
func (h *PeriodsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.periods == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	installationID, ok := requireInstallation(w, r, h.checker)
	if !ok {
		return
	}

	summaries, err := h.periods.ListByInstallation(r.Context(), installationID)
	if err != nil {
		http.Error(w, "query periods error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summaries)
}

// ExportPeriodsCSVHandler serves period summary CSV exports.
type ExportPeriodsCSVHandler struct {
	periods *periods.Repository
	checker auth.InstallationTenantChecker
}

// NewExportPeriodsCSVHandler constructs a ExportPeriodsCSVHandler.
func NewExportPeriodsCSVHandler(repo *periods.Repository, checker auth.InstallationTenantChecker) *ExportPeriodsCSVHandler {
	return &ExportPeriodsCSVHandler{periods: repo, checker: checker}
}

// ServeHTTP handles GET /api/v1/exports/periods.csv.
func (h *ExportPeriodsCSVHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.periods == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	installationID, ok := requireInstallation(w, r, h.checker)
	if !ok {
		return
	}

	summaries, err := h.periods.ListByInstallation(r.Context(), installationID)
	if err != nil {
		http.Error(w, "query periods error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="perioden.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{
		"anlage",
		"jahr",
		"monat",
		"einspeisung_kwh",
		"netzbezug_kwh",
		"pv_erzeugung_kwh",
		"batterie_ladung_kwh",
		"batterie_entladung_kwh",
		"eigenverbrauch_direkt_kwh",
		"eigenverbrauch_kwh",
		"verbrauch_gesamt_kwh",
		"sonnenstunden",
		"temperatur_grad",
		"notiz",
	})
	for _, summary := range summaries {
		_ = writer.Write([]string{
			summary.InstallationID,
			strconv.Itoa(summary.Year),
			strconv.Itoa(summary.Month),
			formatOptional(summary.EinspeisungKWh),
			formatOptional(summary.NetzbezugKWh),
			formatOptional(summary.PVErzeugungKWh),
			formatOptional(summary.BatterieLadungKWh),
			formatOptional(summary.BatterieEntladungKWh),
			formatOptional(summary.EigenverbrauchDirektKWh),
			formatOptional(summary.EigenverbrauchKWh),
			formatOptional(summary.VerbrauchGesamtKWh),
			formatOptional(summary.Sonnenstunden),
			formatOptional(summary.TemperaturGrad),
			summary.Notiz,
		})
	}
	writer.Flush()
}

type deviceRow struct {
	ID             string    `json:"id"`
	InstallationID string    `json:"installation_id"`
	Label          string    `json:"label"`
	Type           string    `json:"type"`
	Category       string    `json:"category,omitempty"`
	Position       int       `json:"position"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func requireInstallation(w http.ResponseWriter, r *http.Request, checker auth.InstallationTenantChecker) (string, bool) {
	installationID := r.URL.Query().Get("installation_id")
	if installationID == "" {
		http.Error(w, "installation_id is required", http.StatusBadRequest)
		return "", false
	}
	tenantID := auth.TenantIDFromContext(r.Context())
	if tenantID != "" && checker != nil {
		if err := checker.EnsureInstallationTenant(r.Context(), tenantID, installationID); err != nil {
			switch {
			case errors.Is(err, auth.ErrTenantMismatch):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, auth.ErrNotFound):
				http.Error(w, "not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return "", false
		}
	}
	return installationID, true
}

func formatOptional(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}
