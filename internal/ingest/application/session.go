package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	ingest "energiebuch/internal/ingest/domain"
	masterdata "energiebuch/internal/masterdata/domain"
)

// Result is the outcome of one import session. Success means no errors;
// partial success is visible through the counts and must be inspected
// by the caller, not collapsed into the flag.
type Result struct {
	Success  bool     `json:"erfolg"`
	Imported int      `json:"importiert"`
	Skipped  int      `json:"uebersprungen"`
	Errors   []string `json:"fehler"`
	Warnings []string `json:"warnungen"`

	// Summaries feed the period-level records. They are returned to
	// the caller and not persisted by the engine.
	Summaries []PeriodSummary `json:"-"`
}

// SessionService runs import sessions: one ordered sequence of rows,
// each independently bound, parsed, reconciled and merged. It holds no
// state between calls.
type SessionService struct {
	devices masterdata.DeviceRepository
	store   ingest.ValueStore
	logger  *log.Logger
}

// NewSessionService constructs a session service.
func NewSessionService(devices masterdata.DeviceRepository, store ingest.ValueStore, logger *log.Logger) (*SessionService, error) {
	if devices == nil {
		return nil, errors.New("ingest session: nil device repository")
	}
	if store == nil {
		return nil, errors.New("ingest session: nil value store")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SessionService{devices: devices, store: store, logger: logger}, nil
}

// Run imports all rows for one installation. A failing row is recorded
// and skipped without aborting the session; only an unavailable device
// directory or value store is fatal. Row numbers in messages are
// 1-based including the header row.
func (s *SessionService) Run(ctx context.Context, installationID string, rows []RowInput, overwrite bool) (*Result, error) {
	if installationID == "" {
		return nil, errors.New("ingest session: empty installation id")
	}

	devices, err := s.devices.ListByInstallation(ctx, installationID)
	if err != nil {
		return nil, fmt.Errorf("ingest session: load devices: %w", err)
	}

	reconciler := NewRowReconciler(devices)
	reporter := NewReporter()
	result := &Result{}

	for i, row := range rows {
		rowNum := i + 2
		if isBlankRow(row) {
			continue
		}

		rowResult, err := reconciler.Reconcile(row)
		if err != nil {
			reporter.Error(rowNum, err)
			continue
		}
		for _, warning := range rowResult.Warnings {
			reporter.Warn(rowNum, warning)
		}

		imported, err := s.mergeRow(ctx, rowResult, overwrite)
		if err != nil {
			reporter.Error(rowNum, err)
			continue
		}

		rowResult.Summary.InstallationID = installationID
		result.Summaries = append(result.Summaries, rowResult.Summary)
		if imported {
			result.Imported++
		} else {
			result.Skipped++
		}
	}

	result.Errors = reporter.Errors()
	result.Warnings = reporter.Warnings()
	result.Success = !reporter.HasErrors()
	s.logger.Printf("import session: installation=%s rows=%d imported=%d skipped=%d errors=%d warnings=%d",
		installationID, len(rows), result.Imported, result.Skipped, len(result.Errors), len(result.Warnings))
	return result, nil
}

// isBlankRow reports whether every cell of the row is blank. Blank
// rows are ignored so that trailing spreadsheet rows do not count as
// structural errors.
func isBlankRow(row RowInput) bool {
	for _, raw := range row {
		if strings.TrimSpace(raw) != "" {
			return false
		}
	}
	return true
}

// mergeRow persists every device's values of one accepted row. It
// reports false when overwrite is off and no supplied field was new
// anywhere in the row (duplicate period).
func (s *SessionService) mergeRow(ctx context.Context, row *RowResult, overwrite bool) (bool, error) {
	if len(row.Devices) == 0 {
		return true, nil
	}

	anyNew := overwrite
	for _, device := range row.Devices {
		if !anyNew {
			existing, err := s.store.Get(ctx, device.DeviceID, row.Year, row.Month)
			if err != nil {
				return false, fmt.Errorf("Speichern für Gerät %q fehlgeschlagen: %v", device.Label, err)
			}
			if existing == nil {
				anyNew = true
			} else {
				for key := range device.Values {
					if _, ok := existing[key]; !ok {
						anyNew = true
						break
					}
				}
			}
		}
		if err := s.store.Merge(ctx, device.DeviceID, row.Year, row.Month, device.Values, overwrite); err != nil {
			return false, fmt.Errorf("Speichern für Gerät %q fehlgeschlagen: %v", device.Label, err)
		}
	}
	return anyNew, nil
}
