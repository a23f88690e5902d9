package application

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	ingest "energiebuch/internal/ingest/domain"
	masterdata "energiebuch/internal/masterdata/domain"
)

// legacyTolerance is the absolute deviation within which a legacy flat
// column is considered redundant with the per-device sum.
const legacyTolerance = 0.5

// RowInput is one upload row: header text to raw cell text. Column
// order is irrelevant, only header text matters.
type RowInput map[string]string

// DeviceValues groups the accepted values of one device in one row.
type DeviceValues struct {
	DeviceID string
	Label    string
	Values   ingest.MonthlyValues
}

// PeriodSummary carries the per-row meter readings, aggregate sums and
// derived quantities for the period-level record. It is returned to the
// caller and never persisted by the engine itself.
type PeriodSummary struct {
	InstallationID          string   `json:"anlage"`
	Year                    int      `json:"jahr"`
	Month                   int      `json:"monat"`
	EinspeisungKWh          *float64 `json:"einspeisung_kwh,omitempty"`
	NetzbezugKWh            *float64 `json:"netzbezug_kwh,omitempty"`
	PVErzeugungKWh          *float64 `json:"pv_erzeugung_kwh,omitempty"`
	BatterieLadungKWh       *float64 `json:"batterie_ladung_kwh,omitempty"`
	BatterieEntladungKWh    *float64 `json:"batterie_entladung_kwh,omitempty"`
	EigenverbrauchDirektKWh *float64 `json:"eigenverbrauch_direkt_kwh,omitempty"`
	EigenverbrauchKWh       *float64 `json:"eigenverbrauch_kwh,omitempty"`
	VerbrauchGesamtKWh      *float64 `json:"verbrauch_gesamt_kwh,omitempty"`
	Sonnenstunden           *float64 `json:"sonnenstunden,omitempty"`
	TemperaturGrad          *float64 `json:"temperatur_grad,omitempty"`
	Notiz                   string   `json:"notiz,omitempty"`
}

// RowResult is the outcome of reconciling one accepted row.
type RowResult struct {
	Year     int
	Month    int
	Devices  []DeviceValues
	Summary  PeriodSummary
	Warnings []string
}

// RowReconciler binds, parses and cross-validates one upload row at a
// time. It is stateless between rows.
type RowReconciler struct {
	devices    []ingest.BoundDevice
	hasPV      bool
	hasStorage bool
}

// NewRowReconciler precomputes normal forms for the installation's
// devices. Device input order decides binding ties.
func NewRowReconciler(devices []masterdata.Device) *RowReconciler {
	reconciler := &RowReconciler{devices: ingest.PrepareDevices(devices)}
	for _, device := range devices {
		if device.ProducesPV() {
			reconciler.hasPV = true
		}
		if device.StoresEnergy() {
			reconciler.hasStorage = true
		}
	}
	return reconciler
}

// rowAggregate accumulates the cross-device sums of one row.
type rowAggregate struct {
	sum      float64
	supplied bool
}

func (a *rowAggregate) add(v float64) {
	a.sum += v
	a.supplied = true
}

// Reconcile processes one row: every header is bound and parsed, values
// are grouped per device, legacy flat columns are cross-validated
// against the per-device sums, and the derived self-consumption figures
// are computed. A returned error rejects the row; the caller tags it
// with the row number.
func (r *RowReconciler) Reconcile(row RowInput) (*RowResult, error) {
	year, month, err := parsePeriod(row)
	if err != nil {
		return nil, err
	}

	headers := make([]string, 0, len(row))
	for header := range row {
		headers = append(headers, header)
	}
	sort.Strings(headers)

	var einspeisung, netzbezug *float64
	var sonnenstunden, temperatur *float64
	var legacyPV, legacyLadung, legacyEntladung *float64
	var notiz string
	var generation, charge, discharge rowAggregate
	valuesByDevice := make(map[string]ingest.MonthlyValues)

	for _, header := range headers {
		raw := row[header]
		switch header {
		case ingest.HeaderJahr, ingest.HeaderMonat:
			continue
		case ingest.HeaderNotiz:
			notiz = strings.TrimSpace(raw)
			continue
		case ingest.HeaderEinspeisung:
			if einspeisung, err = parseMeterColumn(header, raw); err != nil {
				return nil, err
			}
			continue
		case ingest.HeaderNetzbezug:
			if netzbezug, err = parseMeterColumn(header, raw); err != nil {
				return nil, err
			}
			continue
		case ingest.HeaderSonnenstunden:
			if sonnenstunden, err = parseOptionalNumber(header, raw); err != nil {
				return nil, err
			}
			continue
		case ingest.HeaderTemperaturGrad:
			if temperatur, err = parseOptionalNumber(header, raw); err != nil {
				return nil, err
			}
			continue
		case ingest.HeaderLegacyPVErzeugung:
			if legacyPV, err = parseMeterColumn(header, raw); err != nil {
				return nil, err
			}
			continue
		case ingest.HeaderLegacyBatterieLadung:
			if legacyLadung, err = parseMeterColumn(header, raw); err != nil {
				return nil, err
			}
			continue
		case ingest.HeaderLegacyBatterieEntladung:
			if legacyEntladung, err = parseMeterColumn(header, raw); err != nil {
				return nil, err
			}
			continue
		}

		binding, ok := ingest.BindHeader(header, r.devices)
		if !ok {
			// Stray or legacy columns are tolerated, not errors.
			continue
		}
		device := binding.Device.Device
		fieldKey, contribution, ok := ingest.ResolveField(device.Type, device.Category, binding.Suffix)
		if !ok {
			continue
		}
		value, present, err := ingest.ParseValue(fieldKey, header, raw)
		if err != nil {
			return nil, err
		}
		if !present {
			continue
		}
		values := valuesByDevice[device.ID]
		if values == nil {
			values = make(ingest.MonthlyValues)
			valuesByDevice[device.ID] = values
		}
		values[fieldKey] = value

		switch contribution {
		case ingest.ContributionGeneration:
			generation.add(value.Num)
		case ingest.ContributionCharge:
			charge.add(value.Num)
		case ingest.ContributionDischarge:
			discharge.add(value.Num)
		}
	}

	var warnings []string
	warn := func(message string) { warnings = append(warnings, message) }

	genSum, genOK, err := reconcileLegacy(&generation, legacyPV, r.hasPV,
		ingest.HeaderLegacyPVErzeugung, "keine PV-Anlage konfiguriert", warn)
	if err != nil {
		return nil, err
	}
	chargeSum, chargeOK, err := reconcileLegacy(&charge, legacyLadung, r.hasStorage,
		ingest.HeaderLegacyBatterieLadung, "kein Speicher konfiguriert", warn)
	if err != nil {
		return nil, err
	}
	dischargeSum, dischargeOK, err := reconcileLegacy(&discharge, legacyEntladung, r.hasStorage,
		ingest.HeaderLegacyBatterieEntladung, "kein Speicher konfiguriert", warn)
	if err != nil {
		return nil, err
	}

	summary := PeriodSummary{
		Year:           year,
		Month:          month,
		EinspeisungKWh: einspeisung,
		NetzbezugKWh:   netzbezug,
		Sonnenstunden:  sonnenstunden,
		TemperaturGrad: temperatur,
		Notiz:          notiz,
	}
	if genOK {
		summary.PVErzeugungKWh = ptr(genSum)
	}
	if chargeOK {
		summary.BatterieLadungKWh = ptr(chargeSum)
	}
	if dischargeOK {
		summary.BatterieEntladungKWh = ptr(dischargeSum)
	}

	// Derived self-consumption figures exist only when a generation
	// figure does.
	if genOK {
		direkt := genSum - deref(einspeisung) - chargeSum
		eigen := direkt + dischargeSum
		summary.EigenverbrauchDirektKWh = ptr(direkt)
		summary.EigenverbrauchKWh = ptr(eigen)
		summary.VerbrauchGesamtKWh = ptr(eigen + deref(netzbezug))
	}

	result := &RowResult{
		Year:     year,
		Month:    month,
		Summary:  summary,
		Warnings: warnings,
	}
	for i := range r.devices {
		device := r.devices[i].Device
		if values, ok := valuesByDevice[device.ID]; ok {
			result.Devices = append(result.Devices, DeviceValues{
				DeviceID: device.ID,
				Label:    device.Label,
				Values:   values,
			})
		}
	}
	return result, nil
}

// reconcileLegacy resolves one legacy flat column against the
// corresponding per-device sum. Returns the effective value and whether
// one was supplied at all.
func reconcileLegacy(agg *rowAggregate, legacy *float64, hasDevice bool, header, noDeviceNote string, warn func(string)) (float64, bool, error) {
	if legacy == nil {
		return agg.sum, agg.supplied, nil
	}
	if agg.supplied {
		if diff := abs(*legacy - agg.sum); diff > legacyTolerance {
			return 0, false, fmt.Errorf("Widerspruch in Spalte %q: %s kWh gegenüber %s kWh aus den Gerätespalten",
				header, formatNumber(*legacy), formatNumber(agg.sum))
		}
		warn(fmt.Sprintf("Spalte %q ist redundant, die Gerätespalten werden verwendet", header))
		return agg.sum, true, nil
	}
	if hasDevice {
		return 0, false, fmt.Errorf("veraltete Spalte %q: für diese Anlage sind bereits Geräte konfiguriert", header)
	}
	warn(fmt.Sprintf("Spalte %q übernommen, %s", header, noDeviceNote))
	return *legacy, true, nil
}

func parsePeriod(row RowInput) (int, int, error) {
	year, err := parseIntColumn(row, ingest.HeaderJahr)
	if err != nil {
		return 0, 0, err
	}
	month, err := parseIntColumn(row, ingest.HeaderMonat)
	if err != nil {
		return 0, 0, err
	}
	if !ingest.ValidPeriod(year, month) {
		return 0, 0, fmt.Errorf("ungültiger Zeitraum %d-%02d", year, month)
	}
	return year, month, nil
}

func parseIntColumn(row RowInput, header string) (int, error) {
	raw, ok := row[header]
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("fehlende Spalte %q", header)
	}
	num, err := ingest.ParseNumber(header, raw)
	if err != nil {
		return 0, err
	}
	truncated := int(num)
	if float64(truncated) != num {
		return 0, fmt.Errorf("ungültiger Wert %q in Spalte %q", strings.TrimSpace(raw), header)
	}
	return truncated, nil
}

// parseMeterColumn parses a base or legacy measurement column, which
// must be non-negative. Blank cells stay absent.
func parseMeterColumn(header, raw string) (*float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	num, err := ingest.ParseNumber(header, trimmed)
	if err != nil {
		return nil, err
	}
	if num < 0 {
		return nil, fmt.Errorf("negativer Wert %q in Spalte %q", trimmed, header)
	}
	return &num, nil
}

// parseOptionalNumber parses a weather column; negative values are
// allowed.
func parseOptionalNumber(header, raw string) (*float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	num, err := ingest.ParseNumber(header, trimmed)
	if err != nil {
		return nil, err
	}
	return &num, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func ptr(v float64) *float64 { return &v }

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
