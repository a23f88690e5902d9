package application

import (
	"strings"
	"testing"

	ingest "energiebuch/internal/ingest/domain"
	masterdata "energiebuch/internal/masterdata/domain"
)

func pvAndBattery() []masterdata.Device {
	return []masterdata.Device{
		{ID: "pv-1", InstallationID: "haus-1", Label: "Dach", Type: masterdata.DeviceTypePVString},
		{ID: "bat-1", InstallationID: "haus-1", Label: "Speicher", Type: masterdata.DeviceTypeBattery},
	}
}

func floatValue(t *testing.T, v *float64) float64 {
	t.Helper()
	if v == nil {
		t.Fatal("expected a value, got nil")
	}
	return *v
}

func TestReconcileFullRow(t *testing.T) {
	reconciler := NewRowReconciler(pvAndBattery())

	result, err := reconciler.Reconcile(RowInput{
		"Jahr":                   "2026",
		"Monat":                  "3",
		"Dach_kWh":               "500",
		"Speicher_Ladung_kWh":    "100",
		"Speicher_Entladung_kWh": "80",
		"Einspeisung_kWh":        "200",
		"Netzbezug_kWh":          "150",
		"Sonnenstunden":          "120,5",
		"Temperatur_Grad":        "-2,5",
		"Notiz":                  "Maerz",
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Year != 2026 || result.Month != 3 {
		t.Fatalf("period = %d-%d", result.Year, result.Month)
	}

	if len(result.Devices) != 2 {
		t.Fatalf("devices = %d, want 2", len(result.Devices))
	}
	if result.Devices[0].DeviceID != "pv-1" || result.Devices[1].DeviceID != "bat-1" {
		t.Fatalf("device order = %s, %s", result.Devices[0].DeviceID, result.Devices[1].DeviceID)
	}
	if got := result.Devices[0].Values[ingest.FieldErzeugungKWh].Num; got != 500 {
		t.Fatalf("pv erzeugung = %v", got)
	}
	if got := result.Devices[1].Values[ingest.FieldEntladungKWh].Num; got != 80 {
		t.Fatalf("battery entladung = %v", got)
	}

	summary := result.Summary
	if floatValue(t, summary.PVErzeugungKWh) != 500 {
		t.Fatalf("summary erzeugung = %v", *summary.PVErzeugungKWh)
	}
	if floatValue(t, summary.EigenverbrauchDirektKWh) != 200 {
		t.Fatalf("eigenverbrauch direkt = %v, want 500-200-100", *summary.EigenverbrauchDirektKWh)
	}
	if floatValue(t, summary.EigenverbrauchKWh) != 280 {
		t.Fatalf("eigenverbrauch = %v, want 200+80", *summary.EigenverbrauchKWh)
	}
	if floatValue(t, summary.VerbrauchGesamtKWh) != 430 {
		t.Fatalf("verbrauch gesamt = %v, want 280+150", *summary.VerbrauchGesamtKWh)
	}
	if floatValue(t, summary.TemperaturGrad) != -2.5 {
		t.Fatalf("temperatur = %v", *summary.TemperaturGrad)
	}
	if summary.Notiz != "Maerz" {
		t.Fatalf("notiz = %q", summary.Notiz)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", result.Warnings)
	}
}

func TestReconcileNoDerivedFiguresWithoutGeneration(t *testing.T) {
	reconciler := NewRowReconciler(pvAndBattery())

	result, err := reconciler.Reconcile(RowInput{
		"Jahr":          "2026",
		"Monat":         "4",
		"Netzbezug_kWh": "300",
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	summary := result.Summary
	if summary.PVErzeugungKWh != nil || summary.EigenverbrauchKWh != nil || summary.VerbrauchGesamtKWh != nil {
		t.Fatalf("derived figures must stay absent without generation: %+v", summary)
	}
	if floatValue(t, summary.NetzbezugKWh) != 300 {
		t.Fatalf("netzbezug = %v", *summary.NetzbezugKWh)
	}
}

func TestReconcileLegacyRedundantWithinTolerance(t *testing.T) {
	reconciler := NewRowReconciler(pvAndBattery())

	result, err := reconciler.Reconcile(RowInput{
		"Jahr":             "2026",
		"Monat":            "5",
		"Dach_kWh":         "500",
		"PV_Erzeugung_kWh": "500,4",
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if floatValue(t, result.Summary.PVErzeugungKWh) != 500 {
		t.Fatalf("device sum must win: %v", *result.Summary.PVErzeugungKWh)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "redundant") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
}

func TestReconcileLegacyConflictBeyondTolerance(t *testing.T) {
	reconciler := NewRowReconciler(pvAndBattery())

	_, err := reconciler.Reconcile(RowInput{
		"Jahr":             "2026",
		"Monat":            "5",
		"Dach_kWh":         "500",
		"PV_Erzeugung_kWh": "501",
	})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if !strings.Contains(err.Error(), "Widerspruch") || !strings.Contains(err.Error(), "PV_Erzeugung_kWh") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReconcileLegacyStaleWithConfiguredDevices(t *testing.T) {
	reconciler := NewRowReconciler(pvAndBattery())

	// Devices exist but the row supplies only the legacy column.
	_, err := reconciler.Reconcile(RowInput{
		"Jahr":             "2026",
		"Monat":            "6",
		"PV_Erzeugung_kWh": "400",
	})
	if err == nil {
		t.Fatal("expected stale column error")
	}
	if !strings.Contains(err.Error(), "veraltete Spalte") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReconcileLegacyAcceptedWithoutDevices(t *testing.T) {
	reconciler := NewRowReconciler(nil)

	result, err := reconciler.Reconcile(RowInput{
		"Jahr":             "2026",
		"Monat":            "7",
		"PV_Erzeugung_kWh": "400",
		"Einspeisung_kWh":  "100",
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if floatValue(t, result.Summary.PVErzeugungKWh) != 400 {
		t.Fatalf("legacy value must feed the summary: %v", *result.Summary.PVErzeugungKWh)
	}
	if floatValue(t, result.Summary.EigenverbrauchDirektKWh) != 300 {
		t.Fatalf("derived = %v, want 400-100", *result.Summary.EigenverbrauchDirektKWh)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "keine PV-Anlage konfiguriert") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
	if len(result.Devices) != 0 {
		t.Fatalf("no device values expected: %v", result.Devices)
	}
}

func TestReconcileRejectsBadPeriods(t *testing.T) {
	reconciler := NewRowReconciler(pvAndBattery())

	cases := []RowInput{
		{"Monat": "3"},
		{"Jahr": "2026"},
		{"Jahr": "1999", "Monat": "12"},
		{"Jahr": "2026", "Monat": "13"},
		{"Jahr": "2026", "Monat": "0"},
		{"Jahr": "zwei", "Monat": "3"},
		{"Jahr": "2026,5", "Monat": "3"},
	}
	for _, row := range cases {
		if _, err := reconciler.Reconcile(row); err == nil {
			t.Errorf("row %v accepted, want period error", row)
		}
	}
}

func TestReconcileRejectsNegativeMeter(t *testing.T) {
	reconciler := NewRowReconciler(pvAndBattery())

	_, err := reconciler.Reconcile(RowInput{
		"Jahr":            "2026",
		"Monat":           "3",
		"Einspeisung_kWh": "-1",
	})
	if err == nil || !strings.Contains(err.Error(), "negativer Wert") {
		t.Fatalf("expected negative meter error, got %v", err)
	}
}

func TestReconcileRejectsNonFiniteCells(t *testing.T) {
	reconciler := NewRowReconciler(pvAndBattery())

	// A NaN cell must fail the row outright; were it accepted, the
	// legacy tolerance comparison against it would never fire.
	rows := []RowInput{
		{"Jahr": "2026", "Monat": "3", "Dach_kWh": "NaN", "PV_Erzeugung_kWh": "500"},
		{"Jahr": "2026", "Monat": "3", "Einspeisung_kWh": "Inf"},
		{"Jahr": "2026", "Monat": "3", "Sonnenstunden": "-Inf"},
	}
	for _, row := range rows {
		_, err := reconciler.Reconcile(row)
		if err == nil {
			t.Errorf("row %v accepted, want error", row)
			continue
		}
		if !strings.Contains(err.Error(), "ungültiger Wert") {
			t.Errorf("row %v error = %v", row, err)
		}
	}
}

func TestReconcileIgnoresUnknownColumns(t *testing.T) {
	reconciler := NewRowReconciler(pvAndBattery())

	result, err := reconciler.Reconcile(RowInput{
		"Jahr":       "2026",
		"Monat":      "8",
		"Dach_kWh":   "300",
		"Garage_kWh": "99",
		"Kommentar":  "frei",
	})
	if err != nil {
		t.Fatalf("unknown columns must not error: %v", err)
	}
	if len(result.Devices) != 1 || result.Devices[0].DeviceID != "pv-1" {
		t.Fatalf("devices = %v", result.Devices)
	}
}
