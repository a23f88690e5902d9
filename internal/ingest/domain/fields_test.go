package ingest

import (
	"testing"

	masterdata "energiebuch/internal/masterdata/domain"
)

func TestResolveFieldProducers(t *testing.T) {
	for _, deviceType := range []masterdata.DeviceType{
		masterdata.DeviceTypePVString, masterdata.DeviceTypeBalconyPV, masterdata.DeviceTypeInverter,
	} {
		for _, suffix := range []string{"", "kWh", "Erzeugung_kWh"} {
			key, contribution, ok := ResolveField(deviceType, "", suffix)
			if !ok {
				t.Errorf("%s suffix %q unresolved", deviceType, suffix)
				continue
			}
			if key != FieldErzeugungKWh || contribution != ContributionGeneration {
				t.Errorf("%s suffix %q = (%s, %d)", deviceType, suffix, key, contribution)
			}
		}
		if _, _, ok := ResolveField(deviceType, "", "Entladung_kWh"); ok {
			t.Errorf("%s must not accept Entladung_kWh", deviceType)
		}
	}
}

func TestResolveFieldBattery(t *testing.T) {
	cases := []struct {
		suffix       string
		key          FieldKey
		contribution Contribution
	}{
		{"", FieldLadungKWh, ContributionCharge},
		{"Ladung_kWh", FieldLadungKWh, ContributionCharge},
		{"Entladung_kWh", FieldEntladungKWh, ContributionDischarge},
	}
	for _, tc := range cases {
		key, contribution, ok := ResolveField(masterdata.DeviceTypeBattery, "", tc.suffix)
		if !ok || key != tc.key || contribution != tc.contribution {
			t.Errorf("battery suffix %q = (%s, %d, %v), want (%s, %d)", tc.suffix, key, contribution, ok, tc.key, tc.contribution)
		}
	}
	if _, _, ok := ResolveField(masterdata.DeviceTypeBattery, "", "km"); ok {
		t.Error("battery must not accept km")
	}
}

func TestResolveFieldEVAndWallbox(t *testing.T) {
	evSuffixes := map[string]FieldKey{
		"Ladung_kWh":         FieldLadungKWh,
		"Ladung_Extern_kWh":  FieldLadungExternKWh,
		"Ladung_Extern_Euro": FieldLadungExternEuro,
		"km":                 FieldKilometer,
		"Ladevorgaenge":      FieldLadevorgaenge,
	}
	for suffix, want := range evSuffixes {
		key, contribution, ok := ResolveField(masterdata.DeviceTypeEV, "", suffix)
		if !ok || key != want {
			t.Errorf("ev suffix %q = (%s, %v), want %s", suffix, key, ok, want)
		}
		if contribution != ContributionNone {
			t.Errorf("ev suffix %q must not feed row aggregates", suffix)
		}
	}
	// EV charge comes from the grid side and never counts as storage.
	if _, _, ok := ResolveField(masterdata.DeviceTypeEV, "", "Entladung_kWh"); ok {
		t.Error("ev must not accept Entladung_kWh")
	}

	for _, suffix := range []string{"Ladung_kWh", "Ladevorgaenge"} {
		if _, _, ok := ResolveField(masterdata.DeviceTypeWallbox, "", suffix); !ok {
			t.Errorf("wallbox suffix %q unresolved", suffix)
		}
	}
	if _, _, ok := ResolveField(masterdata.DeviceTypeWallbox, "", "km"); ok {
		t.Error("wallbox must not accept km")
	}
}

func TestResolveFieldConsumers(t *testing.T) {
	for _, suffix := range []string{"Verbrauch_kWh", "kWh"} {
		key, _, ok := ResolveField(masterdata.DeviceTypeHeatPump, "", suffix)
		if !ok || key != FieldVerbrauchKWh {
			t.Errorf("heat pump suffix %q = (%s, %v)", suffix, key, ok)
		}
		key, _, ok = ResolveField(masterdata.DeviceTypeOther, masterdata.CategoryConsumer, suffix)
		if !ok || key != FieldVerbrauchKWh {
			t.Errorf("other/consumer suffix %q = (%s, %v)", suffix, key, ok)
		}
	}
}

func TestResolveFieldOtherFollowsCategory(t *testing.T) {
	key, contribution, ok := ResolveField(masterdata.DeviceTypeOther, masterdata.CategoryProducer, "kWh")
	if !ok || key != FieldErzeugungKWh || contribution != ContributionGeneration {
		t.Fatalf("other/producer kWh = (%s, %d, %v)", key, contribution, ok)
	}
	key, contribution, ok = ResolveField(masterdata.DeviceTypeOther, masterdata.CategoryStorage, "Entladung_kWh")
	if !ok || key != FieldEntladungKWh || contribution != ContributionDischarge {
		t.Fatalf("other/storage Entladung_kWh = (%s, %d, %v)", key, contribution, ok)
	}
	if _, _, ok := ResolveField(masterdata.DeviceTypeOther, "", "kWh"); ok {
		t.Fatal("other without category must not resolve")
	}
}

func TestResolveFieldSonderkostenForEveryType(t *testing.T) {
	types := []masterdata.DeviceType{
		masterdata.DeviceTypePVString, masterdata.DeviceTypeBattery, masterdata.DeviceTypeEV,
		masterdata.DeviceTypeHeatPump, masterdata.DeviceTypeWallbox, masterdata.DeviceTypeInverter,
		masterdata.DeviceTypeBalconyPV, masterdata.DeviceTypeOther,
	}
	for _, deviceType := range types {
		key, contribution, ok := ResolveField(deviceType, "", "Sonderkosten_Euro")
		if !ok || key != FieldSonderkostenEuro || contribution != ContributionNone {
			t.Errorf("%s Sonderkosten_Euro = (%s, %d, %v)", deviceType, key, contribution, ok)
		}
		key, _, ok = ResolveField(deviceType, "", "Sonderkosten_Notiz")
		if !ok || key != FieldSonderkostenNotiz {
			t.Errorf("%s Sonderkosten_Notiz = (%s, %v)", deviceType, key, ok)
		}
	}
}
