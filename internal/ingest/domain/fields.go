package ingest

import (
	masterdata "energiebuch/internal/masterdata/domain"
)

// FieldKey is the canonical, typed name of one measured quantity
// persisted for a device month.
type FieldKey string

const (
	FieldErzeugungKWh      FieldKey = "erzeugung_kwh"
	FieldLadungKWh         FieldKey = "ladung_kwh"
	FieldEntladungKWh      FieldKey = "entladung_kwh"
	FieldLadungExternKWh   FieldKey = "ladung_extern_kwh"
	FieldLadungExternEuro  FieldKey = "ladung_extern_euro"
	FieldKilometer         FieldKey = "kilometer"
	FieldLadevorgaenge     FieldKey = "ladevorgaenge"
	FieldVerbrauchKWh      FieldKey = "verbrauch_kwh"
	FieldSonderkostenEuro  FieldKey = "sonderkosten_euro"
	FieldSonderkostenNotiz FieldKey = "sonderkosten_notiz"
)

// IsText reports whether the field carries free text instead of a number.
func (k FieldKey) IsText() bool {
	return k == FieldSonderkostenNotiz
}

// IsMeasurement reports whether the field is a physical measurement and
// therefore must not be negative.
func (k FieldKey) IsMeasurement() bool {
	switch k {
	case FieldErzeugungKWh, FieldLadungKWh, FieldEntladungKWh,
		FieldLadungExternKWh, FieldLadungExternEuro, FieldKilometer,
		FieldVerbrauchKWh, FieldSonderkostenEuro:
		return true
	default:
		return false
	}
}

// Contribution classifies which row aggregate a parsed value feeds.
type Contribution int

const (
	ContributionNone Contribution = iota
	ContributionGeneration
	ContributionCharge
	ContributionDischarge
)

// ResolveField maps a bound suffix to the persisted field key for the
// given device type (and, for type other, category). The empty suffix is
// the device's default measurement: generation for producers, charge for
// storage. Unknown combinations return ok=false and are ignored by the
// binder's caller.
func ResolveField(deviceType masterdata.DeviceType, category masterdata.OtherCategory, suffix string) (FieldKey, Contribution, bool) {
	switch suffix {
	case "Sonderkosten_Euro":
		return FieldSonderkostenEuro, ContributionNone, true
	case "Sonderkosten_Notiz":
		return FieldSonderkostenNotiz, ContributionNone, true
	}

	switch deviceType {
	case masterdata.DeviceTypePVString, masterdata.DeviceTypeBalconyPV, masterdata.DeviceTypeInverter:
		return resolveProducer(suffix)
	case masterdata.DeviceTypeBattery:
		return resolveStorage(suffix)
	case masterdata.DeviceTypeEV:
		switch suffix {
		case "Ladung_kWh":
			return FieldLadungKWh, ContributionNone, true
		case "Ladung_Extern_kWh":
			return FieldLadungExternKWh, ContributionNone, true
		case "Ladung_Extern_Euro":
			return FieldLadungExternEuro, ContributionNone, true
		case "km":
			return FieldKilometer, ContributionNone, true
		case "Ladevorgaenge":
			return FieldLadevorgaenge, ContributionNone, true
		}
	case masterdata.DeviceTypeWallbox:
		switch suffix {
		case "Ladung_kWh":
			return FieldLadungKWh, ContributionNone, true
		case "Ladevorgaenge":
			return FieldLadevorgaenge, ContributionNone, true
		}
	case masterdata.DeviceTypeHeatPump:
		switch suffix {
		case "Verbrauch_kWh", "kWh":
			return FieldVerbrauchKWh, ContributionNone, true
		}
	case masterdata.DeviceTypeOther:
		switch category {
		case masterdata.CategoryProducer:
			return resolveProducer(suffix)
		case masterdata.CategoryStorage:
			return resolveStorage(suffix)
		case masterdata.CategoryConsumer:
			switch suffix {
			case "Verbrauch_kWh", "kWh":
				return FieldVerbrauchKWh, ContributionNone, true
			}
		}
	}
	return "", ContributionNone, false
}

func resolveProducer(suffix string) (FieldKey, Contribution, bool) {
	switch suffix {
	case "", "kWh", "Erzeugung_kWh":
		return FieldErzeugungKWh, ContributionGeneration, true
	}
	return "", ContributionNone, false
}

func resolveStorage(suffix string) (FieldKey, Contribution, bool) {
	switch suffix {
	case "", "Ladung_kWh":
		return FieldLadungKWh, ContributionCharge, true
	case "Entladung_kWh":
		return FieldEntladungKWh, ContributionDischarge, true
	}
	return "", ContributionNone, false
}
