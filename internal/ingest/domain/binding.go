package ingest

import (
	"strings"

	masterdata "energiebuch/internal/masterdata/domain"
)

// Reserved base headers carry period, meter, note and weather columns.
// They are never bound to a device.
const (
	HeaderJahr           = "Jahr"
	HeaderMonat          = "Monat"
	HeaderEinspeisung    = "Einspeisung_kWh"
	HeaderNetzbezug      = "Netzbezug_kWh"
	HeaderNotiz          = "Notiz"
	HeaderSonnenstunden  = "Sonnenstunden"
	HeaderTemperaturGrad = "Temperatur_Grad"

	// Legacy flat columns predating per-device columns.
	HeaderLegacyPVErzeugung       = "PV_Erzeugung_kWh"
	HeaderLegacyBatterieLadung    = "Batterie_Ladung_kWh"
	HeaderLegacyBatterieEntladung = "Batterie_Entladung_kWh"
)

var reservedHeaders = map[string]struct{}{
	HeaderJahr:                    {},
	HeaderMonat:                   {},
	HeaderEinspeisung:             {},
	HeaderNetzbezug:               {},
	HeaderNotiz:                   {},
	HeaderSonnenstunden:           {},
	HeaderTemperaturGrad:          {},
	HeaderLegacyPVErzeugung:       {},
	HeaderLegacyBatterieLadung:    {},
	HeaderLegacyBatterieEntladung: {},
}

// IsReservedHeader reports whether the header is a base column excluded
// from device binding.
func IsReservedHeader(header string) bool {
	_, ok := reservedHeaders[header]
	return ok
}

// BoundDevice carries a device together with its precomputed normal
// forms so the per-row binder never re-normalizes labels.
type BoundDevice struct {
	Device    masterdata.Device
	Sanitized string
	MatchNorm string
}

// PrepareDevices precomputes normal forms, preserving input order.
// Input order decides ties between equally-prefixed labels.
func PrepareDevices(devices []masterdata.Device) []BoundDevice {
	prepared := make([]BoundDevice, 0, len(devices))
	for _, device := range devices {
		prepared = append(prepared, BoundDevice{
			Device:    device,
			Sanitized: SanitizeLabel(device.Label),
			MatchNorm: MatchNormalize(device.Label),
		})
	}
	return prepared
}

// Binding is the result of resolving one column header to a device and
// the suffix naming the targeted field.
type Binding struct {
	Device *BoundDevice
	Suffix string
}

// BindHeader resolves a header through the two-strategy cascade:
// a sanitized-label prefix match first, then a suffix-vocabulary match
// against match-normalized labels. Reserved headers and headers matching
// no device stay unbound. First success wins; a bound header is never
// reconsidered by the later strategy.
func BindHeader(header string, devices []BoundDevice) (Binding, bool) {
	if header == "" || IsReservedHeader(header) {
		return Binding{}, false
	}

	for i := range devices {
		device := &devices[i]
		if device.Sanitized == "" {
			continue
		}
		if header == device.Sanitized {
			return Binding{Device: device, Suffix: ""}, true
		}
		if strings.HasPrefix(header, device.Sanitized+"_") {
			return Binding{Device: device, Suffix: header[len(device.Sanitized)+1:]}, true
		}
	}

	for _, token := range SuffixVocabulary {
		tail := "_" + token
		if !strings.HasSuffix(header, tail) {
			continue
		}
		prefix := MatchNormalize(header[:len(header)-len(tail)])
		if prefix == "" {
			continue
		}
		for i := range devices {
			device := &devices[i]
			if device.MatchNorm != "" && device.MatchNorm == prefix {
				return Binding{Device: device, Suffix: token}, true
			}
		}
	}

	return Binding{}, false
}
