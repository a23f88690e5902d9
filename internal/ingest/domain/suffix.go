package ingest

// SuffixVocabulary lists every known field suffix across all device
// types, ordered by descending length so that the longest applicable
// suffix always matches before a shorter one that it contains
// ("Ladung_Extern_kWh" before "Ladung_kWh"). The ordering is asserted
// by a test.
var SuffixVocabulary = []string{
	"Ladung_Extern_Euro",
	"Sonderkosten_Notiz",
	"Ladung_Extern_kWh",
	"Sonderkosten_Euro",
	"Erzeugung_kWh",
	"Entladung_kWh",
	"Verbrauch_kWh",
	"Ladevorgaenge",
	"Ladung_kWh",
	"kWh",
	"km",
}
