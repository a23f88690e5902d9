package ingest

import "context"

// MonthlyValues is the sparse field map of one device month. Only
// fields actually supplied by an import are present.
type MonthlyValues map[FieldKey]Value

// Clone returns an independent copy.
func (v MonthlyValues) Clone() MonthlyValues {
	if v == nil {
		return nil
	}
	clone := make(MonthlyValues, len(v))
	for key, value := range v {
		clone[key] = value
	}
	return clone
}

// ValidPeriod reports whether (year, month) lies inside the supported
// range.
func ValidPeriod(year, month int) bool {
	return year >= 2000 && year <= 2100 && month >= 1 && month <= 12
}

// ValueStore persists per-device monthly values keyed by
// (device id, year, month). Merge is field-granular: with overwrite the
// supplied fields replace stored ones, without it they only fill absent
// keys. Stored fields missing from the supplied set are kept either way.
type ValueStore interface {
	// Get returns the stored field map or nil when no record exists.
	Get(ctx context.Context, deviceID string, year, month int) (MonthlyValues, error)
	Merge(ctx context.Context, deviceID string, year, month int, values MonthlyValues, overwrite bool) error
}
