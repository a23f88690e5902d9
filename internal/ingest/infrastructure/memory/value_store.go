package memory

import (
	"context"
	"fmt"
	"sync"

	ingest "energiebuch/internal/ingest/domain"
)

// ValueStore is an in-memory value store for demo/testing.
type ValueStore struct {
	mu   sync.RWMutex
	data map[string]ingest.MonthlyValues
}

// NewValueStore constructs a store.
func NewValueStore() *ValueStore {
	return &ValueStore{data: make(map[string]ingest.MonthlyValues)}
}

// Get loads the field map of one device month, or nil when absent.
func (s *ValueStore) Get(ctx context.Context, deviceID string, year, month int) (ingest.MonthlyValues, error) {
	_ = ctx
	if deviceID == "" {
		return nil, ingest.ErrEmptyDeviceID
	}
	if !ingest.ValidPeriod(year, month) {
		return nil, ingest.ErrInvalidPeriod
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	values, ok := s.data[recordKey(deviceID, year, month)]
	if !ok {
		return nil, nil
	}
	return values.Clone(), nil
}

// Merge applies the field-granular merge policy.
func (s *ValueStore) Merge(ctx context.Context, deviceID string, year, month int, values ingest.MonthlyValues, overwrite bool) error {
	_ = ctx
	if deviceID == "" {
		return ingest.ErrEmptyDeviceID
	}
	if !ingest.ValidPeriod(year, month) {
		return ingest.ErrInvalidPeriod
	}
	if values == nil {
		return ingest.ErrNilValues
	}

	key := recordKey(deviceID, year, month)
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.data[key]
	if !ok {
		s.data[key] = values.Clone()
		return nil
	}
	for fieldKey, value := range values {
		if _, present := existing[fieldKey]; present && !overwrite {
			continue
		}
		existing[fieldKey] = value
	}
	return nil
}

func recordKey(deviceID string, year, month int) string {
	return fmt.Sprintf("%s:%04d-%02d", deviceID, year, month)
}
