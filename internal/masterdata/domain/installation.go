package masterdata

import (
	"context"
	"errors"
	"time"
)

// Installation represents one household site owning devices.
type Installation struct {
	ID        string
	TenantID  string
	Name      string
	Timezone  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks installation invariants.
func (i Installation) Validate() error {
	if i.ID == "" {
		return errors.New("installation: empty id")
	}
	if i.TenantID == "" {
		return errors.New("installation: empty tenant id")
	}
	if i.Name == "" {
		return errors.New("installation: empty name")
	}
	return nil
}

// InstallationRepository manages installation persistence.
type InstallationRepository interface {
	Get(ctx context.Context, id string) (*Installation, error)
}
