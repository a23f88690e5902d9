package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	masterdata "energiebuch/internal/masterdata/domain"
)

const defaultInstallationsTable = "installations"

// InstallationRepository is a Postgres implementation for installations.
type InstallationRepository struct {
	db    DBTX
	table string
}

// NewInstallationRepository constructs a repository.
func NewInstallationRepository(db DBTX, opts ...InstallationOption) *InstallationRepository {
	repo := &InstallationRepository{db: db, table: defaultInstallationsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// InstallationOption configures the repository.
type InstallationOption func(*InstallationRepository)

// WithInstallationTable overrides the default table name.
func WithInstallationTable(table string) InstallationOption {
	return func(repo *InstallationRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Get loads an installation by id.
func (r *InstallationRepository) Get(ctx context.Context, id string) (*masterdata.Installation, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("installation repo: nil db")
	}
	if id == "" {
		return nil, errors.New("installation repo: empty id")
	}

	query := fmt.Sprintf(`
SELECT id, tenant_id, name, timezone, created_at, updated_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	var installation masterdata.Installation
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&installation.ID,
		&installation.TenantID,
		&installation.Name,
		&installation.Timezone,
		&installation.CreatedAt,
		&installation.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	installation.CreatedAt = installation.CreatedAt.UTC()
	installation.UpdatedAt = installation.UpdatedAt.UTC()
	if err := installation.Validate(); err != nil {
		return nil, fmt.Errorf("installation repo: row %q: %w", installation.ID, err)
	}
	return &installation, nil
}
