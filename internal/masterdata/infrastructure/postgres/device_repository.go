package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	masterdata "energiebuch/internal/masterdata/domain"
)

const defaultDevicesTable = "devices"

// DeviceRepository is a Postgres implementation for devices.
type DeviceRepository struct {
	db    DBTX
	table string
}

// NewDeviceRepository constructs a repository.
func NewDeviceRepository(db DBTX, opts ...DeviceOption) *DeviceRepository {
	repo := &DeviceRepository{db: db, table: defaultDevicesTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// DeviceOption configures the repository.
type DeviceOption func(*DeviceRepository)

// WithDeviceTable overrides the default table name.
func WithDeviceTable(table string) DeviceOption {
	return func(repo *DeviceRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Get loads a device by id.
func (r *DeviceRepository) Get(ctx context.Context, id string) (*masterdata.Device, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("device repo: nil db")
	}
	if id == "" {
		return nil, errors.New("device repo: empty id")
	}

	query := fmt.Sprintf(`
SELECT id, installation_id, label, device_type, category, position, created_at, updated_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	device, err := scanDevice(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return device, nil
}

// ListByInstallation loads devices for an installation in their
// configured order. That order decides binding ties during imports.
func (r *DeviceRepository) ListByInstallation(ctx context.Context, installationID string) ([]masterdata.Device, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("device repo: nil db")
	}
	if installationID == "" {
		return nil, errors.New("device repo: empty installation id")
	}

	query := fmt.Sprintf(`
SELECT id, installation_id, label, device_type, category, position, created_at, updated_at
FROM %s
WHERE installation_id = $1
ORDER BY position ASC, id ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, installationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []masterdata.Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *device)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanDevice(scanner interface{ Scan(dest ...any) error }) (*masterdata.Device, error) {
	var device masterdata.Device
	var category sql.NullString
	if err := scanner.Scan(
		&device.ID,
		&device.InstallationID,
		&device.Label,
		&device.Type,
		&category,
		&device.Position,
		&device.CreatedAt,
		&device.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if category.Valid {
		device.Category = masterdata.OtherCategory(category.String)
	}
	device.CreatedAt = device.CreatedAt.UTC()
	device.UpdatedAt = device.UpdatedAt.UTC()
	if err := device.Validate(); err != nil {
		return nil, fmt.Errorf("device repo: row %q: %w", device.ID, err)
	}
	return &device, nil
}
