package masterdata

import (
	"context"
	"errors"
	"time"
)

// DeviceType classifies a user-configured physical component.
type DeviceType string

const (
	DeviceTypePVString  DeviceType = "pv_string"
	DeviceTypeBattery   DeviceType = "battery"
	DeviceTypeEV        DeviceType = "ev"
	DeviceTypeHeatPump  DeviceType = "heat_pump"
	DeviceTypeWallbox   DeviceType = "wallbox"
	DeviceTypeInverter  DeviceType = "inverter"
	DeviceTypeBalconyPV DeviceType = "balcony_pv"
	DeviceTypeOther     DeviceType = "other"
)

// IsValid reports whether the device type is known.
func (t DeviceType) IsValid() bool {
	switch t {
	case DeviceTypePVString, DeviceTypeBattery, DeviceTypeEV, DeviceTypeHeatPump,
		DeviceTypeWallbox, DeviceTypeInverter, DeviceTypeBalconyPV, DeviceTypeOther:
		return true
	default:
		return false
	}
}

// OtherCategory selects the field subset for catch-all devices.
type OtherCategory string

const (
	CategoryProducer OtherCategory = "producer"
	CategoryConsumer OtherCategory = "consumer"
	CategoryStorage  OtherCategory = "storage"
)

// IsValid reports whether the category is known.
func (c OtherCategory) IsValid() bool {
	switch c {
	case CategoryProducer, CategoryConsumer, CategoryStorage:
		return true
	default:
		return false
	}
}

// Device represents one tracked physical component of an installation.
// Category is set only for DeviceTypeOther.
type Device struct {
	ID             string
	InstallationID string
	Label          string
	Type           DeviceType
	Category       OtherCategory
	Position       int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate checks device invariants.
func (d Device) Validate() error {
	if d.ID == "" {
		return errors.New("device: empty id")
	}
	if d.InstallationID == "" {
		return errors.New("device: empty installation id")
	}
	if d.Label == "" {
		return errors.New("device: empty label")
	}
	if !d.Type.IsValid() {
		return errors.New("device: invalid type")
	}
	if d.Type == DeviceTypeOther && !d.Category.IsValid() {
		return errors.New("device: missing category for type other")
	}
	if d.Type != DeviceTypeOther && d.Category != "" {
		return errors.New("device: category only valid for type other")
	}
	return nil
}

// ProducesPV reports whether the device contributes to PV generation.
func (d Device) ProducesPV() bool {
	switch d.Type {
	case DeviceTypePVString, DeviceTypeBalconyPV, DeviceTypeInverter:
		return true
	case DeviceTypeOther:
		return d.Category == CategoryProducer
	default:
		return false
	}
}

// StoresEnergy reports whether the device contributes to charge/discharge.
func (d Device) StoresEnergy() bool {
	switch d.Type {
	case DeviceTypeBattery:
		return true
	case DeviceTypeOther:
		return d.Category == CategoryStorage
	default:
		return false
	}
}

// DeviceRepository manages device persistence.
type DeviceRepository interface {
	ListByInstallation(ctx context.Context, installationID string) ([]Device, error)
}
